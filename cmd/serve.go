package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/ai/gemini"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/secrets"
	"github.com/spigell/card-advisor/internal/server"
)

const geminiAPIKeyEnv = "GEMINI_API_KEY"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", "", "listen address, overrides server.addr")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}

func serve(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the card-advisor", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	cards, err := loadCatalog(config)
	if err != nil {
		logger.Fatal("loading the card catalog", zap.Error(err))
	}

	logger.Info("card catalog loaded", zap.Int("count", cards.Len()), zap.Strings("cards", cards.Names()))

	assistant, err := newAssistant(ctx, config.AI, cards, logger)
	if err != nil {
		logger.Warn("chat assistant is disabled", zap.Error(err))
		assistant = ai.Disabled()
	}

	srv := server.New(server.Config{
		Addr:         config.Server.Addr,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		ChatRate:     config.Server.ChatRate,
		ChatBurst:    config.Server.ChatBurst,
		MinimumScore: config.Recommend.MinimumScore,
	}, cards, assistant, logger)

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("serving http", zap.Error(err))
	}
}

// newAssistant returns ai.Disabled when the assistant is switched off and an
// error when it is switched on but cannot be built.
func newAssistant(ctx context.Context, cfg *AIConfig, cards *catalog.Catalog, log *zap.Logger) (ai.Assistant, error) {
	if cfg == nil || !cfg.Enabled {
		return ai.Disabled(), nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	if cfg.Gemini == nil {
		return nil, fmt.Errorf("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   geminiAPIKeyEnv,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or %s)", err, geminiAPIKeyEnv)
	}

	genLogger := logger.WithFields(log, logger.AIFields("gemini", cfg.Gemini.Model)...).
		With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	assistantLogger := logger.WithFields(log, logger.AIFields("gemini", generator.Model())...)

	return gemini.NewAssistant(generator, cards, cfg.Gemini.MaxLogLength, assistantLogger), nil
}

func redacted(config *Config) *Config {
	if config == nil || config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return config
	}

	copied := *config
	aiCfg := *config.AI
	gem := *config.AI.Gemini
	gem.APIKey = "***"
	aiCfg.Gemini = &gem
	copied.AI = &aiCfg
	return &copied
}
