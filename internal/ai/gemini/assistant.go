package gemini

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	maxMessageRunes     = 2000
	maxHistoryTurns     = 20
)

type chatGenerator interface {
	GenerateChat(ctx context.Context, system string, history []*genai.Content, message string) (string, error)
	Model() string
}

// Assistant answers card questions through Gemini with the catalog as context.
type Assistant struct {
	generator chatGenerator
	system    string
	logger    *zap.Logger
	maxLogLen int
}

func NewAssistant(generator chatGenerator, c *catalog.Catalog, maxLogLength int, logger *zap.Logger) *Assistant {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assistant{
		generator: generator,
		system:    describeCatalog(c),
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (a *Assistant) Reply(ctx context.Context, req ai.ChatRequest) (*ai.ChatReply, error) {
	message := sanitize(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message must not be empty")
	}

	system := buildPrompt(a.system, req.Preference)
	history := convertHistory(req.History)

	a.logger.Debug("gemini chat request",
		zap.Int("history_turns", len(history)),
		zap.Int("message_length", utf8.RuneCountInString(message)),
		zap.String("message_preview", utils.TruncateForLog(message, a.maxLogLen)),
		zap.String("preference", req.Preference),
	)

	text, err := a.generator.GenerateChat(ctx, system, history, message)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("gemini chat response",
		zap.Int("response_length", utf8.RuneCountInString(text)),
		zap.String("response_preview", utils.TruncateForLog(text, a.maxLogLen)),
	)

	return &ai.ChatReply{Text: text, Model: a.generator.Model()}, nil
}

func buildPrompt(catalogText, preference string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Catalog:\n{{CATALOG}}\n\nPreferred category: {{PREFERENCE}}"
	}

	preference = sanitizeLine(preference)
	if preference == "" {
		preference = "unknown"
	}

	prompt := strings.ReplaceAll(template, "{{CATALOG}}", catalogText)
	return strings.ReplaceAll(prompt, "{{PREFERENCE}}", preference)
}

func describeCatalog(c *catalog.Catalog) string {
	if c.Len() == 0 {
		return "- no cards are currently offered"
	}

	var b strings.Builder
	for i, card := range c.Cards() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s", card.Name)
		if card.Category != "" {
			fmt.Fprintf(&b, " (%s)", card.Category)
		}
		fmt.Fprintf(&b, ": minimum income %.0f, ages %d-%d, for %s",
			card.MinIncome, card.AgeRange[0], card.AgeRange[1], strings.Join(card.EmploymentTypes, ", "))
		if len(card.Benefits) > 0 {
			fmt.Fprintf(&b, ". Benefits: %s", strings.Join(card.Benefits, "; "))
		}
	}
	return b.String()
}

func convertHistory(turns []ai.Turn) []*genai.Content {
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	history := make([]*genai.Content, 0, len(turns))
	for _, turn := range turns {
		text := sanitize(turn.Text)
		if text == "" {
			continue
		}

		role := genai.RoleUser
		if turn.Role == ai.RoleModel {
			role = genai.RoleModel
		}
		history = append(history, genai.NewContentFromText(text, genai.Role(role)))
	}
	return history
}

// sanitize trims user text, caps its length and neutralizes square brackets
// so the text cannot imitate the prompt section headers.
func sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("[", "(", "]", ")").Replace(s)

	runes := []rune(s)
	if len(runes) > maxMessageRunes {
		s = strings.TrimSpace(string(runes[:maxMessageRunes]))
	}
	return s
}

func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(sanitize(s)), " ")
}
