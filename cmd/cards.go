package cmd

import (
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/logger"
)

var cardsCmd = &cobra.Command{
	Use:   "cards",
	Short: "List the configured card catalog",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		cards, err := loadCatalog(config)
		if err != nil {
			logger.Fatal("loading the card catalog", zap.Error(err))
		}

		if err := printCards(cmd.OutOrStdout(), cards); err != nil {
			logger.Fatal("printing cards", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(cardsCmd)
}

func printCards(out io.Writer, cards *catalog.Catalog) error {
	if cards.Len() == 0 {
		_, err := fmt.Fprintln(out, noCardsMessage)
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCATEGORY\tMIN INCOME\tAGES\tEMPLOYMENT\tBENEFITS")
	for _, card := range cards.Cards() {
		category := card.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%.0f\t%d-%d\t%s\t%s\n",
			card.Name,
			category,
			card.MinIncome,
			card.AgeRange[0], card.AgeRange[1],
			strings.Join(card.EmploymentTypes, ","),
			strings.Join(card.Benefits, "; "),
		)
	}
	return w.Flush()
}
