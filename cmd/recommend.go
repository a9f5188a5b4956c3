package cmd

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/logger"
	"github.com/spigell/card-advisor/internal/recommend"
	"github.com/spigell/card-advisor/internal/scoring"
	"github.com/spigell/card-advisor/internal/utils"
)

const noCardsMessage = "No cards are configured."

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Score a profile against the catalog and print the best card",
	Run: func(cmd *cobra.Command, _ []string) {
		runRecommendCmd(cmd)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("income", "i", "", "annual income")
	recommendCmd.Flags().StringP("age", "a", "", "age in whole years")
	recommendCmd.Flags().StringP("employment", "e", "", "employment type: "+strings.Join(catalog.EmploymentTypes(), ", "))
	recommendCmd.Flags().StringP("query", "q", "", "free text such as \"card for travel\"; enables the query answer")
	recommendCmd.Flags().Bool("all", false, "print every card with its score")
}

type recommendOptions struct {
	Income     string
	Age        string
	Employment string
	Query      string
	All        bool
	MinScore   int
}

// prompter asks for values that were not given as flags.
type prompter interface {
	Select(label string, items []string) (string, error)
	Number(label string) (string, error)
}

type terminalPrompter struct{}

func (terminalPrompter) Select(label string, items []string) (string, error) {
	p := promptui.Select{Label: label, Items: items}
	_, value, err := p.Run()
	return value, err
}

func (terminalPrompter) Number(label string) (string, error) {
	p := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if _, err := strconv.ParseFloat(strings.TrimSpace(input), 64); err != nil {
				return fmt.Errorf("%q is not a number", input)
			}
			return nil
		},
	}
	return p.Run()
}

func runRecommendCmd(cmd *cobra.Command) {
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

	opts := recommendOptions{MinScore: config.Recommend.MinimumScore}
	opts.Income, _ = cmd.Flags().GetString("income")
	opts.Age, _ = cmd.Flags().GetString("age")
	opts.Employment, _ = cmd.Flags().GetString("employment")
	opts.Query, _ = cmd.Flags().GetString("query")
	opts.All, _ = cmd.Flags().GetBool("all")

	profile, err := resolveProfile(opts, terminalPrompter{})
	if err != nil {
		logger.Fatal("reading the profile", zap.Error(err))
	}

	logger.Debug("scoring profile",
		zap.Float64("income", profile.Income),
		zap.Float64("age", profile.Age),
		zap.String("employment", profile.Employment),
	)

	if err := printRecommendation(cmd.OutOrStdout(), cards, profile, opts); err != nil {
		logger.Fatal("printing the recommendation", zap.Error(err))
	}
}

// resolveProfile builds a profile from flags, prompting for missing values.
// Values that are not numbers become NaN and fail their criterion.
func resolveProfile(opts recommendOptions, p prompter) (scoring.Profile, error) {
	var err error

	employment := strings.TrimSpace(opts.Employment)
	if employment == "" {
		employment, err = p.Select("Employment type", catalog.EmploymentTypes())
		if err != nil {
			return scoring.Profile{}, fmt.Errorf("choosing employment type: %w", err)
		}
	}

	income := strings.TrimSpace(opts.Income)
	if income == "" {
		income, err = p.Number("Annual income")
		if err != nil {
			return scoring.Profile{}, fmt.Errorf("reading income: %w", err)
		}
	}

	age := strings.TrimSpace(opts.Age)
	if age == "" {
		age, err = p.Number("Age")
		if err != nil {
			return scoring.Profile{}, fmt.Errorf("reading age: %w", err)
		}
	}

	return scoring.Profile{
		Income:     utils.CoerceFloat(income),
		Age:        utils.CoerceFloat(age),
		Employment: employment,
	}, nil
}

func printRecommendation(out io.Writer, cards *catalog.Catalog, profile scoring.Profile, opts recommendOptions) error {
	if opts.All {
		return printComparison(out, recommend.ScoreAll(cards, profile))
	}

	if opts.Query != "" {
		answer := recommend.Query(cards, profile, opts.Query, opts.MinScore)
		if answer.Preference != recommend.PreferenceNone {
			if _, err := fmt.Fprintf(out, "Preference: %s\n\n", answer.Preference); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintln(out, answer.Message)
		return err
	}

	match, ok := recommend.Recommend(cards, profile)
	if !ok {
		_, err := fmt.Fprintln(out, noCardsMessage)
		return err
	}

	_, err := fmt.Fprintf(out, "%s\n\nScore: %d/%d\n", recommend.FormatMatch(match), match.Result.Score, scoring.MaxScore)
	return err
}

func printComparison(out io.Writer, matches []recommend.Match) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(out, noCardsMessage)
		return err
	}

	header := []string{"CARD", "SCORE"}
	for _, c := range scoring.Criteria() {
		header = append(header, strings.ToUpper(c.Name()))
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, m := range matches {
		marks := make([]string, 0, len(m.Result.Checks))
		for _, check := range m.Result.Checks {
			mark := scoring.MarkFailed
			if check.Passed {
				mark = scoring.MarkPassed
			}
			marks = append(marks, strings.TrimSpace(mark))
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%s\n", m.Card.Name, m.Result.Score, scoring.MaxScore, strings.Join(marks, "\t"))
	}
	return w.Flush()
}
