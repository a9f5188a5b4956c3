// Package scoring rates a single card against a user profile.
package scoring

import (
	"strings"

	"github.com/spigell/card-advisor/internal/catalog"
)

const (
	MarkPassed = "✅ "
	MarkFailed = "❌ "

	// MaxScore is the number of criteria.
	MaxScore = 3
)

// Profile is the per-request user data. Age and Income are float64 so that
// values the caller could not parse can be carried as NaN; NaN fails every
// comparison.
type Profile struct {
	Income     float64 `json:"income"`
	Age        float64 `json:"age"`
	Employment string  `json:"employment"`
	Preference string  `json:"preference,omitempty"`
}

// Check is the outcome of one criterion.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

type Result struct {
	Score   int      `json:"score"`
	Reasons []string `json:"reasons"`
	Checks  []Check  `json:"-"`
}

// Criterion is one independent eligibility check.
type Criterion interface {
	Name() string
	Check(card *catalog.Card, p Profile) (bool, string)
}

type incomeCriterion struct{}

func (incomeCriterion) Name() string { return "income" }

func (incomeCriterion) Check(card *catalog.Card, p Profile) (bool, string) {
	if p.Income >= card.MinIncome {
		return true, "income meets requirement"
	}
	return false, "income below requirement"
}

type ageCriterion struct{}

func (ageCriterion) Name() string { return "age" }

func (ageCriterion) Check(card *catalog.Card, p Profile) (bool, string) {
	if float64(card.AgeRange[0]) <= p.Age && p.Age <= float64(card.AgeRange[1]) {
		return true, "age within eligible range"
	}
	return false, "age outside eligible range"
}

type employmentCriterion struct{}

func (employmentCriterion) Name() string { return "employment" }

func (employmentCriterion) Check(card *catalog.Card, p Profile) (bool, string) {
	if card.Accepts(catalog.NormalizeEmployment(p.Employment)) {
		return true, "employment type accepted"
	}
	return false, "employment type not accepted"
}

// criteria is evaluated in this order; reasons follow it.
var criteria = []Criterion{
	incomeCriterion{},
	ageCriterion{},
	employmentCriterion{},
}

// Criteria returns the criteria in evaluation order.
func Criteria() []Criterion {
	return append([]Criterion(nil), criteria...)
}

// Score rates card against p. It never fails: every input yields exactly
// MaxScore reasons.
func Score(card catalog.Card, p Profile) Result {
	result := Result{
		Reasons: make([]string, 0, len(criteria)),
		Checks:  make([]Check, 0, len(criteria)),
	}

	for _, c := range criteria {
		passed, reason := c.Check(&card, p)
		if passed {
			result.Score++
			reason = MarkPassed + reason
		} else {
			reason = MarkFailed + reason
		}

		result.Reasons = append(result.Reasons, reason)
		result.Checks = append(result.Checks, Check{Name: c.Name(), Passed: passed, Reason: reason})
	}

	return result
}

// Passed reports whether reason denotes a satisfied criterion.
func Passed(reason string) bool {
	return strings.HasPrefix(reason, MarkPassed)
}
