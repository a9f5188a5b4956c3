package recommend

import (
	"math"
	"testing"

	"github.com/spigell/card-advisor/internal/catalog"
	"github.com/spigell/card-advisor/internal/scoring"
)

func mustCatalog(t *testing.T, cards ...catalog.Card) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(cards)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	return c
}

var student = catalog.Card{
	Name:            "Student Saver Card",
	MinIncome:       0,
	AgeRange:        [2]int{18, 25},
	EmploymentTypes: []string{"student"},
}

func TestRecommendSingleCard(t *testing.T) {
	c := mustCatalog(t, student)

	tests := []struct {
		name    string
		profile scoring.Profile
		score   int
	}{
		{name: "all criteria", profile: scoring.Profile{Income: 0, Age: 20, Employment: "student"}, score: 3},
		{name: "age fails", profile: scoring.Profile{Income: 0, Age: 30, Employment: "student"}, score: 2},
		{name: "nan income", profile: scoring.Profile{Income: math.NaN(), Age: 20, Employment: "student"}, score: 2},
		{name: "nothing matches", profile: scoring.Profile{Income: -1, Age: 90, Employment: "retired"}, score: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Recommend(c, tt.profile)
			if !ok {
				t.Fatal("expected a recommendation from a non-empty catalog")
			}
			if m.Card.Name != student.Name {
				t.Fatalf("unexpected card %q", m.Card.Name)
			}
			if m.Result.Score != tt.score {
				t.Fatalf("expected score %d, got %d", tt.score, m.Result.Score)
			}
		})
	}
}

func TestRecommendTieBreakFirstSeen(t *testing.T) {
	a := catalog.Card{Name: "Card A", MinIncome: 0, AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"retired"}}
	b := catalog.Card{Name: "Card B", MinIncome: 0, AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"retired"}}
	p := scoring.Profile{Income: 10, Age: 20, Employment: "student"}

	m, ok := Recommend(mustCatalog(t, a, b), p)
	if !ok || m.Card.Name != "Card A" || m.Result.Score != 2 {
		t.Fatalf("expected Card A with score 2, got %+v", m)
	}

	m, _ = Recommend(mustCatalog(t, b, a), p)
	if m.Card.Name != "Card B" {
		t.Fatalf("expected Card B when it comes first, got %q", m.Card.Name)
	}
}

func TestRecommendPicksStrictMaximum(t *testing.T) {
	low := catalog.Card{Name: "Low", MinIncome: 1000, AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"retired"}}
	high := catalog.Card{Name: "High", MinIncome: 0, AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}}

	m, _ := Recommend(mustCatalog(t, low, high), scoring.Profile{Income: 10, Age: 20, Employment: "student"})
	if m.Card.Name != "High" || m.Result.Score != 3 {
		t.Fatalf("expected High with score 3, got %+v", m)
	}
}

func TestRecommendEmptyCatalog(t *testing.T) {
	if _, ok := Recommend(catalog.Empty(), scoring.Profile{Age: 20}); ok {
		t.Fatal("expected no recommendation for empty catalog")
	}
	if _, ok := Recommend(nil, scoring.Profile{}); ok {
		t.Fatal("expected no recommendation for nil catalog")
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	c := catalog.Default()
	p := scoring.Profile{Income: 40000, Age: 30, Employment: "salaried"}

	first, _ := Recommend(c, p)
	for i := 0; i < 10; i++ {
		next, _ := Recommend(c, p)
		if next.Card.Name != first.Card.Name || next.Result.Score != first.Result.Score {
			t.Fatalf("run %d differs: %q/%d vs %q/%d", i, next.Card.Name, next.Result.Score, first.Card.Name, first.Result.Score)
		}
	}
}

func TestScoreAllKeepsOrderAndZeroScores(t *testing.T) {
	c := catalog.Default()
	matches := ScoreAll(c, scoring.Profile{Income: math.NaN(), Age: math.NaN(), Employment: "astronaut"})

	if len(matches) != c.Len() {
		t.Fatalf("expected %d matches, got %d", c.Len(), len(matches))
	}
	for i, m := range matches {
		if m.Card.Name != c.Names()[i] {
			t.Fatalf("match %d out of catalog order: %q", i, m.Card.Name)
		}
		if m.Result.Score != 0 || len(m.Result.Reasons) != scoring.MaxScore {
			t.Fatalf("expected zero score with full reasons, got %+v", m.Result)
		}
	}
}

func TestQuery(t *testing.T) {
	c := mustCatalog(t, student)
	p := scoring.Profile{Income: 0, Age: 20, Employment: "student"}

	answer := Query(c, p, "Any card with TRAVEL perks?", 1)

	want := "You may be eligible for the **Student Saver Card** card.\n\nReasons:\n" +
		"- ✅ income meets requirement\n" +
		"- ✅ age within eligible range\n" +
		"- ✅ employment type accepted"
	if answer.Message != want {
		t.Fatalf("unexpected message:\n%s", answer.Message)
	}
	if answer.Preference != PreferenceTravel {
		t.Fatalf("expected travel preference, got %q", answer.Preference)
	}
	if answer.Match == nil || answer.Match.Result.Score != 3 {
		t.Fatalf("expected match with score 3, got %+v", answer.Match)
	}
}

func TestQueryBelowMinimum(t *testing.T) {
	c := mustCatalog(t, student)

	answer := Query(c, scoring.Profile{Income: 0, Age: 60, Employment: "retired"}, "", 2)
	if answer.Message != NotFoundMessage || answer.Match != nil {
		t.Fatalf("expected not-found answer, got %+v", answer)
	}

	answer = Query(catalog.Empty(), scoring.Profile{}, "cashback", 0)
	if answer.Message != NotFoundMessage || answer.Preference != PreferenceCashback {
		t.Fatalf("expected not-found answer with preference, got %+v", answer)
	}
}

func TestQueryMinimumIsInclusive(t *testing.T) {
	c := mustCatalog(t, student)
	// Income and employment pass, age fails: best score is 2.
	p := scoring.Profile{Income: 0, Age: 40, Employment: "student"}

	if answer := Query(c, p, "", 2); answer.Match == nil || answer.Match.Result.Score != 2 {
		t.Fatalf("expected a match at the minimum score, got %+v", answer)
	}
	if answer := Query(c, p, "", 3); answer.Match != nil || answer.Message != NotFoundMessage {
		t.Fatalf("expected not-found above the best score, got %+v", answer)
	}
}

func TestResolvePreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want Preference
	}{
		{"", PreferenceNone},
		{"   ", PreferenceNone},
		{"I fly a lot, need lounge access", PreferenceTravel},
		{"Best CASHBACK option", PreferenceCashback},
		{"cash back on groceries", PreferenceCashback},
		{"I'm a university student", PreferenceStudent},
		{"points please", PreferenceRewards},
		// travel is listed before cashback, so it wins when both appear.
		{"cashback on travel", PreferenceTravel},
		{"something unrelated", PreferenceNone},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			if got := ResolvePreference(tt.text); got != tt.want {
				t.Fatalf("ResolvePreference(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
