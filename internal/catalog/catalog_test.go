package catalog

import (
	"errors"
	"math"
	"testing"
)

func TestNewValidatesCards(t *testing.T) {
	t.Parallel()

	valid := Card{Name: "A", AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}}

	tests := []struct {
		name  string
		cards []Card
	}{
		{
			name:  "empty name",
			cards: []Card{{Name: "  ", AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}}},
		},
		{
			name:  "negative income",
			cards: []Card{{Name: "A", MinIncome: -1, AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}}},
		},
		{
			name:  "nan income",
			cards: []Card{{Name: "A", MinIncome: math.NaN(), AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}}},
		},
		{
			name:  "inverted age range",
			cards: []Card{{Name: "A", AgeRange: [2]int{40, 30}, EmploymentTypes: []string{"student"}}},
		},
		{
			name:  "no employment types",
			cards: []Card{{Name: "A", AgeRange: [2]int{18, 30}}},
		},
		{
			name:  "blank employment type",
			cards: []Card{{Name: "A", AgeRange: [2]int{18, 30}, EmploymentTypes: []string{" "}}},
		},
		{
			name:  "duplicate names",
			cards: []Card{valid, valid},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tt.cards)
			if !errors.Is(err, ErrInvalidCard) {
				t.Fatalf("expected ErrInvalidCard, got %v", err)
			}
		})
	}
}

func TestNewNormalizesEmploymentTypes(t *testing.T) {
	c, err := New([]Card{{Name: " Mixed ", AgeRange: [2]int{18, 99}, EmploymentTypes: []string{" Salaried", "SELF-EMPLOYED "}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	card, ok := c.FindByName("Mixed")
	if !ok {
		t.Fatalf("expected trimmed name to be found, got %v", c.Names())
	}

	if !card.Accepts("salaried") || !card.Accepts("self-employed") {
		t.Fatalf("expected normalized employment types, got %v", card.EmploymentTypes)
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	cards := []Card{{Name: "A", AgeRange: [2]int{18, 30}, EmploymentTypes: []string{"student"}, Benefits: []string{"x"}}}
	c, err := New(cards)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cards[0].Name = "changed"
	cards[0].Benefits[0] = "changed"

	got := c.Cards()
	got[0].EmploymentTypes[0] = "retired"

	card := c.At(0)
	if card.Name != "A" || card.Benefits[0] != "x" || card.EmploymentTypes[0] != "student" {
		t.Fatalf("catalog was mutated through a caller slice: %+v", card)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	if c.Len() < 3 || c.Len() > 6 {
		t.Fatalf("expected 3..6 built-in cards, got %d", c.Len())
	}

	student, ok := c.FindByName("Student Saver Card")
	if !ok {
		t.Fatalf("student card missing from %v", c.Names())
	}
	if student.MinIncome != 0 || student.AgeRange != [2]int{18, 25} || !student.Accepts(EmploymentStudent) {
		t.Fatalf("unexpected student card: %+v", student)
	}
}

func TestEmptyCatalog(t *testing.T) {
	c := Empty()
	if c.Len() != 0 || len(c.Cards()) != 0 || len(c.Names()) != 0 {
		t.Fatalf("expected empty catalog")
	}
	if _, ok := c.FindByName("anything"); ok {
		t.Fatalf("did not expect a card in empty catalog")
	}
}

func TestDecode(t *testing.T) {
	raw := []any{
		map[string]any{
			"name":             "Config Card",
			"min-income":       "1000",
			"age-range":        []any{21, 30},
			"employment-types": []any{"Salaried"},
			"benefits":         []any{"one"},
			"category":         "Travel",
		},
	}

	c, err := Decode(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	card := c.At(0)
	if card.MinIncome != 1000 || card.AgeRange != [2]int{21, 30} || card.Category != "travel" {
		t.Fatalf("unexpected decoded card: %+v", card)
	}
}

func TestDecodeRejectsUnknownKeys(t *testing.T) {
	raw := []any{map[string]any{"name": "X", "annual-fee": 10}}
	if _, err := Decode(raw); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDecodeNilUsesDefault(t *testing.T) {
	c, err := Decode(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Len() != Default().Len() {
		t.Fatalf("expected default catalog")
	}
}
