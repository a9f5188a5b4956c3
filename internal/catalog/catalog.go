package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const (
	EmploymentSalaried     = "salaried"
	EmploymentSelfEmployed = "self-employed"
	EmploymentStudent      = "student"
	EmploymentRetired      = "retired"
)

var ErrInvalidCard = errors.New("invalid card")

// Card describes a single card product offered for recommendation.
type Card struct {
	Name            string   `json:"name" mapstructure:"name"`
	MinIncome       float64  `json:"minIncome" mapstructure:"min-income"`
	AgeRange        [2]int   `json:"eligibleAgeRange" mapstructure:"age-range"`
	EmploymentTypes []string `json:"acceptedEmploymentTypes" mapstructure:"employment-types"`
	Benefits        []string `json:"benefits,omitempty" mapstructure:"benefits"`
	// Category is a display hint only. It never takes part in scoring.
	Category string `json:"category,omitempty" mapstructure:"category"`
}

// Accepts reports whether the (already normalized) employment tag is in the card's set.
func (c *Card) Accepts(employment string) bool {
	for _, t := range c.EmploymentTypes {
		if t == employment {
			return true
		}
	}
	return false
}

// Catalog is an ordered, read-only list of cards. It is safe for concurrent use
// because nothing mutates it after New returns.
type Catalog struct {
	items []Card
}

// New validates the cards and returns a catalog holding private copies of them.
func New(cards []Card) (*Catalog, error) {
	items := make([]Card, 0, len(cards))
	seen := make(map[string]struct{}, len(cards))

	for idx, card := range cards {
		card.Name = strings.TrimSpace(card.Name)
		if err := validate(card); err != nil {
			return nil, fmt.Errorf("card #%d (%q): %w", idx, card.Name, err)
		}

		if _, ok := seen[card.Name]; ok {
			return nil, fmt.Errorf("card #%d (%q): %w: duplicate name", idx, card.Name, ErrInvalidCard)
		}
		seen[card.Name] = struct{}{}

		items = append(items, clone(card))
	}

	return &Catalog{items: items}, nil
}

// Empty returns a catalog without cards.
func Empty() *Catalog {
	return &Catalog{}
}

func validate(card Card) error {
	if card.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidCard)
	}
	if math.IsNaN(card.MinIncome) || card.MinIncome < 0 {
		return fmt.Errorf("%w: minimum income must be a non-negative number", ErrInvalidCard)
	}
	if card.AgeRange[0] > card.AgeRange[1] {
		return fmt.Errorf("%w: age range [%d, %d] is inverted", ErrInvalidCard, card.AgeRange[0], card.AgeRange[1])
	}
	if len(card.EmploymentTypes) == 0 {
		return fmt.Errorf("%w: at least one employment type is required", ErrInvalidCard)
	}
	for _, t := range card.EmploymentTypes {
		if NormalizeEmployment(t) == "" {
			return fmt.Errorf("%w: empty employment type", ErrInvalidCard)
		}
	}
	return nil
}

func clone(card Card) Card {
	types := make([]string, 0, len(card.EmploymentTypes))
	for _, t := range card.EmploymentTypes {
		types = append(types, NormalizeEmployment(t))
	}
	card.EmploymentTypes = types
	card.Benefits = append([]string(nil), card.Benefits...)
	card.Category = strings.ToLower(strings.TrimSpace(card.Category))
	return card
}

// NormalizeEmployment lower-cases and trims an employment tag.
func NormalizeEmployment(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// EmploymentTypes returns the known employment tags in display order.
func EmploymentTypes() []string {
	return []string{EmploymentSalaried, EmploymentSelfEmployed, EmploymentStudent, EmploymentRetired}
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.items)
}

// Cards returns a copy of the cards in catalog order.
func (c *Catalog) Cards() []Card {
	if c == nil {
		return nil
	}
	cards := make([]Card, 0, len(c.items))
	for _, card := range c.items {
		cards = append(cards, clone(card))
	}
	return cards
}

// At returns the card at idx. The returned value shares no memory with the catalog.
func (c *Catalog) At(idx int) Card {
	return clone(c.items[idx])
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		names = append(names, c.items[i].Name)
	}
	return names
}

// FindByName looks a card up by its exact display name.
func (c *Catalog) FindByName(name string) (Card, bool) {
	for i := 0; i < c.Len(); i++ {
		if c.items[i].Name == name {
			return clone(c.items[i]), true
		}
	}
	return Card{}, false
}
