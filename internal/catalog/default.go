package catalog

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

func defaultCards() []Card {
	return []Card{
		{
			Name:            "Student Saver Card",
			MinIncome:       0,
			AgeRange:        [2]int{18, 25},
			EmploymentTypes: []string{EmploymentStudent},
			Benefits: []string{
				"No annual fee",
				"1% cashback on textbooks and online courses",
				"Credit-building tips in the mobile app",
			},
			Category: "student",
		},
		{
			Name:            "Everyday Cashback Card",
			MinIncome:       25000,
			AgeRange:        [2]int{21, 65},
			EmploymentTypes: []string{EmploymentSalaried, EmploymentSelfEmployed},
			Benefits: []string{
				"2% cashback on groceries and fuel",
				"1% cashback on everything else",
				"Annual fee waived above 100000 yearly spend",
			},
			Category: "cashback",
		},
		{
			Name:            "Travel Elite Card",
			MinIncome:       75000,
			AgeRange:        [2]int{25, 60},
			EmploymentTypes: []string{EmploymentSalaried, EmploymentSelfEmployed},
			Benefits: []string{
				"Airport lounge access",
				"3x miles on flights and hotels",
				"No foreign transaction fees",
			},
			Category: "travel",
		},
		{
			Name:            "Freelancer Flex Card",
			MinIncome:       30000,
			AgeRange:        [2]int{21, 60},
			EmploymentTypes: []string{EmploymentSelfEmployed},
			Benefits: []string{
				"Flexible 55-day interest-free period",
				"Rewards points on software subscriptions",
			},
			Category: "rewards",
		},
		{
			Name:            "Golden Years Card",
			MinIncome:       15000,
			AgeRange:        [2]int{55, 99},
			EmploymentTypes: []string{EmploymentRetired, EmploymentSalaried},
			Benefits: []string{
				"Discounts at partner pharmacies",
				"Complimentary health check-up every year",
			},
			Category: "cashback",
		},
	}
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultCards())
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Decode builds a catalog from a raw configuration value, usually the "catalog"
// key read by viper. A nil value yields the built-in catalog.
func Decode(raw any) (*Catalog, error) {
	if raw == nil {
		return Default(), nil
	}

	var cards []Card
	cfg := &mapstructure.DecoderConfig{
		Result:           &cards,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	}

	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, fmt.Errorf("create catalog decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return New(cards)
}
