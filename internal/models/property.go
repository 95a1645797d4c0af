package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PropertyCategory classifies a property for tax-rate lookup.
// The rate table carries exactly one row per category.
type PropertyCategory string

const (
	CategoryFlat   PropertyCategory = "FLAT"
	CategoryHouse  PropertyCategory = "HOUSE"
	CategoryOffice PropertyCategory = "OFFICE"
)

// Categories lists every property category in canonical order.
func Categories() []PropertyCategory {
	return []PropertyCategory{CategoryFlat, CategoryHouse, CategoryOffice}
}

// ParsePropertyCategory converts a string into a PropertyCategory.
// Matching is case-insensitive.
func ParsePropertyCategory(s string) (PropertyCategory, error) {
	switch PropertyCategory(strings.ToUpper(s)) {
	case CategoryFlat:
		return CategoryFlat, nil
	case CategoryHouse:
		return CategoryHouse, nil
	case CategoryOffice:
		return CategoryOffice, nil
	default:
		return "", fmt.Errorf("unknown property category %q", s)
	}
}

// PropertyCondition describes the state of repair of a property.
type PropertyCondition string

const (
	ConditionGood   PropertyCondition = "GOOD"
	ConditionNormal PropertyCondition = "NORMAL"
	ConditionBad    PropertyCondition = "BAD"
)

// Property is a single real-estate holding inside an owner's portfolio.
// A property belongs to exactly one owner at a time; ids are assigned by
// the store from a counter shared across all owners, so they stay unique
// process-wide rather than per portfolio.
type Property struct {
	ID         int               `json:"id"`
	Category   PropertyCategory  `json:"category"`
	City       string            `json:"city"`
	Address    string            `json:"address"`
	Area       int               `json:"area"`
	Rooms      int               `json:"rooms"`
	Cost       decimal.Decimal   `json:"cost"`
	AcquiredOn time.Time         `json:"acquiredOn"`
	BuiltOn    time.Time         `json:"builtOn"`
	Condition  PropertyCondition `json:"condition"`
}
