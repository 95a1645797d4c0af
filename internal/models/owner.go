package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FamilyStatus describes the household composition of an owner.
// It drives the leeway discount applied to the base tax.
type FamilyStatus string

const (
	FamilyStatusSingle   FamilyStatus = "SINGLE"
	FamilyStatusMarried  FamilyStatus = "MARRIED"
	FamilyStatusDivorced FamilyStatus = "DIVORCED"
	FamilyStatusWidowed  FamilyStatus = "WIDOWED"
)

// ParseFamilyStatus converts a string into a FamilyStatus.
// Matching is case-insensitive.
func ParseFamilyStatus(s string) (FamilyStatus, error) {
	switch FamilyStatus(strings.ToUpper(s)) {
	case FamilyStatusSingle:
		return FamilyStatusSingle, nil
	case FamilyStatusMarried:
		return FamilyStatusMarried, nil
	case FamilyStatusDivorced:
		return FamilyStatusDivorced, nil
	case FamilyStatusWidowed:
		return FamilyStatusWidowed, nil
	default:
		return "", fmt.Errorf("unknown family status %q", s)
	}
}

// Title returns the status formatted as a title-case word ("Single", "Married").
// This is the formatting used in single-debtor notification parameters.
func (f FamilyStatus) Title() string {
	s := string(f)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// Owner represents a registered property owner and their embedded portfolio.
// Properties is nil when the portfolio was never initialized; an empty slice
// means the owner simply holds no property. The two cases are distinguished
// by the tax calculator.
//
// Version is an optimistic concurrency counter. Stores bump it on every
// successful write and reject updates whose Version does not match the
// stored one, so a concurrent recalculation pass cannot silently lose an
// API-driven update.
type Owner struct {
	ID           int             `json:"id"`
	FirstName    string          `json:"firstName"`
	LastName     string          `json:"lastName"`
	Age          int             `json:"age"`
	FamilyStatus FamilyStatus    `json:"familyStatus"`
	HasChildren  bool            `json:"hasChildren"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Birthday     time.Time       `json:"birthday"`
	TaxDebt      decimal.Decimal `json:"taxDebt"`
	Properties   []Property      `json:"properties"`
	Version      int             `json:"version"`
}

// IsDebtor reports whether the owner currently owes taxes.
// Only a strictly positive debt classifies an owner as a debtor.
func (o Owner) IsDebtor() bool {
	return o.TaxDebt.IsPositive()
}
