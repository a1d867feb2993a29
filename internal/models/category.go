package models

import (
	"strings"
)

// Category groups entries of one kind.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Kind     Kind   `json:"type"`
	IsActive bool   `json:"isActive"`
}

// UncategorizedName labels totals whose category is missing from the snapshot.
const UncategorizedName = "Sem Grupo"

// RoleMatchers names the categories with special meaning to the engine. Each
// matcher is a case-insensitive substring of the category name.
type RoleMatchers struct {
	CardPayment string `yaml:"card_payment" json:"cardPayment"`
	Transfer    string `yaml:"transfer" json:"transfer"`
}

// DefaultRoleMatchers returns the matchers for the stock category names.
func DefaultRoleMatchers() RoleMatchers {
	return RoleMatchers{
		CardPayment: "cartão de crédito",
		Transfer:    "transferências entre contas",
	}
}

// Roles holds the resolved ids of the well-known categories. A blank id means
// the snapshot has no such category.
type Roles struct {
	CardPaymentID string `json:"cardPaymentId"`
	TransferID    string `json:"transferId"`
}

// ResolveRoles finds the first category matching each role. It runs once per
// snapshot; the rest of the engine compares category ids only.
func ResolveRoles(categories []Category, m RoleMatchers) Roles {
	var r Roles
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if r.CardPaymentID == "" && m.CardPayment != "" && strings.Contains(name, strings.ToLower(m.CardPayment)) {
			r.CardPaymentID = c.ID
		}
		if r.TransferID == "" && m.Transfer != "" && strings.Contains(name, strings.ToLower(m.Transfer)) {
			r.TransferID = c.ID
		}
	}
	return r
}

// IsCardPayment reports whether categoryID files card-bill payments.
func (r Roles) IsCardPayment(categoryID string) bool {
	return r.CardPaymentID != "" && categoryID == r.CardPaymentID
}

// IsTransfer reports whether categoryID files internal transfers.
func (r Roles) IsTransfer(categoryID string) bool {
	return r.TransferID != "" && categoryID == r.TransferID
}

// CategoryNames maps category ids to names.
func CategoryNames(categories []Category) map[string]string {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}
