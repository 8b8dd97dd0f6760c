// Package validator checks primitive inputs before they reach the
// ledger. Violations are reported as models.ErrInvalidInput and never
// touch persisted state.
package validator

import (
	"fmt"
	"strings"

	"minebet/models"
)

const (
	// MaxTextLength bounds free-form strings accepted from the chat layer.
	MaxTextLength = 100

	// MaxAmount is a sanity ceiling on any single amount, in kobo
	// (₦10,000,000.00).
	MaxAmount = 1_000_000_000
)

// dangerousFragments are rejected in free-form text as a defense against
// values that later end up inside log lines or operator tooling.
var dangerousFragments = []string{
	";", "--", "/*", "*/", "xp_",
	"union", "select", "drop", "delete", "insert", "update",
}

// UserID validates a chat-platform user identifier.
func UserID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("user id %d must be positive: %w", id, models.ErrInvalidInput)
	}
	return nil
}

// Amount validates a monetary amount in kobo.
func Amount(amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount %d must be positive: %w", amount, models.ErrInvalidAmount)
	}
	if amount > MaxAmount {
		return fmt.Errorf("amount %d exceeds ceiling %d: %w", amount, MaxAmount, models.ErrInvalidAmount)
	}
	return nil
}

// Text validates a free-form string such as a display name.
func Text(s string) error {
	if s == "" {
		return fmt.Errorf("empty string: %w", models.ErrInvalidInput)
	}
	if len(s) > MaxTextLength {
		return fmt.Errorf("string length %d exceeds %d: %w", len(s), MaxTextLength, models.ErrInvalidInput)
	}
	lower := strings.ToLower(s)
	for _, frag := range dangerousFragments {
		if strings.Contains(lower, frag) {
			return fmt.Errorf("string contains %q: %w", frag, models.ErrInvalidInput)
		}
	}
	return nil
}
