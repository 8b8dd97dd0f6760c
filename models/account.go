package models

import (
	"time"
)

// Account represents a player account with a persisted balance.
// Balances are stored in kobo (minor currency units, 100 kobo = 1 naira)
// and are never negative.
type Account struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
