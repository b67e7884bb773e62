package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a signed, dated amount applied to exactly one account.
// Positive amounts are credits, negative amounts debits.
type Transaction struct {
	Completed   time.Time       `json:"completed"`
	Amount      decimal.Decimal `json:"amount"`
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	Description string          `json:"description,omitempty"`
	Hash        string          `json:"-"`
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.AccountID,
		t.ID,
		t.Completed.UTC().Format(time.RFC3339Nano),
		t.Amount.String(),
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// DateRange is an inclusive time window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
