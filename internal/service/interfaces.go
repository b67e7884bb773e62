// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/balance-history/internal/model"
)

// AccountStore returns the current set of accounts owned by a user.
// An unknown user yields an empty slice, not an error.
type AccountStore interface {
	ListAccounts(ctx context.Context, userID string) ([]model.Account, error)
}

// TransactionStore returns the transactions of the given accounts whose
// completion time falls inside window, bounds included. A nil window
// returns the full history.
type TransactionStore interface {
	ListTransactions(ctx context.Context, accountIDs []string, window *model.DateRange) ([]model.Transaction, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	AccountStore
	TransactionStore

	// Write side, used by importers and fixtures.
	SaveAccounts(ctx context.Context, accounts []model.Account) error
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetAccountByID(ctx context.Context, id string) (*model.Account, error)
	GetTransactionCount(ctx context.Context) (int, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// HistoryService produces balance histories for callers such as the CLI and
// the HTTP API.
type HistoryService interface {
	GetBalanceHistory(ctx context.Context, userID string, opts HistoryOptions) (*model.BalanceHistory, error)
}

// HistoryOptions selects the lookback window and account category.
type HistoryOptions struct {
	// Type restricts the portfolio to accounts of this category when set.
	Type string
	// Days is the number of calendar days to produce, today included.
	Days int
}
