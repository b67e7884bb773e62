// Package history reconstructs daily portfolio balances from current account
// balances and their transaction ledgers.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/Veraticus/balance-history/internal/service"
	"github.com/shopspring/decimal"
)

// DefaultDays is the lookback window used when a caller does not choose one.
const DefaultDays = 10

// DefaultOptions returns the default history options.
func DefaultOptions() service.HistoryOptions {
	return service.HistoryOptions{Days: DefaultDays}
}

// Engine derives balance histories. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	accounts     service.AccountStore
	transactions service.TransactionStore
	now          func() time.Time
	location     *time.Location
}

// Config holds configuration options for the history engine.
type Config struct {
	// Now supplies the current instant; "today" is its calendar day.
	Now func() time.Time
	// Location fixes the day boundaries.
	Location *time.Location
}

// DefaultConfig returns the default configuration: wall clock, local time.
func DefaultConfig() Config {
	return Config{
		Now:      time.Now,
		Location: time.Local,
	}
}

// New creates a history engine reading from the given stores.
func New(accounts service.AccountStore, transactions service.TransactionStore) *Engine {
	return NewWithConfig(accounts, transactions, DefaultConfig())
}

// NewWithConfig creates a history engine with custom configuration.
func NewWithConfig(accounts service.AccountStore, transactions service.TransactionStore, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Engine{
		accounts:     accounts,
		transactions: transactions,
		now:          config.Now,
		location:     config.Location,
	}
}

// MaxDays bounds the lookback window to ten years of daily balances.
const MaxDays = 3660

// Validate rejects options that cannot produce a history.
func Validate(opts service.HistoryOptions) error {
	if opts.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", common.ErrInvalidOptions, opts.Days)
	}
	if opts.Days > MaxDays {
		return fmt.Errorf("%w: days must be at most %d, got %d", common.ErrInvalidOptions, MaxDays, opts.Days)
	}
	return nil
}

// GetBalanceHistory returns one balance per calendar day, from today back to
// opts.Days-1 days ago. A user without (matching) accounts gets an empty
// history. Store errors are returned as-is.
func (e *Engine) GetBalanceHistory(ctx context.Context, userID string, opts service.HistoryOptions) (*model.BalanceHistory, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}

	all, err := e.accounts.ListAccounts(ctx, userID)
	if err != nil {
		common.LogError(ctx, err, "Failed to list accounts", common.Fields{"user_id": userID})
		return nil, err
	}

	accounts := model.Accounts(all).Filter(model.ByCategory(opts.Type))
	if len(accounts) == 0 {
		slog.Debug("No accounts for balance history",
			"user_id", userID,
			"type", opts.Type)
		return model.EmptyHistory(), nil
	}

	today := Midnight(e.now(), e.location)
	window := Window(today, opts.Days)

	txns, err := e.transactions.ListTransactions(ctx, accounts.IDs(), &window)
	if err != nil {
		common.LogError(ctx, err, "Failed to list transactions", common.Fields{
			"user_id":  userID,
			"accounts": len(accounts),
		})
		return nil, err
	}

	net := e.netByOffset(today, txns, opts.Days)
	history := Reconstruct(today, accounts.TotalBalance(), net)

	slog.Debug("Reconstructed balance history",
		"user_id", userID,
		"type", opts.Type,
		"days", opts.Days,
		"accounts", len(accounts),
		"transactions", len(txns))

	return history, nil
}

// netByOffset sums transaction amounts per day offset from today. Offsets
// outside [0, days) are dropped: negative ones are in the future, the others
// predate the window.
func (e *Engine) netByOffset(today time.Time, txns []model.Transaction, days int) []decimal.Decimal {
	net := make([]decimal.Decimal, days)
	for i := range net {
		net[i] = decimal.Zero
	}
	for _, txn := range txns {
		offset := DaysBetween(today, Midnight(txn.Completed, e.location))
		if offset < 0 || offset >= days {
			continue
		}
		net[offset] = net[offset].Add(txn.Amount)
	}
	return net
}

// Reconstruct walks backward from current, today's balance. net[k] is the net
// effect of everything that happened k days ago; undoing it yields the balance
// at the end of day k+1. The history has len(net) entries.
func Reconstruct(today time.Time, current decimal.Decimal, net []decimal.Decimal) *model.BalanceHistory {
	history := &model.BalanceHistory{History: make([]model.DailyBalance, len(net))}
	balance := current
	for k := range net {
		if k > 0 {
			balance = balance.Sub(net[k-1])
		}
		history.History[k] = model.DailyBalance{
			Date:    DaysAgo(today, k),
			Balance: balance,
		}
	}
	return history
}
