package history

import (
	"context"
	"slices"
	"sync"

	"github.com/Veraticus/balance-history/internal/model"
)

// mockStore is an in-memory account and transaction store that records the
// queries it receives.
type mockStore struct {
	accountErr     error
	transactionErr error
	accounts       []model.Account
	transactions   []model.Transaction
	windows        []*model.DateRange
	accountCalls   int
	txnCalls       int
	mu             sync.Mutex
}

func (m *mockStore) ListAccounts(_ context.Context, userID string) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountCalls++
	if m.accountErr != nil {
		return nil, m.accountErr
	}
	var out []model.Account
	for _, a := range m.accounts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockStore) ListTransactions(_ context.Context, accountIDs []string, window *model.DateRange) ([]model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txnCalls++
	m.windows = append(m.windows, window)
	if m.transactionErr != nil {
		return nil, m.transactionErr
	}
	var out []model.Transaction
	for _, t := range m.transactions {
		if !slices.Contains(accountIDs, t.AccountID) {
			continue
		}
		if window != nil && !window.Contains(t.Completed) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// unfilteredStore ignores the requested window, as a store that returns the
// full ledger would.
type unfilteredStore struct {
	*mockStore
}

func (u unfilteredStore) ListTransactions(ctx context.Context, accountIDs []string, _ *model.DateRange) ([]model.Transaction, error) {
	return u.mockStore.ListTransactions(ctx, accountIDs, nil)
}
