// Package testutil provides test helpers shared across the balance history packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/balance-history/internal/model"
	"github.com/Veraticus/balance-history/internal/service"
	"github.com/Veraticus/balance-history/internal/storage"
	"github.com/shopspring/decimal"
)

// TestDB represents a migrated in-memory database.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database with the given accounts.
// It handles migrations and cleanup.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.ReferenceAccounts()...)
func SetupTestDB(t *testing.T, accounts ...model.Account) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(accounts) > 0 {
		if err := store.SaveAccounts(ctx, accounts); err != nil {
			t.Fatalf("failed to seed accounts: %v", err)
		}
	}

	return &TestDB{Storage: store, t: t}
}

// AddTransactions stores transactions or fails the test.
func (db *TestDB) AddTransactions(txns ...model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), txns); err != nil {
		db.t.Fatalf("failed to seed transactions: %v", err)
	}
}

// ReferenceAccounts returns two users with a PAY and a SAVE account each.
func ReferenceAccounts() []model.Account {
	return []model.Account{
		{ID: "1", UserID: "user1", Number: "1000", Category: model.CategoryPay, Currency: "USD", Balance: decimal.NewFromInt(50)},
		{ID: "2", UserID: "user1", Number: "2000", Category: model.CategorySave, Currency: "USD", Balance: decimal.NewFromInt(200)},
		{ID: "3", UserID: "user2", Number: "3000", Category: model.CategoryPay, Currency: "USD", Balance: decimal.NewFromInt(10)},
		{ID: "4", UserID: "user2", Number: "4000", Category: model.CategorySave, Currency: "USD", Balance: decimal.NewFromInt(20)},
	}
}

// ReferenceTransactions returns the ledger behind ReferenceAccounts, dated
// relative to today. Over ten days user1's combined history is
// 250 250 300 300 300 500 500 0 0 0.
func ReferenceTransactions(today time.Time) []model.Transaction {
	at := func(daysAgo int) time.Time {
		d := today.AddDate(0, 0, -daysAgo)
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, today.Location())
	}
	entry := func(id, account string, amount int64, daysAgo int, description string) model.Transaction {
		return model.Transaction{
			ID:          id,
			AccountID:   account,
			Amount:      decimal.NewFromInt(amount),
			Description: description,
			Completed:   at(daysAgo),
		}
	}
	return []model.Transaction{
		entry("t1", "1", -50, 1, "Food"),
		entry("t2", "1", -200, 2, "Internal transfer"),
		entry("t3", "2", 200, 2, "Internal transfer"),
		entry("t4", "1", -200, 4, "Rent"),
		entry("t5", "1", 500, 6, "Pay day"),
		entry("t6", "1", 0, 9, "Opening balance"),
		entry("t7", "2", 0, 9, "Opening balance"),
		entry("t8", "3", 10, 10, "Transfer from NAB"),
		entry("t9", "4", 20, 10, "Transfer from NAB"),
	}
}
