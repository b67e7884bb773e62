package fixture

import (
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/balance-history/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testLocation = time.FixedZone("AEST", 10*3600)
	testToday    = time.Date(2024, 3, 15, 0, 0, 0, 0, testLocation)
)

func TestLoadFile_Reference(t *testing.T) {
	ledger, err := LoadFile("testdata/reference.yaml", testToday)
	require.NoError(t, err)

	require.Len(t, ledger.Accounts, 4)
	assert.Equal(t, model.Account{
		ID:       "2",
		UserID:   "user1",
		Number:   "2000",
		Category: model.CategorySave,
		Currency: "USD",
		Balance:  ledger.Accounts[1].Balance,
	}, ledger.Accounts[1])
	assert.True(t, decimal.NewFromInt(200).Equal(ledger.Accounts[1].Balance))

	require.Len(t, ledger.Transactions, 9)
	first := ledger.Transactions[0]
	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, "1", first.AccountID)
	assert.Equal(t, "Food", first.Description)
	assert.True(t, decimal.NewFromInt(-50).Equal(first.Amount))
	assert.True(t, time.Date(2024, 3, 14, 12, 0, 0, 0, testLocation).Equal(first.Completed))
	assert.Equal(t, first.GenerateHash(), first.Hash)
}

func TestLoad_Completed(t *testing.T) {
	doc := `
accounts:
  - id: a
    user: u
    balance: 12.5
transactions:
  - account: a
    amount: -2.25
    completed: 2024-03-01T09:30:00Z
  - account: a
    amount: 1
    completed: "2024-03-02 18:00"
  - account: a
    amount: 1
    completed: "2024-03-03"
`
	ledger, err := Load(strings.NewReader(doc), testToday)
	require.NoError(t, err)

	require.Len(t, ledger.Accounts, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(ledger.Accounts[0].Balance))

	require.Len(t, ledger.Transactions, 3)
	assert.True(t, decimal.RequireFromString("-2.25").Equal(ledger.Transactions[0].Amount))
	assert.True(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC).Equal(ledger.Transactions[0].Completed))
	assert.True(t, time.Date(2024, 3, 2, 18, 0, 0, 0, testLocation).Equal(ledger.Transactions[1].Completed))
	assert.True(t, time.Date(2024, 3, 3, 0, 0, 0, 0, testLocation).Equal(ledger.Transactions[2].Completed))
}

func TestLoad_Empty(t *testing.T) {
	ledger, err := Load(strings.NewReader(""), testToday)
	require.NoError(t, err)
	assert.Empty(t, ledger.Accounts)
	assert.Empty(t, ledger.Transactions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"account without user", `accounts: [{id: a}]`},
		{"bad balance", `accounts: [{id: a, user: u, balance: lots}]`},
		{"transaction without account", `transactions: [{amount: "1", days_ago: 1}]`},
		{"bad amount", `transactions: [{account: a, amount: one, days_ago: 1}]`},
		{"no date", `transactions: [{account: a, amount: "1"}]`},
		{"both dates", `transactions: [{account: a, amount: "1", days_ago: 1, completed: "2024-03-01"}]`},
		{"negative days_ago", `transactions: [{account: a, amount: "1", days_ago: -1}]`},
		{"bad completed", `transactions: [{account: a, amount: "1", completed: yesterday}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc), testToday)
			assert.ErrorIs(t, err, ErrInvalidFixture)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(strings.NewReader(`accounts: [{id: a, user: u, colour: red}]`), testToday)
		assert.Error(t, err)
	})
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile("testdata/missing.yaml", testToday)
	assert.Error(t, err)
}
