package history

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata" // America/New_York for the DST cases

	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/Veraticus/balance-history/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	user1 = "1"
	user2 = "2"
)

var testLocation = time.FixedZone("AEST", 10*3600)

// testNow is mid-afternoon so that "today" is unambiguous.
var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, testLocation)

func testToday() time.Time { return Midnight(testNow, testLocation) }

func daysAgo(n int) time.Time { return DaysAgo(testToday(), n) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func txn(account string, amount int64, completed time.Time, description string) model.Transaction {
	return model.Transaction{
		AccountID:   account,
		Amount:      dec(amount),
		Completed:   completed,
		Description: description,
	}
}

// referenceStore is the two-user ledger the reconstruction is specified against.
func referenceStore() *mockStore {
	return &mockStore{
		accounts: []model.Account{
			{ID: "2", UserID: user1, Number: "0001", Balance: dec(200), Category: model.CategorySave},
			{ID: "1", UserID: user1, Number: "0002", Balance: dec(50), Category: model.CategoryPay},
			{ID: "3", UserID: user2, Number: "0003", Balance: dec(10), Category: model.CategoryPay},
			{ID: "4", UserID: user2, Number: "0004", Balance: dec(20), Category: model.CategorySave},
		},
		transactions: []model.Transaction{
			txn("1", -50, daysAgo(1), "Food"),
			txn("1", -200, daysAgo(2), "Internal transfer"),
			txn("2", 200, daysAgo(2), "Internal transfer"),
			txn("1", -200, daysAgo(4), "Rent"),
			txn("1", 500, daysAgo(6), "Pay day"),
			txn("1", 0, daysAgo(9), "Opening balance"),
			txn("1", 0, daysAgo(9), "Opening balance"),

			txn("3", 10, daysAgo(10), "Transfer from NAB"),
			txn("4", 20, daysAgo(10), "Transfer from NAB"),
			txn("3", 0, daysAgo(10), "Opening balance"),
			txn("4", 0, daysAgo(10), "Opening balance"),
		},
	}
}

func newTestEngine(store service.AccountStore, txns service.TransactionStore) *Engine {
	return NewWithConfig(store, txns, Config{
		Now:      func() time.Time { return testNow },
		Location: testLocation,
	})
}

func assertBalances(t *testing.T, want []int64, got *model.BalanceHistory) {
	t.Helper()
	require.Len(t, got.History, len(want))
	for k, w := range want {
		assert.Truef(t, dec(w).Equal(got.History[k].Balance),
			"day %d: want %d, got %s", k, w, got.History[k].Balance)
		assert.Truef(t, daysAgo(k).Equal(got.History[k].Date),
			"day %d: want date %s, got %s", k, daysAgo(k), got.History[k].Date)
	}
}

func TestEngine_GetBalanceHistory(t *testing.T) {
	tests := []struct {
		name   string
		userID string
		opts   service.HistoryOptions
		want   []int64
	}{
		{
			name:   "unknown user has no history",
			userID: "99",
			opts:   DefaultOptions(),
			want:   []int64{},
		},
		{
			name:   "today only when no transactions in range",
			userID: user2,
			opts:   service.HistoryOptions{Days: 1},
			want:   []int64{30},
		},
		{
			name:   "unchanged history when no transactions in range",
			userID: user2,
			opts:   service.HistoryOptions{Days: 2},
			want:   []int64{30, 30},
		},
		{
			name:   "complete history for user 1",
			userID: user1,
			opts:   service.HistoryOptions{Days: 10},
			want:   []int64{250, 250, 300, 300, 300, 500, 500, 0, 0, 0},
		},
		{
			name:   "default options cover ten days",
			userID: user1,
			opts:   DefaultOptions(),
			want:   []int64{250, 250, 300, 300, 300, 500, 500, 0, 0, 0},
		},
		{
			name:   "filter by PAY accounts",
			userID: user2,
			opts:   service.HistoryOptions{Days: 1, Type: model.CategoryPay},
			want:   []int64{10},
		},
		{
			name:   "filter by SAVE accounts",
			userID: user2,
			opts:   service.HistoryOptions{Days: 1, Type: model.CategorySave},
			want:   []int64{20},
		},
		{
			name:   "filter matching no account",
			userID: user1,
			opts:   service.HistoryOptions{Days: 5, Type: "LOAN"},
			want:   []int64{},
		},
		{
			name:   "single PAY account drives the series",
			userID: user1,
			opts:   service.HistoryOptions{Days: 8, Type: model.CategoryPay},
			want:   []int64{50, 50, 100, 300, 300, 500, 500, 0},
		},
		{
			name:   "single SAVE account drives the series",
			userID: user1,
			opts:   service.HistoryOptions{Days: 4, Type: model.CategorySave},
			want:   []int64{200, 200, 200, 0},
		},
		{
			name:   "transactions on the oldest day do not affect it",
			userID: user2,
			opts:   service.HistoryOptions{Days: 11},
			want:   []int64{30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
		},
		{
			name:   "window one day past the opening transfers",
			userID: user2,
			opts:   service.HistoryOptions{Days: 12},
			want:   []int64{30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := referenceStore()
			engine := newTestEngine(store, store)

			got, err := engine.GetBalanceHistory(context.Background(), tt.userID, tt.opts)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.NotNil(t, got.History)
			assertBalances(t, tt.want, got)
		})
	}
}

func TestEngine_NoAccountsSkipsTransactionQuery(t *testing.T) {
	store := referenceStore()
	engine := newTestEngine(store, store)

	got, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: 3, Type: "LOAN"})
	require.NoError(t, err)
	assert.Empty(t, got.History)
	assert.Equal(t, 1, store.accountCalls)
	assert.Equal(t, 0, store.txnCalls)
}

func TestEngine_RequestsWindow(t *testing.T) {
	store := referenceStore()
	engine := newTestEngine(store, store)

	_, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: 3})
	require.NoError(t, err)
	require.Len(t, store.windows, 1)

	window := store.windows[0]
	require.NotNil(t, window)
	assert.True(t, daysAgo(2).Equal(window.Start))
	assert.True(t, daysAgo(-1).Add(-time.Nanosecond).Equal(window.End))
}

func TestEngine_InvalidDays(t *testing.T) {
	for _, days := range []int{0, -1, -10, MaxDays + 1, 1 << 50} {
		store := referenceStore()
		engine := newTestEngine(store, store)

		got, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: days})
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrInvalidOptions)
		assert.Nil(t, got)
		assert.Equal(t, 0, store.accountCalls, "invalid options must fail before any query")
	}
}

func TestEngine_MaxDays(t *testing.T) {
	store := referenceStore()
	engine := newTestEngine(store, store)

	got, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: MaxDays})
	require.NoError(t, err)
	require.Len(t, got.History, MaxDays)
	assert.True(t, got.History[MaxDays-1].Balance.IsZero())
}

func TestEngine_InvalidDaysWithoutAccounts(t *testing.T) {
	store := &mockStore{}
	engine := newTestEngine(store, store)

	_, err := engine.GetBalanceHistory(context.Background(), "99", service.HistoryOptions{})
	assert.ErrorIs(t, err, common.ErrInvalidOptions)
}

func TestEngine_PropagatesStoreErrors(t *testing.T) {
	accountErr := errors.New("accounts unavailable")
	transactionErr := errors.New("transactions unavailable")

	t.Run("account store", func(t *testing.T) {
		store := referenceStore()
		store.accountErr = accountErr
		engine := newTestEngine(store, store)

		got, err := engine.GetBalanceHistory(context.Background(), user1, DefaultOptions())
		assert.Same(t, accountErr, err)
		assert.Nil(t, got)
	})

	t.Run("transaction store", func(t *testing.T) {
		store := referenceStore()
		store.transactionErr = transactionErr
		engine := newTestEngine(store, store)

		got, err := engine.GetBalanceHistory(context.Background(), user1, DefaultOptions())
		assert.Same(t, transactionErr, err)
		assert.Nil(t, got)
	})
}

func TestEngine_IgnoresOutOfWindowTransactions(t *testing.T) {
	store := referenceStore()
	store.transactions = append(store.transactions,
		txn("1", 1000, daysAgo(-1), "Post-dated"),
		txn("1", 1000, daysAgo(-30), "Far future"),
		txn("2", -777, daysAgo(10), "Before window"),
		txn("2", -777, daysAgo(400), "Long ago"),
	)
	// Serve the whole ledger so the engine's own bucketing is what is tested.
	engine := newTestEngine(store, unfilteredStore{store})

	got, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: 10})
	require.NoError(t, err)
	assertBalances(t, []int64{250, 250, 300, 300, 300, 500, 500, 0, 0, 0}, got)
}

func TestEngine_ZeroAmountTransactionsAreInert(t *testing.T) {
	base := referenceStore()
	engine := newTestEngine(base, base)
	want, err := engine.GetBalanceHistory(context.Background(), user1, DefaultOptions())
	require.NoError(t, err)

	padded := referenceStore()
	for k := 0; k < DefaultDays; k++ {
		padded.transactions = append(padded.transactions,
			txn("1", 0, daysAgo(k).Add(7*time.Hour), "Opening balance"),
			txn("2", 0, daysAgo(k).Add(23*time.Hour), "Opening balance"))
	}
	engine = newTestEngine(padded, padded)
	got, err := engine.GetBalanceHistory(context.Background(), user1, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, want.Balances(), got.Balances())
}

func TestEngine_BucketsWholeCalendarDay(t *testing.T) {
	store := &mockStore{
		accounts: []model.Account{{ID: "a", UserID: "u", Balance: dec(100), Category: model.CategoryPay}},
		transactions: []model.Transaction{
			// Start and end of yesterday land in the same bucket.
			txn("a", 10, daysAgo(1), "midnight"),
			txn("a", 20, daysAgo(1).Add(23*time.Hour+59*time.Minute+59*time.Second), "last second"),
			// Later today, after "now", is still today.
			txn("a", 5, testToday().Add(23*time.Hour), "tonight"),
			// Same instant expressed in UTC is still two days ago locally.
			txn("a", 40, daysAgo(2).Add(time.Hour).UTC(), "utc stamp"),
		},
	}
	engine := newTestEngine(store, store)

	got, err := engine.GetBalanceHistory(context.Background(), "u", service.HistoryOptions{Days: 4})
	require.NoError(t, err)
	assertBalances(t, []int64{100, 95, 65, 25}, got)
}

func TestEngine_ForwardReplayReproducesCurrentTotal(t *testing.T) {
	store := referenceStore()
	engine := newTestEngine(store, store)
	days := 10

	got, err := engine.GetBalanceHistory(context.Background(), user1, service.HistoryOptions{Days: days})
	require.NoError(t, err)

	net := make([]decimal.Decimal, days)
	for i := range net {
		net[i] = decimal.Zero
	}
	for _, tx := range store.transactions {
		if tx.AccountID != "1" && tx.AccountID != "2" {
			continue
		}
		if k := DaysBetween(testToday(), tx.Completed); k >= 0 && k < days {
			net[k] = net[k].Add(tx.Amount)
		}
	}

	for k := 1; k < days; k++ {
		diff := got.History[k].Balance.Sub(got.History[k-1].Balance)
		assert.Truef(t, net[k-1].Neg().Equal(diff), "day %d: difference %s, net %s", k, diff, net[k-1])
	}

	replayed := got.History[days-1].Balance
	for k := days - 2; k >= 0; k-- {
		replayed = replayed.Add(net[k])
	}
	assert.True(t, dec(250).Equal(replayed))
}

func TestEngine_DecimalAmountsAreExact(t *testing.T) {
	store := &mockStore{
		accounts: []model.Account{
			{ID: "a", UserID: "u", Balance: decimal.RequireFromString("0.3"), Category: model.CategoryPay},
		},
	}
	for i := 0; i < 3; i++ {
		store.transactions = append(store.transactions, model.Transaction{
			AccountID: "a",
			Amount:    decimal.RequireFromString("0.1"),
			Completed: daysAgo(1).Add(time.Duration(i) * time.Hour),
		})
	}
	engine := newTestEngine(store, store)

	got, err := engine.GetBalanceHistory(context.Background(), "u", service.HistoryOptions{Days: 3})
	require.NoError(t, err)
	require.Len(t, got.History, 3)
	assert.True(t, decimal.RequireFromString("0.3").Equal(got.History[0].Balance))
	assert.True(t, decimal.RequireFromString("0.3").Equal(got.History[1].Balance))
	assert.True(t, decimal.Zero.Equal(got.History[2].Balance), "got %s", got.History[2].Balance)
}

func TestEngine_DaylightSavingBoundaries(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-10 is a 23 hour day in New York.
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, loc)
	store := &mockStore{
		accounts: []model.Account{{ID: "a", UserID: "u", Balance: dec(100)}},
		transactions: []model.Transaction{
			txn("a", 10, time.Date(2024, 3, 10, 23, 30, 0, 0, loc), "late on the short day"),
			txn("a", 20, time.Date(2024, 3, 10, 0, 30, 0, 0, loc), "early on the short day"),
			txn("a", 40, time.Date(2024, 3, 9, 12, 0, 0, 0, loc), "day before"),
		},
	}
	engine := NewWithConfig(store, store, Config{
		Now:      func() time.Time { return now },
		Location: loc,
	})

	got, err := engine.GetBalanceHistory(context.Background(), "u", service.HistoryOptions{Days: 4})
	require.NoError(t, err)
	require.Len(t, got.History, 4)

	want := []int64{100, 100, 70, 30}
	dates := []string{"2024-03-11", "2024-03-10", "2024-03-09", "2024-03-08"}
	for k := range want {
		assert.Truef(t, dec(want[k]).Equal(got.History[k].Balance), "day %d: got %s", k, got.History[k].Balance)
		assert.Equal(t, dates[k], got.History[k].Date.Format(model.DateFormat))
		assert.Equal(t, 0, got.History[k].Date.Hour())
	}
}

func TestEngine_ConcurrentCalls(t *testing.T) {
	store := referenceStore()
	engine := newTestEngine(store, store)

	var wg sync.WaitGroup
	results := make([]*model.BalanceHistory, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := user1
			if i%2 == 1 {
				user = user2
			}
			results[i], errs[i] = engine.GetBalanceHistory(context.Background(), user, DefaultOptions())
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		require.NoError(t, errs[i])
		if i%2 == 0 {
			assertBalances(t, []int64{250, 250, 300, 300, 300, 500, 500, 0, 0, 0}, got)
		} else {
			assertBalances(t, []int64{30, 30, 30, 30, 30, 30, 30, 30, 30, 30}, got)
		}
	}
}

func TestReconstruct(t *testing.T) {
	net := []decimal.Decimal{dec(5), dec(-10), dec(0)}
	got := Reconstruct(testToday(), dec(100), net)
	assertBalances(t, []int64{100, 95, 105}, got)

	empty := Reconstruct(testToday(), dec(100), nil)
	assert.NotNil(t, empty.History)
	assert.Empty(t, empty.History)
}
