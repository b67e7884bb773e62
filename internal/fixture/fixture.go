// Package fixture loads YAML ledgers of accounts and transactions.
//
// Transactions are dated either absolutely with completed, or relative to the
// load day with days_ago, so the same file keeps producing the same history.
//
//	accounts:
//	  - id: "1"
//	    user: user1
//	    type: PAY
//	    balance: "50"
//	transactions:
//	  - account: "1"
//	    amount: "-50"
//	    description: Food
//	    days_ago: 1
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Veraticus/balance-history/internal/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Ledger is the decoded content of a fixture file.
type Ledger struct {
	Accounts     []model.Account
	Transactions []model.Transaction
}

// ErrInvalidFixture wraps every validation failure.
var ErrInvalidFixture = errors.New("invalid fixture")

type document struct {
	Accounts     []accountEntry     `yaml:"accounts"`
	Transactions []transactionEntry `yaml:"transactions"`
}

type accountEntry struct {
	ID       string `yaml:"id"`
	User     string `yaml:"user"`
	Number   string `yaml:"number"`
	Type     string `yaml:"type"`
	Currency string `yaml:"currency"`
	Balance  string `yaml:"balance"`
}

type transactionEntry struct {
	DaysAgo     *int   `yaml:"days_ago"`
	ID          string `yaml:"id"`
	Account     string `yaml:"account"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
	Completed   string `yaml:"completed"`
}

var completedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	model.DateFormat,
}

// LoadFile reads the fixture at path. Relative dates resolve against today,
// whose location also applies to completed values without a zone.
func LoadFile(path string, today time.Time) (*Ledger, error) {
	f, err := os.Open(filepath.Clean(path)) // #nosec G304 -- user-supplied fixture path
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Load(f, today)
}

// Load decodes a fixture from r.
func Load(r io.Reader, today time.Time) (*Ledger, error) {
	var doc document
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Ledger{}, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	ledger := &Ledger{
		Accounts:     make([]model.Account, 0, len(doc.Accounts)),
		Transactions: make([]model.Transaction, 0, len(doc.Transactions)),
	}

	for i, entry := range doc.Accounts {
		account, err := entry.toModel()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		ledger.Accounts = append(ledger.Accounts, account)
	}

	for i, entry := range doc.Transactions {
		txn, err := entry.toModel(today)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		ledger.Transactions = append(ledger.Transactions, txn)
	}

	return ledger, nil
}

func (e accountEntry) toModel() (model.Account, error) {
	if e.ID == "" || e.User == "" {
		return model.Account{}, fmt.Errorf("%w: id and user are required", ErrInvalidFixture)
	}
	balance := decimal.Zero
	if e.Balance != "" {
		var err error
		if balance, err = decimal.NewFromString(e.Balance); err != nil {
			return model.Account{}, fmt.Errorf("%w: balance %q", ErrInvalidFixture, e.Balance)
		}
	}
	return model.Account{
		ID:       e.ID,
		UserID:   e.User,
		Number:   e.Number,
		Category: e.Type,
		Currency: e.Currency,
		Balance:  balance,
	}, nil
}

func (e transactionEntry) toModel(today time.Time) (model.Transaction, error) {
	if e.Account == "" {
		return model.Transaction{}, fmt.Errorf("%w: account is required", ErrInvalidFixture)
	}
	amount, err := decimal.NewFromString(e.Amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: amount %q", ErrInvalidFixture, e.Amount)
	}
	completed, err := e.completedAt(today)
	if err != nil {
		return model.Transaction{}, err
	}

	txn := model.Transaction{
		ID:          e.ID,
		AccountID:   e.Account,
		Amount:      amount,
		Description: e.Description,
		Completed:   completed,
	}
	txn.Hash = txn.GenerateHash()
	return txn, nil
}

// completedAt places relative entries at noon so they sit well inside their day.
func (e transactionEntry) completedAt(today time.Time) (time.Time, error) {
	switch {
	case e.DaysAgo != nil && e.Completed != "":
		return time.Time{}, fmt.Errorf("%w: days_ago and completed are exclusive", ErrInvalidFixture)
	case e.DaysAgo != nil:
		if *e.DaysAgo < 0 {
			return time.Time{}, fmt.Errorf("%w: days_ago must not be negative", ErrInvalidFixture)
		}
		d := today.AddDate(0, 0, -*e.DaysAgo)
		return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, today.Location()), nil
	case e.Completed != "":
		for _, layout := range completedLayouts {
			if t, err := time.ParseInLocation(layout, e.Completed, today.Location()); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: completed %q", ErrInvalidFixture, e.Completed)
	default:
		return time.Time{}, fmt.Errorf("%w: days_ago or completed is required", ErrInvalidFixture)
	}
}
