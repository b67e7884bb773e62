package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the calendar-day layout used when a date leaves the process.
const DateFormat = "2006-01-02"

// DailyBalance is the portfolio total at the end of one calendar day.
type DailyBalance struct {
	Date    time.Time
	Balance decimal.Decimal
}

type dailyBalanceJSON struct {
	Date    string          `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

// MarshalJSON encodes the date as a calendar day.
func (d DailyBalance) MarshalJSON() ([]byte, error) {
	return json.Marshal(dailyBalanceJSON{
		Date:    d.Date.Format(DateFormat),
		Balance: d.Balance,
	})
}

// UnmarshalJSON decodes a calendar day as local midnight.
func (d *DailyBalance) UnmarshalJSON(data []byte) error {
	var raw dailyBalanceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	on, err := time.ParseInLocation(DateFormat, raw.Date, time.Local)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", raw.Date, err)
	}
	d.Date = on
	d.Balance = raw.Balance
	return nil
}

// BalanceHistory is a most-recent-first run of daily balances ending today.
type BalanceHistory struct {
	History []DailyBalance `json:"history"`
}

// EmptyHistory returns a history with no entries. It encodes as an empty
// list rather than null.
func EmptyHistory() *BalanceHistory {
	return &BalanceHistory{History: []DailyBalance{}}
}

// Len returns the number of days in the history.
func (h *BalanceHistory) Len() int { return len(h.History) }

// Balances returns the balances in history order.
func (h *BalanceHistory) Balances() []decimal.Decimal {
	out := make([]decimal.Decimal, len(h.History))
	for i, d := range h.History {
		out[i] = d.Balance
	}
	return out
}
