package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

const (
	dateColumnWidth    = 12
	amountColumnWidth  = 16
	accountColumnWidth = 14
)

// FormatAmount renders amount in currency's conventional notation, e.g.
// "$1,234.50". Unknown currency codes fall back to "1234.50 XYZ".
func FormatAmount(amount decimal.Decimal, currency string) string {
	c := money.GetCurrency(strings.ToUpper(currency))
	if c == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(c.Fraction)).Round(0).IntPart()
	return money.New(minor, c.Code).Display()
}

// RenderHistory writes the balance history as a table, today first, with the
// change from the previous day.
func RenderHistory(w io.Writer, userID, accountType string, history *model.BalanceHistory, currency string) error {
	title := fmt.Sprintf("%s Balance history for %s", ChartIcon, userID)
	if accountType != "" {
		title += fmt.Sprintf(" (%s)", accountType)
	}

	if history.Len() == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No matching accounts for "+userID))
		return err
	}

	var rows []string
	rows = append(rows, TableHeaderStyle.Render(
		cell("Date", dateColumnWidth)+cell("Balance", amountColumnWidth)+cell("Change", amountColumnWidth),
	))

	for k, day := range history.History {
		change := SubtleStyle.Render(cell("", amountColumnWidth))
		if k+1 < history.Len() {
			change = renderChange(day.Balance.Sub(history.History[k+1].Balance), currency)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			cell(day.Date.Format(model.DateFormat), dateColumnWidth),
			cell(FormatAmount(day.Balance, currency), amountColumnWidth),
			change,
		))
	}

	_, err := fmt.Fprintln(w, RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return err
}

// RenderAccounts writes the user's accounts and their combined balance.
func RenderAccounts(w io.Writer, userID string, accounts model.Accounts, currency string) error {
	if len(accounts) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No accounts for "+userID))
		return err
	}

	var rows []string
	rows = append(rows, TableHeaderStyle.Render(
		cell("Account", accountColumnWidth)+cell("Number", accountColumnWidth)+cell("Type", dateColumnWidth)+cell("Balance", amountColumnWidth),
	))
	for _, account := range accounts {
		accountCurrency := account.Currency
		if accountCurrency == "" {
			accountCurrency = currency
		}
		rows = append(rows, cell(account.ID, accountColumnWidth)+
			cell(account.Number, accountColumnWidth)+
			cell(account.Category, dateColumnWidth)+
			cell(FormatAmount(account.Balance, accountCurrency), amountColumnWidth))
	}
	rows = append(rows, SubtleStyle.Render(fmt.Sprintf("%d accounts, total %s",
		len(accounts), FormatAmount(accounts.TotalBalance(), currency))))

	title := fmt.Sprintf("%s Accounts for %s", BankIcon, userID)
	_, err := fmt.Fprintln(w, RenderBox(title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
	return err
}

func renderChange(change decimal.Decimal, currency string) string {
	text := cell(FormatAmount(change, currency), amountColumnWidth)
	switch change.Sign() {
	case 1:
		return SuccessStyle.Render(text)
	case -1:
		return ErrorStyle.Render(text)
	default:
		return SubtleStyle.Render(text)
	}
}

func cell(text string, width int) string {
	return TableCellStyle.Width(width).Render(text)
}
