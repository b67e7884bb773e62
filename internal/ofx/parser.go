// Package ofx imports OFX/QFX bank and credit card statements.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags missing their closing bracket at end of line.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Statement is one account's snapshot from an OFX file: the account with its
// ledger balance plus the transactions listed for it.
type Statement struct {
	Account      model.Account
	Transactions []model.Transaction
}

// Assign sets the owning user and, if category is not empty, overrides the
// category inferred from the account type.
func (s *Statement) Assign(userID, category string) {
	s.Account.UserID = userID
	if category != "" {
		s.Account.Category = category
	}
}

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile parses an OFX/QFX file into one statement per account. Files
// without any bank or credit card statement yield common.ErrNoStatements.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var statements []Statement
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			statement, err := p.processBankStatement(stmt)
			if err != nil {
				slog.WarnContext(ctx, "Failed to process bank statement",
					"account", stmt.BankAcctFrom.AcctID,
					"error", err)
				continue
			}
			statements = append(statements, statement)
		}
	}

	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			statement, err := p.processCreditCardStatement(stmt)
			if err != nil {
				slog.WarnContext(ctx, "Failed to process credit card statement",
					"account", stmt.CCAcctFrom.AcctID,
					"error", err)
				continue
			}
			statements = append(statements, statement)
		}
	}

	if len(statements) == 0 {
		return nil, common.ErrNoStatements
	}

	slog.InfoContext(ctx, "Parsed OFX file",
		"statements", len(statements),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return statements, nil
}

func (p *Parser) processBankStatement(stmt *ofxgo.StatementResponse) (Statement, error) {
	balance, err := toDecimal(stmt.BalAmt)
	if err != nil {
		return Statement{}, fmt.Errorf("ledger balance: %w", err)
	}

	number := string(stmt.BankAcctFrom.AcctID)
	account := model.Account{
		ID:       accountID(string(stmt.BankAcctFrom.BankID), number),
		Number:   number,
		Balance:  balance,
		Category: categoryFor(stmt.BankAcctFrom.AcctType.String()),
		Currency: stmt.CurDef.String(),
	}

	txns, err := p.convertTransactions(stmt.BankTranList, account.ID)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Account: account, Transactions: txns}, nil
}

func (p *Parser) processCreditCardStatement(stmt *ofxgo.CCStatementResponse) (Statement, error) {
	balance, err := toDecimal(stmt.BalAmt)
	if err != nil {
		return Statement{}, fmt.Errorf("ledger balance: %w", err)
	}

	number := string(stmt.CCAcctFrom.AcctID)
	account := model.Account{
		ID:       accountID("", number),
		Number:   number,
		Balance:  balance,
		Category: model.CategoryCredit,
		Currency: stmt.CurDef.String(),
	}

	txns, err := p.convertTransactions(stmt.BankTranList, account.ID)
	if err != nil {
		return Statement{}, err
	}
	return Statement{Account: account, Transactions: txns}, nil
}

func (p *Parser) convertTransactions(list *ofxgo.TransactionList, accountID string) ([]model.Transaction, error) {
	if list == nil {
		return nil, nil
	}

	transactions := make([]model.Transaction, 0, len(list.Transactions))
	for _, ofxTx := range list.Transactions {
		tx, err := p.convertTransaction(ofxTx, accountID)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: %w", ofxTx.FiTID, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// convertTransaction keeps the OFX sign: negative amounts are debits.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID string) (model.Transaction, error) {
	amount, err := toDecimal(ofxTx.TrnAmt)
	if err != nil {
		return model.Transaction{}, err
	}

	tx := model.Transaction{
		ID:          accountID + ":" + string(ofxTx.FiTID),
		AccountID:   accountID,
		Amount:      amount,
		Description: p.extractDescription(ofxTx),
		Completed:   ofxTx.DtPosted.Time,
	}
	tx.Hash = tx.GenerateHash()
	return tx, nil
}

// extractDescription tries to get a clean merchant name from OFX data.
func (p *Parser) extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := string(tx.Name)
	if tx.Memo != "" && isGenericDescription(name) {
		name = string(tx.Memo)
	}
	name = strings.TrimSpace(name)

	prefixes := []string{
		"POS PURCHASE ",
		"PURCHASE AUTHORIZED ON ",
		"DEBIT CARD PURCHASE ",
		"ACH DEBIT ",
		"CHECK CARD ",
		"VISA PURCHASE ",
		"DEBIT PURCHASE ",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// categoryFor maps an OFX account type to an account category.
func categoryFor(acctType string) string {
	switch acctType {
	case "SAVINGS", "MONEYMRKT", "CD":
		return model.CategorySave
	case "CREDITLINE":
		return model.CategoryCredit
	default:
		return model.CategoryPay
	}
}

func accountID(bankID, number string) string {
	if bankID == "" {
		return number
	}
	return bankID + "-" + number
}

// amountPrecision covers every fractional digit OFX amounts carry in practice.
const amountPrecision = 8

func toDecimal(amount ofxgo.Amount) (decimal.Decimal, error) {
	text := amount.Rat.FloatString(amountPrecision)
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", text, err)
	}
	return d, nil
}
