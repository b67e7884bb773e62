package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/balance-history/internal/model"
	"github.com/google/uuid"
)

// SaveTransactions saves multiple transactions to the database. Transactions
// whose ID or hash is already stored are skipped.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.saveTransactionsTx(ctx, tx, transactions); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *SQLiteStorage) saveTransactionsTx(ctx context.Context, tx *sql.Tx, transactions []model.Transaction) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, hash, account_id, amount, description, completed
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, txn := range transactions {
		// Hash before assigning an ID so re-imports of ID-less entries collide.
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}

		result, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.Hash,
			txn.AccountID,
			txn.Amount.String(),
			txn.Description,
			txn.Completed.UTC(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	slog.Debug("Saved transactions",
		"received", len(transactions),
		"inserted", inserted,
		"skipped", len(transactions)-inserted)

	return nil
}

// ListTransactions returns the transactions of the given accounts, ordered by
// completion time. A non-nil window restricts results to completions inside
// it, bounds included.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, accountIDs []string, window *model.DateRange) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateDateRange(window); err != nil {
		return nil, err
	}
	return s.listTransactionsTx(ctx, s.db, accountIDs, window)
}

func (s *SQLiteStorage) listTransactionsTx(ctx context.Context, q queryable, accountIDs []string, window *model.DateRange) ([]model.Transaction, error) {
	transactions := []model.Transaction{}
	if len(accountIDs) == 0 {
		return transactions, nil
	}

	query := `
		SELECT id, hash, account_id, amount, description, completed
		FROM transactions
		WHERE account_id IN (` + placeholders(len(accountIDs)) + `)
	`
	args := make([]any, 0, len(accountIDs)+2)
	for _, id := range accountIDs {
		args = append(args, id)
	}

	if window != nil {
		query += " AND completed >= ? AND completed <= ?"
		args = append(args, window.Start.UTC(), window.End.UTC())
	}

	query += " ORDER BY completed ASC, id ASC"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var txn model.Transaction
		var description sql.NullString
		if err := rows.Scan(
			&txn.ID,
			&txn.Hash,
			&txn.AccountID,
			&txn.Amount,
			&description,
			&txn.Completed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txn.Description = description.String
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

// GetTransactionCount returns the total number of stored transactions.
func (s *SQLiteStorage) GetTransactionCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
