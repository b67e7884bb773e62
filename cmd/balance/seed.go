package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/balance-history/internal/cli"
	"github.com/Veraticus/balance-history/internal/fixture"
	"github.com/Veraticus/balance-history/internal/history"
	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed FILE",
		Short: "Load accounts and transactions from a YAML ledger",
		Long: `Load a YAML ledger into the database. Transactions dated with days_ago are
placed relative to today, so a seeded ledger always yields the same history.`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	today := history.Midnight(time.Now(), time.Local)
	ledger, err := fixture.LoadFile(args[0], today)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if len(ledger.Accounts) > 0 {
		if err := store.SaveAccounts(ctx, ledger.Accounts); err != nil {
			return fmt.Errorf("failed to save accounts: %w", err)
		}
	}
	if len(ledger.Transactions) > 0 {
		if err := store.SaveTransactions(ctx, ledger.Transactions); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
	}

	slog.Info("Seeded ledger",
		"file", args[0],
		"accounts", len(ledger.Accounts),
		"transactions", len(ledger.Transactions))

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
		"Loaded %d accounts and %d transactions", len(ledger.Accounts), len(ledger.Transactions))))
	return err
}
