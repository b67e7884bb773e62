package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Veraticus/balance-history/internal/cli"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/Veraticus/balance-history/internal/ofx"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import accounts and transactions from OFX/QFX files",
		Long: `Import statements from OFX or QFX (Quicken) files exported from your bank.

Each statement's ledger balance becomes the account's current balance, so
import the most recent statement last.

Examples:
  # Import single file
  balance import-ofx --user user1 ~/Downloads/checking_mar_2024.qfx

  # Import every QFX file in a directory as savings
  balance import-ofx --user user1 --category SAVE ~/Downloads/Savings/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().StringP("user", "u", "", "user who owns the imported accounts")
	cmd.Flags().StringP("category", "c", "", "category for every imported account (default: inferred from account type)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	userID, _ := cmd.Flags().GetString("user")
	category, _ := cmd.Flags().GetString("category")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files",
		"file_count", len(files),
		"user_id", userID,
		"dry_run", dryRun)

	ctx := cmd.Context()
	parser := ofx.NewParser()
	accounts := make(map[string]model.Account)
	var accountOrder []string
	var transactions []model.Transaction
	seen := make(map[string]bool)

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Parsing statements"),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	out := cmd.OutOrStdout()
	var skipped []string
	for _, path := range files {
		statements, err := parseOFXFile(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to import file", "file", path, "error", err)
			skipped = append(skipped, fmt.Sprintf("Skipped %s: %v", path, err))
		}

		for _, statement := range statements {
			statement.Assign(userID, category)
			if _, ok := accounts[statement.Account.ID]; !ok {
				accountOrder = append(accountOrder, statement.Account.ID)
			}
			// Later files win: their ledger balance is more recent.
			accounts[statement.Account.ID] = statement.Account

			for _, txn := range statement.Transactions {
				if seen[txn.Hash] {
					continue
				}
				seen[txn.Hash] = true
				transactions = append(transactions, txn)
			}
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	for _, warning := range skipped {
		if _, err := fmt.Fprintln(out, cli.FormatWarning(warning)); err != nil {
			return err
		}
	}

	if len(accounts) == 0 {
		return fmt.Errorf("no statements imported from %d files", len(files))
	}

	toSave := make([]model.Account, 0, len(accountOrder))
	for _, id := range accountOrder {
		toSave = append(toSave, accounts[id])
	}

	if dryRun {
		if err := cli.RenderAccounts(out, userID, toSave, cfg.Currency); err != nil {
			return err
		}
		_, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d transactions parsed, nothing saved", len(transactions))))
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	before, err := store.GetTransactionCount(ctx)
	if err != nil {
		return err
	}
	if err := store.SaveAccounts(ctx, toSave); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	if len(transactions) > 0 {
		if err := store.SaveTransactions(ctx, transactions); err != nil {
			return fmt.Errorf("failed to save transactions: %w", err)
		}
	}
	after, err := store.GetTransactionCount(ctx)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"Imported %d accounts and %d new transactions (%d already known)",
		len(toSave), after-before, len(transactions)-(after-before))))
	return err
}

func parseOFXFile(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Statement, error) {
	f, err := os.Open(filepath.Clean(path)) // #nosec G304 -- user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parser.ParseFile(cmd.Context(), f)
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}
