package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/balance-history/internal/cli"
	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/history"
	"github.com/Veraticus/balance-history/internal/service"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a user's daily balance history",
		Long: `Show the combined balance of a user's accounts at the end of each of the
last N days, today first.

Examples:
  # Last 10 days across every account
  balance history --user user1

  # Last 30 days of PAY accounts as JSON
  balance history --user user1 --days 30 --type PAY --format json`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}

	cmd.Flags().StringP("user", "u", "", "user whose accounts to include")
	cmd.Flags().IntP("days", "n", 0, "number of days, today included (default: history.days)")
	cmd.Flags().StringP("type", "t", "", "only include accounts of this category")
	cmd.Flags().StringP("format", "f", "table", "output format (table, json)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	accountType, _ := cmd.Flags().GetString("type")
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := service.HistoryOptions{Type: accountType, Days: cfg.HistoryDays}
	if cmd.Flags().Changed("days") {
		opts.Days, _ = cmd.Flags().GetInt("days")
	}
	if format != "table" && format != "json" {
		return common.NewUserError(fmt.Sprintf("Unknown format %q, use table or json", format), nil)
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := history.New(store, store).GetBalanceHistory(ctx, userID, opts)
	if err != nil {
		if errors.Is(err, common.ErrInvalidOptions) {
			return common.NewUserError(fmt.Sprintf("--days must be between 1 and %d", history.MaxDays), err)
		}
		return fmt.Errorf("failed to compute balance history: %w", err)
	}

	out := cmd.OutOrStdout()
	if format == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}
	return cli.RenderHistory(out, userID, accountType, result, cfg.Currency)
}
