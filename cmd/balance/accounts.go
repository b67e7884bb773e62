package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/balance-history/internal/cli"
	"github.com/Veraticus/balance-history/internal/common"
	"github.com/Veraticus/balance-history/internal/model"
	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List a user's accounts and current balances",
		Args:  cobra.NoArgs,
		RunE:  runAccounts,
	}

	cmd.Flags().StringP("user", "u", "", "user whose accounts to list")
	cmd.Flags().StringP("account", "a", "", "show only this account")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	userID, _ := cmd.Flags().GetString("user")
	accountID, _ := cmd.Flags().GetString("account")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	var accounts []model.Account
	if accountID != "" {
		account, err := store.GetAccountByID(ctx, accountID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("failed to get account: %w", err)
		}
		if account == nil || account.UserID != userID {
			return common.NewUserError(fmt.Sprintf("Account %s not found for %s", accountID, userID), common.ErrNotFound)
		}
		accounts = []model.Account{*account}
	} else {
		accounts, err = store.ListAccounts(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to list accounts: %w", err)
		}
	}

	return cli.RenderAccounts(cmd.OutOrStdout(), userID, model.Accounts(accounts), cfg.Currency)
}
