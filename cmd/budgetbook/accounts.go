package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/money"
)

func newAccountsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "accounts",
		Aliases: []string{"account"},
		Short:   "List and manage bank accounts",
	}

	var bank string
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts, optionally at one bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			accounts, err := a.accounts.Load(cmd.Context(), bank)
			if err != nil {
				return err
			}
			a.printAccounts(accounts)
			a.printf("total %s\n", money.Format(a.accounts.Total()))
			return nil
		},
	}
	list.Flags().StringVar(&bank, "bank", "", "only accounts at this bank")

	var req api.AccountCreateRequest
	var balance string
	add := &cobra.Command{
		Use:   "add",
		Short: "Open an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			if balance != "" {
				b, err := decimal.NewFromString(balance)
				if err != nil {
					return err
				}
				req.Balance = &b
			}
			acct, err := a.accounts.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.printf("created account %d (%s)\n", acct.ID, acct.DisplayName())
			return nil
		},
	}
	add.Flags().StringVar(&req.BankName, "bank", "", "bank name")
	add.Flags().StringVar(&req.Alias, "alias", "", "display alias")
	add.Flags().StringVar(&balance, "balance", "", "opening balance")
	_ = add.MarkFlagRequired("bank")

	rename := &cobra.Command{
		Use:   "rename ID ALIAS",
		Short: "Change an account's alias",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			acct, err := a.accounts.UpdateAlias(cmd.Context(), accountID, args[1])
			if err != nil {
				return err
			}
			a.printf("account %d is now %q\n", acct.ID, acct.DisplayName())
			return nil
		},
	}

	rm := &cobra.Command{
		Use:   "rm ID",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.accounts.Delete(cmd.Context(), accountID); err != nil {
				return err
			}
			a.printf("deleted account %d\n", accountID)
			return nil
		},
	}

	cmd.AddCommand(list, add, rename, rm)
	return cmd
}

func parseID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return v, nil
}
