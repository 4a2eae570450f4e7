package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/money"
)

func newTxCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transactions"},
		Short:   "List and record transactions",
	}
	cmd.AddCommand(newTxListCmd(a), newTxAddCmd(a), newTxEditCmd(a), newTxRmCmd(a), newTxImportCmd(a))
	return cmd
}

func newTxListCmd(a *app) *cobra.Command {
	var opts api.PageOptions
	var date, month string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page, one day or one month of transactions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			switch {
			case date != "":
				day, err := api.ParseDate(date)
				if err != nil {
					return err
				}
				var accountID *int64
				if cmd.Flags().Changed("account") {
					accountID = &opts.AccountID
				}
				txs, err := a.ledger.Day(ctx, day, accountID)
				if err != nil {
					return err
				}
				a.printTransactions(txs)
			case month != "":
				m, err := time.ParseInLocation("2006-01", month, a.cfg.Location())
				if err != nil {
					return fmt.Errorf("invalid --month %q, want YYYY-MM", month)
				}
				txs, err := a.ledger.Month(ctx, m.Year(), m.Month())
				if err != nil {
					return err
				}
				a.printTransactions(txs)
			default:
				page, err := a.ledger.Page(ctx, opts)
				if err != nil {
					return err
				}
				a.printTransactions(page.Content)
				a.printf("page %d of %d (%d total)\n", page.Number+1, max(page.TotalPages, 1), page.TotalElements)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&opts.AccountID, "account", 0, "only this account")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "page number, from 0")
	cmd.Flags().IntVar(&opts.Size, "size", 20, "page size")
	cmd.Flags().StringVar(&date, "date", "", "one day, YYYY-MM-DD")
	cmd.Flags().StringVar(&month, "month", "", "one month, YYYY-MM")
	return cmd
}

// txFlags are the fields shared by add and edit.
type txFlags struct {
	account  int64
	typ      string
	amount   string
	category int64
	memo     string
	date     string
}

func (f *txFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.account, "account", 0, "account id")
	cmd.Flags().StringVar(&f.typ, "type", "", "INCOME or EXPENSE")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount in won, e.g. 12,500")
	cmd.Flags().Int64Var(&f.category, "category", 0, "category id")
	cmd.Flags().StringVar(&f.memo, "memo", "", "memo")
	cmd.Flags().StringVar(&f.date, "date", "", "YYYY-MM-DD or \"YYYY-MM-DD HH:MM\"")
}

// parseWhen reads a transaction date. A bare day is taken at noon.
func parseWhen(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, loc), nil
}

func newTxAddCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			typ, err := api.ParseTransactionType(f.typ)
			if err != nil {
				return err
			}
			amount, err := money.Parse(f.amount)
			if err != nil {
				return err
			}
			when := time.Now().In(a.cfg.Location())
			if f.date != "" {
				if when, err = parseWhen(f.date, a.cfg.Location()); err != nil {
					return err
				}
			}
			t, err := a.ledger.Create(cmd.Context(), api.TransactionCreateRequest{
				AccountID:       f.account,
				Type:            typ,
				Amount:          amount,
				CategoryID:      f.category,
				Memo:            f.memo,
				TransactionDate: api.NewDateTime(when),
			})
			if err != nil {
				return err
			}
			a.printf("recorded transaction %d: %s\n", t.ID, money.Signed(t.Amount, t.Type))
			return nil
		},
	}
	f.bind(cmd)
	for _, name := range []string{"account", "type", "amount", "category"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTxEditCmd(a *app) *cobra.Command {
	var f txFlags
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change fields of a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			txID, err := parseID(args[0])
			if err != nil {
				return err
			}
			var req api.TransactionUpdateRequest
			changed := cmd.Flags().Changed
			if changed("account") {
				req.AccountID = &f.account
			}
			if changed("category") {
				req.CategoryID = &f.category
			}
			if changed("memo") {
				req.Memo = &f.memo
			}
			if changed("type") {
				typ, err := api.ParseTransactionType(f.typ)
				if err != nil {
					return err
				}
				req.Type = &typ
			}
			if changed("amount") {
				amount, err := money.Parse(f.amount)
				if err != nil {
					return err
				}
				req.Amount = &amount
			}
			if changed("date") {
				when, err := parseWhen(f.date, a.cfg.Location())
				if err != nil {
					return err
				}
				dt := api.NewDateTime(when)
				req.TransactionDate = &dt
			}
			t, err := a.ledger.Update(cmd.Context(), txID, req)
			if err != nil {
				return err
			}
			a.printf("updated transaction %d: %s\n", t.ID, money.Signed(t.Amount, t.Type))
			return nil
		},
	}
	f.bind(cmd)
	return cmd
}

func newTxRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm ID",
		Short: "Delete a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			txID, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.ledger.Delete(cmd.Context(), txID); err != nil {
				return err
			}
			a.printf("deleted transaction %d\n", txID)
			return nil
		},
	}
}

func newTxImportCmd(a *app) *cobra.Command {
	var account int64
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Record transactions from a CSV of date,amount,category,memo",
		Long: `Imports a CSV with the columns date, amount, category and memo.
A negative amount is an expense, a positive one income. Rows that match a
transaction already on the server are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := a.ingest.ImportCSV(cmd.Context(), f, account)
			if err != nil {
				return err
			}
			a.printf("imported %d, skipped %d, errors %d\n", res.Imported, res.Skipped, len(res.Errors))
			for _, e := range res.Errors {
				a.printf("  %v\n", e)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&account, "account", 0, "account to record against")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
