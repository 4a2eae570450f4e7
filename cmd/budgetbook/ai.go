package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/budgetbook/budgetbook/internal/api"
	"github.com/budgetbook/budgetbook/internal/money"
	"github.com/budgetbook/budgetbook/internal/service"
)

func newAICmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Natural language entry and chat",
	}

	var save bool
	var account int64
	parse := &cobra.Command{
		Use:   "parse TEXT",
		Short: "Read a transaction out of free text, optionally saving it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			res, err := a.assistant.Parse(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			d, err := a.assistant.Draft(ctx, res)
			if err != nil {
				return err
			}
			if account != 0 {
				d.AccountID = account
			}
			a.printDraft(d)
			if !save {
				return nil
			}
			t, err := a.assistant.Confirm(ctx, d)
			if err != nil {
				return err
			}
			a.printf("saved transaction %d\n", t.ID)
			return nil
		},
	}
	parse.Flags().BoolVar(&save, "save", false, "record the parsed transaction")
	parse.Flags().Int64Var(&account, "account", 0, "account to record against (default first)")

	chat := &cobra.Command{
		Use:   "chat MESSAGE",
		Short: "Talk to the assistant",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			reply, err := a.assistant.Chat(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			a.printf("%s\n", reply.Message)
			if reply.ActionType == api.ActionTransaction && reply.Transaction != nil {
				a.printf("(suggested: %s %s, run `budgetbook ai parse` with --save to record)\n",
					reply.Transaction.CategoryName, money.Signed(reply.Transaction.Amount, reply.Transaction.Type))
			}
			return nil
		},
	}

	var clearAll bool
	var local bool
	history := &cobra.Command{
		Use:   "history",
		Short: "Show or clear the conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if local {
				msgs, err := a.assistant.LocalHistory(ctx, 0)
				if err != nil {
					return err
				}
				a.printChat(msgs)
				return nil
			}
			if err := a.requireLogin(); err != nil {
				return err
			}
			if clearAll {
				if err := a.assistant.ClearHistory(ctx); err != nil {
					return err
				}
				a.printf("history cleared\n")
				return nil
			}
			msgs, err := a.assistant.History(ctx)
			if err != nil {
				return err
			}
			a.printChat(msgs)
			return nil
		},
	}
	history.Flags().BoolVar(&clearAll, "clear", false, "delete the conversation")
	history.Flags().BoolVar(&local, "local", false, "read the offline log only")

	cmd.AddCommand(parse, chat, history)
	return cmd
}

func (a *app) printDraft(d service.TransactionDraft) {
	a.printf("%s %s\n", d.Type, money.Signed(d.Amount, d.Type))
	category := d.CategoryName
	if category == "" {
		category = "(no match)"
	}
	a.printf("  category   %s\n", category)
	a.printf("  account    %d\n", d.AccountID)
	a.printf("  date       %s\n", d.Date.Format("2006-01-02 15:04"))
	if d.Memo != "" {
		a.printf("  memo       %s\n", d.Memo)
	}
	a.printf("  confidence %.0f%%\n", d.Confidence*100)
	if err := d.Validate(); err != nil {
		a.printf("  %v\n", err)
	}
}

func (a *app) printChat(msgs []api.ChatMessage) {
	if len(msgs) == 0 {
		a.printf("no messages\n")
		return
	}
	for _, m := range msgs {
		who := "you"
		if m.Role == api.RoleAssistant {
			who = "ai"
		}
		stamp := ""
		if !m.Timestamp.IsZero() {
			stamp = m.Timestamp.Format("01-02 15:04") + " "
		}
		a.printf("%s%s: %s\n", stamp, who, m.Content)
	}
}
