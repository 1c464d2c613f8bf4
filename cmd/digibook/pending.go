package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/model"
)

func pendingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Manage pending transactions",
		Long:  `List, add, settle, and delete not-yet-settled account transactions.`,
	}

	cmd.AddCommand(listPendingCmd())
	cmd.AddCommand(addPendingCmd())
	cmd.AddCommand(settlePendingCmd())
	cmd.AddCommand(deletePendingCmd())

	return cmd
}

func listPendingCmd() *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pending transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			var pending []model.PendingTransaction
			if accountID != 0 {
				pending, err = store.GetPendingTransactionsByAccount(ctx, accountID)
			} else {
				pending, err = store.GetPendingTransactions(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to get pending transactions: %w", err)
			}
			if len(pending) == 0 {
				fmt.Println(cli.InfoStyle.Render("No pending transactions."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Account"),
				cli.BoldStyle.Render("Amount"),
				cli.BoldStyle.Render("Category"),
				cli.BoldStyle.Render("Description"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 8), strings.Repeat("-", 10),
				strings.Repeat("-", 14), strings.Repeat("-", 30))

			for i := range pending {
				p := &pending[i]
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
					p.ID, p.AccountID, cli.FormatAmount(p.Amount), p.Category, p.Description)
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "only this account's transactions")

	return cmd
}

func addPendingCmd() *cobra.Command {
	var (
		accountID int64
		category  string
	)

	cmd := &cobra.Command{
		Use:   "add <amount> <description>",
		Short: "Add a pending transaction",
		Long:  `Add a pending transaction. Negative amounts are outflows.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			pending := &model.PendingTransaction{
				AccountID:   accountID,
				Amount:      amount,
				Category:    category,
				Description: strings.TrimSpace(args[1]),
			}
			if err := store.CreatePendingTransaction(ctx, pending); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created pending transaction %d for %s",
				pending.ID, cli.FormatAmount(pending.Amount))))
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id")
	cmd.Flags().StringVar(&category, "category", "Other", "transaction category")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func settlePendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <id>",
		Short: "Settle a pending transaction into its account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "pending transaction")
			if err != nil {
				return err
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.engine.Settle(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Settled pending transaction %d", id)))
			return nil
		},
	}
}

func deletePendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pending transaction without settling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "pending transaction")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeletePendingTransaction(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted pending transaction %d", id)))
			return nil
		},
	}
}
