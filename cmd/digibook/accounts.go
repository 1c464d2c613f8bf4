package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/derive"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/validation"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
		Long:  `List, add, update, and delete checking and savings accounts.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())
	cmd.AddCommand(updateAccountCmd())
	cmd.AddCommand(deleteAccountCmd())
	cmd.AddCommand(setDefaultAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts with projected balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			accounts, err := store.GetAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to get accounts: %w", err)
			}
			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'digibook accounts add' to create one."))
				return nil
			}

			pending, err := store.GetPendingTransactions(ctx)
			if err != nil {
				return fmt.Errorf("failed to get pending transactions: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Type"),
				cli.BoldStyle.Render("Balance"),
				cli.BoldStyle.Render("Projected"),
				cli.BoldStyle.Render("Default"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 8),
				strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 7))

			for i := range accounts {
				a := &accounts[i]
				marker := ""
				if a.IsDefault {
					marker = cli.SuccessIcon
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Name, a.Type,
					cli.FormatAmount(a.CurrentBalance),
					cli.FormatAmount(derive.ProjectedBalance(a, pending)),
					marker)
			}

			cards, err := store.GetCreditCards(ctx)
			if err != nil {
				return fmt.Errorf("failed to get credit cards: %w", err)
			}
			fmt.Fprintf(w, "\nLiquid: %s\tNet worth: %s\n",
				cli.FormatAmount(derive.LiquidBalance(accounts)),
				cli.FormatAmount(derive.NetWorth(accounts, cards)))

			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var (
		accountType string
		balance     float64
		makeDefault bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			res := validation.ValidateAccount(model.Account{
				Name:           args[0],
				Type:           model.AccountType(accountType),
				CurrentBalance: balance,
				IsDefault:      makeDefault,
			})
			if !res.OK {
				return fmt.Errorf("invalid account: %s", strings.Join(issueMessages(res.Errors), "; "))
			}

			account := res.Sanitized
			if err := store.CreateAccount(ctx, &account); err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created account %q (id %d)", account.Name, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "checking", "account type (checking, savings)")
	cmd.Flags().Float64Var(&balance, "balance", 0, "starting balance")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default account")

	return cmd
}

func updateAccountCmd() *cobra.Command {
	var (
		name    string
		balance float64
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an account's name or balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			account, err := store.GetAccount(ctx, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				account.Name = name
			}
			if cmd.Flags().Changed("balance") {
				account.CurrentBalance = balance
			}

			res := validation.ValidateAccount(*account)
			if !res.OK {
				return fmt.Errorf("invalid account: %s", strings.Join(issueMessages(res.Errors), "; "))
			}
			updated := res.Sanitized
			if err := store.UpdateAccount(ctx, &updated); err != nil {
				return fmt.Errorf("failed to update account: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated account %q", updated.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new account name")
	cmd.Flags().Float64Var(&balance, "balance", 0, "new current balance")

	return cmd
}

func deleteAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Long: `Delete an account. Deletion is refused while pending transactions
reference the account; if the default account is deleted, the oldest
remaining account becomes the default.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteAccount(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted account %d", id)))
			return nil
		},
	}
}

func setDefaultAccountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <id>",
		Short: "Make an account the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "account")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SetDefaultAccount(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Account %d is now the default", id)))
			return nil
		},
	}
}
