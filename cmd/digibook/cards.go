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

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage credit cards",
		Long:  `List, add, update, and delete credit cards.`,
	}

	cmd.AddCommand(listCardsCmd())
	cmd.AddCommand(addCardCmd())
	cmd.AddCommand(updateCardCmd())
	cmd.AddCommand(deleteCardCmd())
	cmd.AddCommand(minExpenseCmd())

	return cmd
}

func listCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all credit cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			cards, err := store.GetCreditCards(ctx)
			if err != nil {
				return fmt.Errorf("failed to get credit cards: %w", err)
			}
			if len(cards) == 0 {
				fmt.Println(cli.InfoStyle.Render("No credit cards found. Use 'digibook cards add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Balance"),
				cli.BoldStyle.Render("Available"),
				cli.BoldStyle.Render("Rate"),
				cli.BoldStyle.Render("Min"),
				cli.BoldStyle.Render("Due"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 12),
				strings.Repeat("-", 12), strings.Repeat("-", 7), strings.Repeat("-", 9),
				strings.Repeat("-", 10))

			for i := range cards {
				c := &cards[i]
				name := c.Name
				if c.OverLimit() {
					name += " " + cli.FormatWarning("over limit")
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%.2f%%\t%s\t%s\n",
					c.ID, name,
					cli.FormatAmount(-c.Balance),
					cli.FormatAmount(c.AvailableCredit()),
					c.InterestRate,
					cli.FormatAmount(c.MinimumPayment),
					c.DueDate.String())
			}

			return nil
		},
	}
}

func addCardCmd() *cobra.Command {
	var (
		balance     float64
		creditLimit float64
		rate        float64
		minimum     float64
		dueDate     string
		closingDate string
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new credit card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			due, err := model.ParseDate(dueDate)
			if err != nil {
				return err
			}
			card := &model.CreditCard{
				Name:           strings.TrimSpace(args[0]),
				Balance:        balance,
				CreditLimit:    creditLimit,
				InterestRate:   rate,
				MinimumPayment: minimum,
				DueDate:        due,
			}
			if closingDate != "" {
				closing, err := model.ParseDate(closingDate)
				if err != nil {
					return err
				}
				card.StatementClosingDate = &closing
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.CreateCreditCard(ctx, card); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created card %q (id %d)", card.Name, card.ID)))
			return nil
		},
	}

	cmd.Flags().Float64Var(&balance, "balance", 0, "current balance (debt)")
	cmd.Flags().Float64Var(&creditLimit, "limit", 0, "credit limit")
	cmd.Flags().Float64Var(&rate, "rate", 0, "annual interest rate (percent)")
	cmd.Flags().Float64Var(&minimum, "minimum", 0, "minimum monthly payment")
	cmd.Flags().StringVar(&dueDate, "due", "", "payment due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&closingDate, "closing", "", "statement closing date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("due")
	_ = cmd.MarkFlagRequired("limit")

	return cmd
}

func updateCardCmd() *cobra.Command {
	var (
		name    string
		balance float64
		minimum float64
		dueDate string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "card")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			card, err := store.GetCreditCard(ctx, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				card.Name = strings.TrimSpace(name)
			}
			if cmd.Flags().Changed("balance") {
				card.Balance = balance
			}
			if cmd.Flags().Changed("minimum") {
				card.MinimumPayment = minimum
			}
			if cmd.Flags().Changed("due") {
				due, err := model.ParseDate(dueDate)
				if err != nil {
					return err
				}
				card.DueDate = due
			}

			if err := store.UpdateCreditCard(ctx, card); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Updated card %q", card.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new card name")
	cmd.Flags().Float64Var(&balance, "balance", 0, "new balance")
	cmd.Flags().Float64Var(&minimum, "minimum", 0, "new minimum payment")
	cmd.Flags().StringVar(&dueDate, "due", "", "new due date (YYYY-MM-DD)")

	return cmd
}

func deleteCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a credit card",
		Long:  `Delete a credit card. Deletion is refused while expenses reference the card.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "card")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteCreditCard(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted card %d", id)))
			return nil
		},
	}
}

func minExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "min-expense <id>",
		Short: "Create the minimum payment expense for a card's current due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "card")
			if err != nil {
				return err
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			expense, err := app.engine.EnsureMinimumPaymentExpense(ctx, id)
			if err != nil {
				return err
			}
			if expense == nil {
				fmt.Println(cli.FormatInfo("Card has no minimum payment; nothing to create"))
				return nil
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Minimum payment expense %q due %s (id %d)",
				expense.Name, expense.DueDate, expense.ID)))
			return nil
		},
	}
}
