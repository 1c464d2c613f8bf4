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
	"github.com/digibook/digibook/internal/service"
	"github.com/digibook/digibook/internal/validation"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Manage fixed expenses",
		Long:  `List, add, update, and delete recurring fixed expenses.`,
	}

	cmd.AddCommand(listExpensesCmd())
	cmd.AddCommand(addExpenseCmd())
	cmd.AddCommand(deleteExpenseCmd())
	cmd.AddCommand(budgetCmd())

	return cmd
}

func listExpensesCmd() *cobra.Command {
	var filter service.ExpenseFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses sorted by due date",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := store.GetExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to get expenses: %w", err)
			}

			today := model.Today()
			expenses = derive.SortExpenses(derive.FilterExpenses(expenses, filter, today))
			if len(expenses) == 0 {
				fmt.Println(cli.InfoStyle.Render("No expenses match."))
				return nil
			}

			settings, err := store.GetPaycheckSettings(ctx)
			if err != nil {
				return fmt.Errorf("failed to get paycheck settings: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Category"),
				cli.BoldStyle.Render("Due"),
				cli.BoldStyle.Render("Amount"),
				cli.BoldStyle.Render("Paid"),
				cli.BoldStyle.Render("Urgency"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4), strings.Repeat("-", 20), strings.Repeat("-", 14),
				strings.Repeat("-", 10), strings.Repeat("-", 10), strings.Repeat("-", 10),
				strings.Repeat("-", 14))

			for i := range expenses {
				e := &expenses[i]
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Name, e.Category, e.DueDate,
					cli.FormatAmount(e.Amount),
					cli.FormatAmount(e.PaidAmount),
					cli.FormatUrgency(derive.ClassifyUrgency(e, settings, today)))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&filter.Category, "category", "", "filter by category")
	cmd.Flags().StringVar(&filter.Status, "status", "", "filter by status (paid, unpaid, overdue)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "substring search on name or category")
	cmd.Flags().Int64Var(&filter.AccountID, "account", 0, "filter by funding account id")

	return cmd
}

func addExpenseCmd() *cobra.Command {
	var (
		amount   float64
		category string
		dueDate  string
		account  int64
		card     int64
		target   int64
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a fixed expense",
		Long: `Add a fixed expense funded by an account (--account), charged to a
card (--card), or paying down a card from an account (--account with
--target-card, category "Credit Card Payment").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			due, err := model.ParseDate(dueDate)
			if err != nil {
				return err
			}

			expense := &model.FixedExpense{
				Name:     strings.TrimSpace(args[0]),
				Amount:   amount,
				Category: category,
				DueDate:  due,
				Status:   model.ExpenseStatusPending,
			}
			switch {
			case target != 0:
				expense.Source = model.PaymentSource{
					Kind:               model.SourceCreditCardPayment,
					AccountID:          account,
					TargetCreditCardID: target,
				}
			case card != 0:
				expense.Source = model.PaymentSource{Kind: model.SourceCreditCard, CreditCardID: card}
			default:
				expense.Source = model.PaymentSource{Kind: model.SourceAccount, AccountID: account}
			}

			if res := validation.ValidatePaymentSource(expense); !res.OK {
				return fmt.Errorf("invalid payment source: %s", strings.Join(issueMessages(res.Errors), "; "))
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.CreateExpense(ctx, expense); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created expense %q (id %d)", expense.Name, expense.ID)))
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "budgeted amount")
	cmd.Flags().StringVar(&category, "category", "Other", "expense category")
	cmd.Flags().StringVar(&dueDate, "due", "", "due date (YYYY-MM-DD)")
	cmd.Flags().Int64Var(&account, "account", 0, "funding account id")
	cmd.Flags().Int64Var(&card, "card", 0, "credit card id to charge")
	cmd.Flags().Int64Var(&target, "target-card", 0, "credit card id to pay down")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("due")

	return cmd
}

func deleteExpenseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "expense")
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteExpense(ctx, id); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Deleted expense %d", id)))
			return nil
		},
	}
}

func budgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show budget vs actual with overpayment by category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			expenses, err := store.GetExpenses(ctx)
			if err != nil {
				return fmt.Errorf("failed to get expenses: %w", err)
			}

			summary := derive.BudgetVsActual(expenses)
			fmt.Println(cli.FormatTitle("Budget vs actual"))
			fmt.Printf("Budget: %s  Actual: %s  Overpayment: %s  Accuracy: %.1f%%\n\n",
				cli.FormatAmount(summary.TotalBudget),
				cli.FormatAmount(summary.TotalActual),
				cli.FormatAmount(summary.TotalOverpayment),
				summary.BudgetAccuracy)

			rollup := derive.OverpaymentByCategory(expenses)
			if len(rollup) == 0 {
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Category"),
				cli.BoldStyle.Render("Budget"),
				cli.BoldStyle.Render("Actual"),
				cli.BoldStyle.Render("Over"),
				cli.BoldStyle.Render("Count"),
				cli.BoldStyle.Render("Significant"))
			for _, c := range rollup {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n",
					c.Category,
					cli.FormatAmount(c.TotalBudget),
					cli.FormatAmount(c.TotalActual),
					cli.FormatAmount(c.TotalOverpayment),
					c.Count, c.SignificantCount)
			}

			return nil
		},
	}
}
