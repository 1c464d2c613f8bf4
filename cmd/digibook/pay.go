package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/model"
	"github.com/digibook/digibook/internal/validation"
)

func payCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "pay <expense-id> [amount]",
		Short: "Apply a payment against an expense",
		Long: `Set the expense's total paid amount. With --full, the budgeted amount
is paid. Credit card payments are checked against the funding account
first; add --force to pay despite warnings.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "expense")
			if err != nil {
				return err
			}

			app, err := initApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			expense, err := app.store.GetExpense(ctx, id)
			if err != nil {
				return err
			}

			var newPaid float64
			switch {
			case full:
				newPaid = expense.Amount
			case len(args) == 2:
				amount, err := parseAmount(args[1])
				if err != nil {
					return err
				}
				newPaid = amount
			default:
				return fmt.Errorf("provide an amount or --full")
			}

			if expense.Source.Kind == model.SourceCreditCardPayment {
				if err := previewCardPayment(cmd, app, expense, newPaid-expense.PaidAmount); err != nil {
					return err
				}
			}

			if err := app.engine.ApplyPayment(ctx, id, newPaid); err != nil {
				return err
			}

			updated, err := app.store.GetExpense(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Paid %s of %s on %q (%s)",
				cli.FormatAmount(updated.PaidAmount),
				cli.FormatAmount(updated.Amount),
				updated.Name, updated.Status)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "pay the full budgeted amount")
	cmd.Flags().Bool("force", false, "apply the payment despite warnings")

	return cmd
}

// previewCardPayment runs the card payment checks for the incremental
// amount and prints warnings and suggestions. Errors block; warnings only
// block without --force.
func previewCardPayment(cmd *cobra.Command, app *appContext, expense *model.FixedExpense, delta float64) error {
	ctx := cmd.Context()
	if delta <= 0 {
		return nil
	}

	funding, err := app.store.GetAccount(ctx, expense.Source.AccountID)
	if err != nil {
		return err
	}
	target, err := app.store.GetCreditCard(ctx, expense.Source.TargetCreditCardID)
	if err != nil {
		return err
	}

	res := validation.ValidateCreditCardPaymentAmount(funding, target, delta)
	if !res.OK {
		for _, issue := range res.Errors {
			fmt.Println(cli.FormatError(issue.Message))
		}
		printSuggestions(res.Suggestions)
		return fmt.Errorf("payment rejected")
	}

	force, _ := cmd.Flags().GetBool("force")
	if len(res.Warnings) > 0 {
		for _, issue := range res.Warnings {
			fmt.Println(cli.FormatWarning(issue.Message))
		}
		if !force {
			printSuggestions(res.Suggestions)
			return fmt.Errorf("re-run with --force to pay anyway")
		}
	}
	return nil
}

func printSuggestions(suggestions []validation.Suggestion) {
	if len(suggestions) == 0 {
		return
	}
	fmt.Println(cli.InfoStyle.Render("Suggested payments:"))
	for _, s := range suggestions {
		fmt.Printf("  %-10s %s\n", s.Kind, cli.FormatAmount(s.Amount))
	}
}
