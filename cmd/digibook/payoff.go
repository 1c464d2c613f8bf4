package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/derive"
	"github.com/digibook/digibook/internal/model"
)

func payoffCmd() *cobra.Command {
	var payment float64

	cmd := &cobra.Command{
		Use:   "payoff <card-id>",
		Short: "Amortize a card's balance at a fixed monthly payment",
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

			card, err := app.store.GetCreditCard(ctx, id)
			if err != nil {
				return err
			}
			if payment == 0 {
				payment = card.MinimumPayment
			}

			res := app.memo.Payoff(card.Balance, payment, card.InterestRate, model.Today())
			if !res.Success {
				switch res.Reason {
				case derive.PaymentBelowInterest:
					return fmt.Errorf("monthly payment %.2f does not cover interest on %q; increase the payment",
						payment, card.Name)
				case derive.PayoffTooLong:
					return fmt.Errorf("paying off %q at %.2f/month would take more than 50 years", card.Name, payment)
				default:
					return fmt.Errorf("payoff calculation failed")
				}
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Payoff plan for %s", card.Name)))
			fmt.Printf("Monthly payment: %s\nMonths: %d\nTotal interest: %s\nTotal cost: %s\nPayoff date: %s\n",
				cli.FormatAmount(payment),
				res.Months,
				cli.FormatAmount(res.TotalInterest),
				cli.FormatAmount(res.TotalCost),
				res.PayoffDate)
			return nil
		},
	}

	cmd.Flags().Float64Var(&payment, "payment", 0, "monthly payment (default: card minimum)")

	return cmd
}
