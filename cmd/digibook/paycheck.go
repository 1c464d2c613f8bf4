package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/derive"
	"github.com/digibook/digibook/internal/model"
)

func paycheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paycheck",
		Short: "Manage the paycheck schedule",
	}

	cmd.AddCommand(showPaycheckCmd())
	cmd.AddCommand(setPaycheckCmd())

	return cmd
}

func showPaycheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the configured schedule and upcoming paydays",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			settings, err := store.GetPaycheckSettings(ctx)
			if err != nil {
				return err
			}
			if !settings.Configured() {
				fmt.Println(cli.FormatInfo("No paycheck schedule configured. Use 'digibook paycheck set'."))
				return nil
			}

			fmt.Printf("Frequency: %s\nLast paycheck: %s\n", settings.Frequency, settings.LastPaycheckDate)

			upcoming, err := derive.UpcomingPaychecks(settings, model.Today(), 3)
			if err != nil {
				return err
			}
			fmt.Println("Upcoming paydays:")
			for _, payday := range upcoming {
				fmt.Printf("  %s\n", payday)
			}

			return nil
		},
	}
}

func setPaycheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <last-paycheck-date>",
		Short: "Set the biweekly schedule from the last paycheck date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			last, err := model.ParseDate(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			settings := &model.PaycheckSettings{
				LastPaycheckDate: last,
				Frequency:        model.PaycheckFrequencyBiweekly,
			}
			if err := store.SavePaycheckSettings(ctx, settings); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Biweekly schedule set; last paycheck %s", last)))
			return nil
		},
	}
}
