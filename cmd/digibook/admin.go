package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/storage"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administrative operations",
	}

	cmd.AddCommand(adminResetCmd())
	cmd.AddCommand(adminAuditCmd())

	return cmd
}

func adminResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reinitialize the database, restoring the newest valid backup",
		Long: `Remove the database files, reinitialize a fresh schema, and restore
the newest checksum-valid backup. Without a valid backup the ledger
starts empty with the default categories.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if !force {
				return fmt.Errorf("this deletes the current database; re-run with --force")
			}

			dbPath := databasePath()
			for _, suffix := range []string{"", "-wal", "-shm"} {
				if err := os.Remove(dbPath + suffix); err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("failed to remove database: %w", err)
				}
			}

			store, err := storage.OpenWithRecovery(ctx, dbPath, backupKeep())
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Println(cli.FormatSuccess("Database reinitialized"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "confirm the destructive reset")

	return cmd
}

func adminAuditCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent audit records",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.GetAuditRecords(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println(cli.InfoStyle.Render("No audit records."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("When"),
				cli.BoldStyle.Render("Kind"),
				cli.BoldStyle.Render("Expense"),
				cli.BoldStyle.Render("Delta"),
				cli.BoldStyle.Render("Participants"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20), strings.Repeat("-", 16),
				strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 30))

			for i := range records {
				r := &records[i]
				var parts []string
				for _, p := range r.Participants {
					parts = append(parts, fmt.Sprintf("%s %d: %.2f→%.2f", p.Entity, p.EntityID, p.Before, p.After))
				}
				expense := ""
				if r.ExpenseID != 0 {
					expense = fmt.Sprintf("%d", r.ExpenseID)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\n",
					r.CreatedAt.Format("2006-01-02 15:04:05"), r.Kind, expense, r.Delta,
					strings.Join(parts, "; "))
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum records to show")

	return cmd
}
