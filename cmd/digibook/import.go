package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/common"
	"github.com/digibook/digibook/internal/export"
	"github.com/digibook/digibook/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import data into the ledger",
	}

	cmd.AddCommand(importJSONCmd())
	cmd.AddCommand(importOFXCmd())

	return cmd
}

func importJSONCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "json <file>",
		Short: "Replace the ledger with a JSON or encrypted export",
		Long: `Validate and import an export file. The existing ledger contents are
replaced; a backup is taken first. Encrypted exports need --password.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(os.Stdout, "Import")
			ctx := handler.HandleInterrupts(cmd.Context())

			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read import file: %w", err)
			}

			if password != "" {
				payload, err = export.Decrypt(payload, password)
				if err != nil {
					if errors.Is(err, common.ErrBadPassword) {
						return fmt.Errorf("wrong password for %s", args[0])
					}
					return err
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			// Safety net before the destructive replace.
			mgr := store.NewBackupManager(backupKeep())
			if _, err := mgr.Create(ctx, "pre-import"); err != nil {
				return fmt.Errorf("failed to create pre-import backup: %w", err)
			}

			bar := progressbar.Default(-1, "importing")
			snap, err := export.ImportJSON(ctx, store, payload)
			_ = bar.Finish()
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf(
				"Imported %d accounts, %d cards, %d expenses, %d pending transactions, %d categories",
				len(snap.Accounts), len(snap.CreditCards), len(snap.FixedExpenses),
				len(snap.PendingTransactions), len(snap.Categories))))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password for encrypted exports")

	return cmd
}

func importOFXCmd() *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "ofx <file>",
		Short: "Import an OFX/QFX statement as pending transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(os.Stdout, "Import")
			ctx := handler.HandleInterrupts(cmd.Context())

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if _, err := store.GetAccount(ctx, accountID); err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open OFX file: %w", err)
			}
			defer file.Close()

			parser := ofx.NewParser()
			pending, err := parser.ParseStatements(ctx, file, accountID)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println(cli.FormatInfo("No transactions found in statement"))
				return nil
			}

			bar := progressbar.Default(int64(len(pending)), "importing")
			for i := range pending {
				if err := store.CreatePendingTransaction(ctx, &pending[i]); err != nil {
					return err
				}
				_ = bar.Add(1)
			}
			_ = bar.Finish()

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d pending transactions", len(pending))))
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account to import against")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}
