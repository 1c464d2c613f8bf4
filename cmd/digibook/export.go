package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
	"github.com/digibook/digibook/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the ledger",
	}

	cmd.AddCommand(exportJSONCmd())
	cmd.AddCommand(exportCSVCmd())
	cmd.AddCommand(exportEncryptedCmd())

	return cmd
}

func exportJSONCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "json",
		Short: "Export everything as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			data, err := export.ExportJSON(ctx, store)
			if err != nil {
				return err
			}
			if output == "" {
				fmt.Println(string(data))
				return nil
			}
			if err := os.WriteFile(output, data, 0600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported ledger to %s", output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}

func exportCSVCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Export each collection as a CSV file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			files, err := export.ExportCSV(ctx, store)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			for name, data := range files {
				if err := os.WriteFile(filepath.Join(dir, name), data, 0600); err != nil {
					return fmt.Errorf("failed to write %s: %w", name, err)
				}
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported %d CSV files to %s", len(files), dir)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "output directory")

	return cmd
}

func exportEncryptedCmd() *cobra.Command {
	var (
		output   string
		password string
	)

	cmd := &cobra.Command{
		Use:   "encrypted",
		Short: "Export everything as a password-protected file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if password == "" {
				password = os.Getenv("DIGIBOOK_EXPORT_PASSWORD")
			}
			if password == "" {
				return fmt.Errorf("provide --password or set DIGIBOOK_EXPORT_PASSWORD")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			plaintext, err := export.ExportJSON(ctx, store)
			if err != nil {
				return err
			}
			sealed, err := export.Encrypt(plaintext, password)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, sealed, 0600); err != nil {
				return fmt.Errorf("failed to write export: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Exported encrypted ledger to %s", output)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "digibook-export.enc", "output file")
	cmd.Flags().StringVar(&password, "password", "", "encryption password")

	return cmd
}
