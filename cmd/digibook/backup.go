package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/digibook/digibook/internal/cli"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage ledger backups",
	}

	cmd.AddCommand(createBackupCmd())
	cmd.AddCommand(listBackupsCmd())
	cmd.AddCommand(restoreBackupCmd())

	return cmd
}

func createBackupCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a backup of the current ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			info, err := store.NewBackupManager(backupKeep()).Create(ctx, reason)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created backup %s (%d bytes)", info.Key, info.Size)))
			return nil
		},
	}

	cmd.Flags().StringVar(&reason, "reason", "manual", "reason recorded with the backup")

	return cmd
}

func listBackupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			infos, err := store.NewBackupManager(backupKeep()).List(ctx)
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				fmt.Println(cli.InfoStyle.Render("No backups found."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Key"),
				cli.BoldStyle.Render("Reason"),
				cli.BoldStyle.Render("Created"),
				cli.BoldStyle.Render("Size"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 40), strings.Repeat("-", 12),
				strings.Repeat("-", 20), strings.Repeat("-", 10))

			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
					info.Key, info.Reason, info.Timestamp.Format("2006-01-02 15:04:05"), info.Size)
			}

			return nil
		},
	}
}

func restoreBackupCmd() *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "restore [key]",
		Short: "Restore a backup, replacing the current ledger",
		Long: `Restore the named backup, or the newest checksum-valid one with
--latest. The backup's checksum is verified before anything is replaced.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(os.Stdout, "Restore")
			ctx := handler.HandleInterrupts(cmd.Context())

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			mgr := store.NewBackupManager(backupKeep())
			switch {
			case latest:
				key, err := mgr.RestoreLatest(ctx)
				if err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Restored backup %s", key)))
			case len(args) == 1:
				if err := mgr.Restore(ctx, args[0]); err != nil {
					return err
				}
				fmt.Println(cli.FormatSuccess(fmt.Sprintf("Restored backup %s", args[0])))
			default:
				return fmt.Errorf("provide a backup key or --latest")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&latest, "latest", false, "restore the newest valid backup")

	return cmd
}
