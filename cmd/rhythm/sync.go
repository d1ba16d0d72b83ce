// ABOUTME: CLI commands for Charm-based sync.
// ABOUTME: Supports status, push, link, unlink, repair, reset, and wipe operations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/charm/kv"
	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/charm"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:     "sync",
	Aliases: []string{"s"},
	Short:   "Sync progress across devices",
	Long: `Sync progress across devices using Charm Cloud.

Your data is E2E encrypted with your SSH key before upload.
The server never sees your unencrypted progress.

HOW IT WORKS:

  On start, rhythm reads your cloud document once. If one exists it replaces
  the local profile, logs and garden. Changes you make are saved locally at
  once and pushed to the cloud a few seconds later.

GETTING STARTED:

  1. Link your device (creates/uses SSH key automatically):
     rhythm sync link

  2. On other devices, link with the same Charm account:
     rhythm sync link

  3. Check sync status:
     rhythm sync status

COMMANDS:

  link        Link this device to your Charm account
  unlink      Disconnect this device from Charm
  status      Show sync status and account info
  push        Push all local progress to the cloud now
  repair      Repair database corruption (checkpoints WAL, removes SHM, vacuums)
  reset       Reset local Charm data and restore from cloud (destructive)
  wipe        Delete cloud and local Charm data (destructive)`,
}

var syncLinkCmd = &cobra.Command{
	Use:   "link",
	Short: "Link this device to Charm",
	Long: `Link this device to your Charm account.

If you don't have a Charm account, one will be created using your SSH key.
If you already have an account, you'll be prompted to link via charm.sh.

Example:
  rhythm sync link`,
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Use charm CLI to link
		charmCmd := exec.Command("charm", "link")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to link: %w\n\nMake sure 'charm' CLI is installed: go install github.com/charmbracelet/charm@latest", err)
		}

		color.Green("\n✓ Device linked to Charm")
		fmt.Println("Your progress will now sync automatically across devices.")
		return nil
	},
}

var syncUnlinkCmd = &cobra.Command{
	Use:   "unlink",
	Short: "Disconnect from Charm",
	Long: `Disconnect this device from Charm.

This does not delete your local progress.
You can link again later with 'rhythm sync link'.`,
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Use charm CLI to unlink
		charmCmd := exec.Command("charm", "unlink")
		charmCmd.Stdin = os.Stdin
		charmCmd.Stdout = os.Stdout
		charmCmd.Stderr = os.Stderr

		if err := charmCmd.Run(); err != nil {
			return fmt.Errorf("failed to unlink: %w", err)
		}

		color.Green("✓ Device unlinked from Charm")
		fmt.Println("Your local progress is preserved.")

		return nil
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync status",
	Long: `Show current sync status including:
- Sync state and Charm account
- Whether local changes are waiting to be pushed
- Local cache backend`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := st.Status()

		fmt.Println("State:  ", formatState(status.State))
		fmt.Println("Backend:", cfg.GetBackend())
		fmt.Println("Device: ", cfg.DeviceID)

		if charmClient == nil {
			fmt.Println()
			if cfg.Offline {
				color.Yellow("Offline mode: nothing leaves this device")
			} else {
				color.Yellow("Charm client not initialized")
				fmt.Println("\nRun 'rhythm sync link' to connect to Charm.")
			}
			return nil
		}

		if status.UserID != "" {
			fmt.Println("Charm ID:", status.UserID)
		}
		fmt.Println("Server:  ", os.Getenv("CHARM_HOST"))
		fmt.Println()

		switch {
		case status.State != store.StateSynced:
			color.Yellow("⚠ Not synced yet; changes are kept locally")
			fmt.Println("\nRun 'rhythm sync link' if this device is not linked.")
		case status.Dirty || status.Pending:
			color.Yellow("⚠ Local changes waiting to be pushed")
		default:
			color.Green("✓ Up to date")
		}
		if !status.LastPush.IsZero() {
			fmt.Printf("  Last push: %s\n", status.LastPush.Local().Format(time.RFC1123))
		}
		return nil
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push all local progress now",
	Long: `Push the full profile, logs and garden to Charm Cloud now.

Normally pushes happen automatically a few seconds after each change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), closeTimeout)
		defer cancel()

		if err := st.PushAll(ctx); err != nil {
			return fmt.Errorf("push failed: %w", err)
		}
		color.Green("✓ Progress pushed to Charm")
		return nil
	},
}

var syncWipeCmd = &cobra.Command{
	Use:   "wipe",
	Short: "Delete all cloud and local Charm data",
	Long: `Delete all cloud backups and local Charm data.

This is a DESTRUCTIVE operation. ALL synced progress will be permanently
deleted. The local cache is left alone; remove it from the data directory
if you want a completely fresh start.`,
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Confirm
		fmt.Println("This will PERMANENTLY DELETE all cloud backups and local Charm data.")
		fmt.Print("Type 'wipe' to confirm: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "wipe" {
			fmt.Println("Canceled.")
			return nil
		}

		result, err := kv.Wipe(charm.DBName)
		if err != nil {
			return fmt.Errorf("wipe failed: %w", err)
		}

		color.Green("✓ Data wiped successfully")
		fmt.Printf("  Cloud backups deleted: %d\n", result.CloudBackupsDeleted)
		fmt.Printf("  Local files deleted: %d\n", result.LocalFilesDeleted)

		return nil
	},
}

var syncRepairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Repair database corruption",
	Long: `Repair Charm database corruption by checkpointing WAL, removing SHM files, checking integrity, and vacuuming.

Use this when you encounter database lock errors or corruption.
Run with --force to attempt recovery even if integrity checks fail.`,
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		fmt.Println("Repairing rhythm database...")
		result, err := kv.Repair(charm.DBName, force)

		// Show what happened
		if result.WalCheckpointed {
			color.Green("  ✓ WAL checkpointed")
		}
		if result.ShmRemoved {
			color.Green("  ✓ SHM file removed")
		}
		if result.IntegrityOK {
			color.Green("  ✓ Integrity check passed")
		} else {
			color.Red("  ✗ Integrity check failed")
		}
		if result.Vacuumed {
			color.Green("  ✓ Database vacuumed")
		}

		if err != nil {
			if !force {
				color.Yellow("\nRun with --force to attempt recovery.")
			}
			return fmt.Errorf("repair failed: %w", err)
		}

		color.Green("\n✓ Repair complete")
		return nil
	},
}

var syncResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset local Charm data and restore from cloud",
	Long: `Delete the local Charm copy and restore it from Charm Cloud.

This is a destructive operation. Use this to:
- Fix sync conflicts
- Reset a device to cloud state
- Start fresh on a device

The next command re-reads your cloud document and replaces local progress.`,
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Confirm
		fmt.Println("This will DELETE local Charm data and restore from cloud.")
		fmt.Print("Continue? [y/N]: ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Canceled.")
			return nil
		}

		err := kv.Reset(charm.DBName)
		if err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}

		color.Green("✓ Local data reset and restored from cloud")

		return nil
	},
}

func formatState(s store.SyncState) string {
	switch s {
	case store.StateSynced:
		return color.GreenString(s.String())
	case store.StateSyncing:
		return color.YellowString(s.String())
	default:
		return color.New(color.Faint).Sprint(s.String())
	}
}

func init() {
	syncCmd.AddCommand(syncLinkCmd)
	syncCmd.AddCommand(syncUnlinkCmd)
	syncCmd.AddCommand(syncStatusCmd)
	syncCmd.AddCommand(syncPushCmd)
	syncCmd.AddCommand(syncRepairCmd)
	syncCmd.AddCommand(syncResetCmd)
	syncCmd.AddCommand(syncWipeCmd)

	// Add --force flag to repair command
	syncRepairCmd.Flags().Bool("force", false, "Attempt recovery even if integrity checks fail")

	rootCmd.AddCommand(syncCmd)
}
