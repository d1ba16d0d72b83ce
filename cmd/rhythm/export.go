// ABOUTME: CLI commands for exporting and importing rhythm progress.
// ABOUTME: Supports JSON, YAML, and Markdown export formats and JSON restore.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/export"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
	importYes    bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export progress",
	Long: `Export progress in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for journaling/sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include days since this date (YYYY-MM-DD, markdown only)

EXAMPLES:

  rhythm export json                        # Export everything as JSON
  rhythm export json -o backup.json         # Save to file
  rhythm export yaml                        # Export as YAML
  rhythm export markdown --since 2024-01-01 # Export days from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]
		d := export.FromSnapshot(st.Snapshot(), time.Now())

		var data []byte
		var err error

		switch format {
		case "json":
			data, err = export.JSON(d)
		case "yaml":
			data, err = export.YAML(d)
		case "markdown":
			var since *time.Time
			if exportSince != "" {
				t, err := time.ParseInLocation(store.DateLayout, exportSince, storeLocation())
				if err != nil {
					return fmt.Errorf("invalid date format: %s (use YYYY-MM-DD)", exportSince)
				}
				since = &t
			}
			data = []byte(export.Markdown(d, since))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}

		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}

		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore progress from a JSON backup",
	Long: `Restore progress from a JSON backup file.

This REPLACES the profile, logs, routine and garden with the backup's
contents. Older backups are migrated to the current format on the way in.
When sync is on, the restored progress is pushed to the cloud.

EXAMPLES:

  rhythm import backup.json               # Restore from file
  rhythm import backup.json --yes         # Skip the confirmation`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		d, err := export.ParseJSON(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if !importYes {
			fmt.Printf("This will REPLACE current progress with %d day(s) and %d garden item(s) from %s.\n",
				len(d.Logs), len(d.Garden), filename)
			fmt.Print("Continue? [y/N]: ")
			var confirm string
			fmt.Scanln(&confirm)
			if confirm != "y" && confirm != "Y" {
				fmt.Println("Canceled.")
				return nil
			}
		}

		st.Restore(d.Snapshot())

		color.Green("✓ Imported from %s", filename)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include days since date (YYYY-MM-DD)")
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "Skip confirmation prompt")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
