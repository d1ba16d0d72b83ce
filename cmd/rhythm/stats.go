// ABOUTME: CLI command for journey statistics.
// ABOUTME: Prints the log summary, streaks and a strip of recent days.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsDays int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your journey",
	Long: `Show logged days, average sleep, routine days, streaks and a strip of
recent days.

In the strip, ● marks a completed check-in, ◆ a completed routine.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if statsDays < 1 {
			return fmt.Errorf("--days must be at least 1")
		}

		sum := st.Summary()
		bold := color.New(color.Bold)
		fmt.Println(bold.Sprint("Journey"))
		fmt.Printf("  Days logged:   %d\n", sum.TotalDays)
		fmt.Printf("  Avg sleep:     %.1f h\n", sum.AvgSleep)
		fmt.Printf("  Routine days:  %d\n", sum.RoutineDays)
		fmt.Printf("  Streak:        %d (best %d)\n", sum.CurrentStreak, sum.BestStreak)
		fmt.Printf("  Tokens:        %.1f\n", st.Profile().Tokens)
		fmt.Println()

		fmt.Println(bold.Sprintf("Last %d days", statsDays))
		faint := color.New(color.Faint)
		for _, d := range st.Rhythm(statsDays) {
			checkIn, routine := faint.Sprint("○"), faint.Sprint("◇")
			if d.CheckIn {
				checkIn = color.GreenString("●")
			}
			if d.Routine {
				routine = color.GreenString("◆")
			}
			sleep := ""
			if d.Sleep != nil {
				sleep = fmt.Sprintf("%.1f h", *d.Sleep)
			}
			fmt.Printf("  %s  %s %s  %s\n", d.Date, checkIn, routine, faint.Sprint(sleep))
		}
		return nil
	},
}

// storeLocation returns the configured day-key zone.
func storeLocation() *time.Location {
	if cfg != nil {
		if loc, err := cfg.GetLocation(); err == nil {
			return loc
		}
	}
	return time.UTC
}

func init() {
	statsCmd.Flags().IntVarP(&statsDays, "days", "d", 7, "Number of recent days to show")
	rootCmd.AddCommand(statsCmd)
}
