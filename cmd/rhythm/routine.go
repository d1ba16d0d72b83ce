// ABOUTME: CLI commands for the daily tiny routine.
// ABOUTME: Draws, completes and refreshes routines under the token economy rules.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
)

var routinePaid bool

var routineCmd = &cobra.Command{
	Use:     "routine",
	Aliases: []string{"r"},
	Short:   "Show today's routine",
	Long: `Show, draw, complete and refresh today's tiny routine.

COMMANDS:

  new        Draw a routine if none is active
  complete   Mark the routine done and earn 0.2 tokens
  refresh    Swap the routine (free once an hour, or --paid for 0.5 tokens)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := st.Routine()
		if r == nil {
			fmt.Println("No routine yet. Draw one with 'rhythm routine new'.")
			return nil
		}
		printRoutine(*r)
		return nil
	},
}

var routineNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Draw today's routine",
	RunE: func(cmd *cobra.Command, args []string) error {
		if r := st.Routine(); r != nil && !r.Completed {
			printRoutine(*r)
			fmt.Println(color.New(color.Faint).Sprint("  Already active. Use 'rhythm routine refresh' to swap it."))
			return nil
		}
		r, err := st.DrawRoutine(routinePaid)
		if err != nil {
			return routineError(err)
		}
		color.Green("✓ New routine")
		printRoutine(r)
		return nil
	},
}

var routineCompleteCmd = &cobra.Command{
	Use:     "complete",
	Aliases: []string{"done"},
	Short:   "Complete the active routine",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := st.CompleteRoutine()
		if err != nil {
			return routineError(err)
		}
		color.Green("✓ Routine complete (+%.1f tokens)", store.RoutineReward)
		fmt.Printf("  Tokens: %.1f\n", p.Tokens)
		fmt.Printf("  Streak: %d day(s) (best %d)\n", p.CurrentStreak, p.BestStreak)
		return nil
	},
}

var routineRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Swap the routine for a new one",
	Long: `Swap the routine for a new one.

A free refresh is available once an hour. Pass --paid to spend 0.5 tokens
instead of waiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := st.DrawRoutine(routinePaid)
		if err != nil {
			return routineError(err)
		}
		if routinePaid {
			color.Green("✓ Routine refreshed (-%.1f tokens)", store.RefreshCost)
		} else {
			color.Green("✓ Routine refreshed")
		}
		printRoutine(r)
		return nil
	},
}

// routineError adds a hint to economy errors.
func routineError(err error) error {
	var cooldown *store.CooldownError
	switch {
	case errors.As(err, &cooldown):
		return fmt.Errorf("%w\nUse --paid to refresh now for %.1f tokens", err, store.RefreshCost)
	case errors.Is(err, store.ErrNoActiveRoutine):
		return fmt.Errorf("%w\nDraw one with 'rhythm routine new'", err)
	case errors.Is(err, store.ErrInsufficientTokens):
		return fmt.Errorf("%w: you have %.1f", err, st.Profile().Tokens)
	}
	return err
}

func printRoutine(r models.Routine) {
	mark := "○"
	if r.Completed {
		mark = color.GreenString("✓")
	}
	fmt.Printf("  %s %s\n", mark, r.Text)
}

func init() {
	routineNewCmd.Flags().BoolVar(&routinePaid, "paid", false, "Spend tokens instead of waiting for the free refresh")
	routineRefreshCmd.Flags().BoolVar(&routinePaid, "paid", false, "Spend tokens instead of waiting for the free refresh")

	routineCmd.AddCommand(routineNewCmd)
	routineCmd.AddCommand(routineCompleteCmd)
	routineCmd.AddCommand(routineRefreshCmd)
	rootCmd.AddCommand(routineCmd)
}
