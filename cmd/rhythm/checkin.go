// ABOUTME: CLI commands for the daily check-in.
// ABOUTME: Saves partial logs for today and prints today's record.
package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/spf13/cobra"
)

var (
	checkinSleep    float64
	checkinQuality  int
	checkinMeals    int
	checkinAppetite int
	checkinMood     string
	checkinEnergy   int
	checkinAnxiety  int
	checkinSymptoms []string
	checkinNote     string
	checkinDone     bool
)

var checkinCmd = &cobra.Command{
	Use:     "checkin",
	Aliases: []string{"c"},
	Short:   "Record today's check-in",
	Long: `Record today's check-in. Only the flags you pass are saved, so you can
check in a little at a time.

SCALES:

  --quality, --appetite, --energy, --anxiety take 1 (low) to 5 (high).
  --mood takes worst, bad, soso, good or great.

EXAMPLES:

  rhythm checkin --sleep 7.5 --quality 4
  rhythm checkin --mood good --energy 3 --symptom headache
  rhythm checkin --note "Walked to the river" --done`,
	RunE: func(cmd *cobra.Command, args []string) error {
		partial, err := checkinFromFlags(cmd)
		if err != nil {
			return err
		}
		if isEmptyLog(partial) {
			return fmt.Errorf("nothing to record (see 'rhythm checkin --help')")
		}

		saved := st.SaveDailyLog(partial)
		color.Green("✓ Checked in for %s", st.TodayKey())
		printLog(saved)
		return nil
	},
}

var checkinShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show today's check-in",
	RunE: func(cmd *cobra.Command, args []string) error {
		l, ok := st.TodayLog()
		if !ok {
			fmt.Printf("No check-in yet for %s.\n", st.TodayKey())
			return nil
		}
		fmt.Println(color.New(color.Bold).Sprint(st.TodayKey()))
		printLog(l)
		return nil
	},
}

func checkinFromFlags(cmd *cobra.Command) (models.DailyLog, error) {
	var l models.DailyLog
	flags := cmd.Flags()

	if flags.Changed("sleep") {
		if checkinSleep < 0 || checkinSleep > 24 {
			return l, fmt.Errorf("invalid sleep hours: %.1f (0-24)", checkinSleep)
		}
		l.SleepHours = models.Ptr(checkinSleep)
	}
	scales := []struct {
		flag  string
		value int
		dst   **int
	}{
		{"quality", checkinQuality, &l.SleepQuality},
		{"appetite", checkinAppetite, &l.Appetite},
		{"energy", checkinEnergy, &l.Energy},
		{"anxiety", checkinAnxiety, &l.Anxiety},
	}
	for _, s := range scales {
		if !flags.Changed(s.flag) {
			continue
		}
		if s.value < 1 || s.value > 5 {
			return l, fmt.Errorf("invalid %s: %d (1-5)", s.flag, s.value)
		}
		*s.dst = models.Ptr(s.value)
	}
	if flags.Changed("meals") {
		if checkinMeals < 0 {
			return l, fmt.Errorf("invalid meals: %d", checkinMeals)
		}
		l.MealCount = models.Ptr(checkinMeals)
	}
	if flags.Changed("mood") {
		if !models.IsValidMood(checkinMood) {
			return l, fmt.Errorf("unknown mood: %s\nValid moods: %s", checkinMood, strings.Join(models.AllMoods, ", "))
		}
		l.Mood = models.Ptr(checkinMood)
	}
	if flags.Changed("symptom") {
		for _, s := range checkinSymptoms {
			if !slices.Contains(models.Symptoms, s) {
				return l, fmt.Errorf("unknown symptom: %s\nValid symptoms: %s", s, strings.Join(models.Symptoms, ", "))
			}
		}
		l.PhysicalSymptoms = slices.Clone(checkinSymptoms)
	}
	if flags.Changed("note") {
		l.Note = models.Ptr(checkinNote)
	}
	if flags.Changed("done") {
		l.CheckInComplete = models.Ptr(checkinDone)
	}
	return l, nil
}

func isEmptyLog(l models.DailyLog) bool {
	return l.SleepHours == nil && l.SleepQuality == nil && l.MealCount == nil &&
		l.Appetite == nil && l.Mood == nil && l.Energy == nil && l.Anxiety == nil &&
		l.PhysicalSymptoms == nil && l.Note == nil && l.CheckInComplete == nil
}

func printLog(l models.DailyLog) {
	if l.SleepHours != nil {
		fmt.Printf("  Sleep:     %.1f h", *l.SleepHours)
		if l.SleepQuality != nil {
			fmt.Printf(" (quality %d/5)", *l.SleepQuality)
		}
		fmt.Println()
	}
	if l.MealCount != nil {
		fmt.Printf("  Meals:     %d\n", *l.MealCount)
	}
	if l.Appetite != nil {
		fmt.Printf("  Appetite:  %d/5\n", *l.Appetite)
	}
	if l.Mood != nil {
		fmt.Printf("  Mood:      %s\n", *l.Mood)
	}
	if l.Energy != nil {
		fmt.Printf("  Energy:    %d/5\n", *l.Energy)
	}
	if l.Anxiety != nil {
		fmt.Printf("  Anxiety:   %d/5\n", *l.Anxiety)
	}
	if len(l.PhysicalSymptoms) > 0 {
		fmt.Printf("  Symptoms:  %s\n", strings.Join(l.PhysicalSymptoms, ", "))
	}
	if l.Note != nil && *l.Note != "" {
		fmt.Printf("  Note:      %s\n", color.New(color.Faint).Sprint(*l.Note))
	}
	if l.HasRoutine() {
		color.Green("  ✓ Routine done")
	}
	if l.HasCheckIn() {
		color.Green("  ✓ Check-in complete")
	}
}

func init() {
	checkinCmd.Flags().Float64Var(&checkinSleep, "sleep", 0, "Hours slept")
	checkinCmd.Flags().IntVar(&checkinQuality, "quality", 0, "Sleep quality (1-5)")
	checkinCmd.Flags().IntVar(&checkinMeals, "meals", 0, "Meals eaten")
	checkinCmd.Flags().IntVar(&checkinAppetite, "appetite", 0, "Appetite (1-5)")
	checkinCmd.Flags().StringVar(&checkinMood, "mood", "", "Mood: worst, bad, soso, good, great")
	checkinCmd.Flags().IntVar(&checkinEnergy, "energy", 0, "Energy (1-5)")
	checkinCmd.Flags().IntVar(&checkinAnxiety, "anxiety", 0, "Anxiety (1-5)")
	checkinCmd.Flags().StringSliceVar(&checkinSymptoms, "symptom", nil, "Physical symptom (repeatable)")
	checkinCmd.Flags().StringVar(&checkinNote, "note", "", "Free-form note")
	checkinCmd.Flags().BoolVar(&checkinDone, "done", false, "Mark the check-in as complete")

	checkinCmd.AddCommand(checkinShowCmd)
	rootCmd.AddCommand(checkinCmd)
}
