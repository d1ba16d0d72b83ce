// ABOUTME: CLI commands for onboarding and the user profile.
// ABOUTME: Shows tokens and streaks and edits reminder settings.
package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/spf13/cobra"
)

var (
	profileName    string
	profileMorning string
	profileEvening string
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var onboardCmd = &cobra.Command{
	Use:   "onboard <name>",
	Short: "Set your name and finish onboarding",
	Long: `Set your name and finish onboarding.

Example:
  rhythm onboard Mina`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(strings.Join(args, " "))
		if name == "" {
			return fmt.Errorf("name cannot be empty")
		}
		p := st.CompleteOnboarding(name)
		color.Green("✓ Welcome, %s", p.Name)
		fmt.Printf("  Tokens: %.1f\n", p.Tokens)
		return nil
	},
}

var profileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"p"},
	Short:   "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		printProfile(st.Profile())
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile settings",
	Long: `Update profile settings. Only the flags you pass change.

Examples:
  rhythm profile set --name Mina
  rhythm profile set --morning 07:30 --evening 21:00`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var u models.ProfileUpdate
		if cmd.Flags().Changed("name") {
			name := strings.TrimSpace(profileName)
			if name == "" {
				return fmt.Errorf("name cannot be empty")
			}
			u.Name = &name
		}

		morning := cmd.Flags().Changed("morning")
		evening := cmd.Flags().Changed("evening")
		if morning || evening {
			nt := st.Profile().NotificationTime
			if morning {
				if !clockPattern.MatchString(profileMorning) {
					return fmt.Errorf("invalid time: %s (use HH:MM)", profileMorning)
				}
				nt.Morning = profileMorning
			}
			if evening {
				if !clockPattern.MatchString(profileEvening) {
					return fmt.Errorf("invalid time: %s (use HH:MM)", profileEvening)
				}
				nt.Evening = profileEvening
			}
			u.NotificationTime = &nt
		}

		if u == (models.ProfileUpdate{}) {
			return fmt.Errorf("nothing to update (use --name, --morning or --evening)")
		}

		p := st.UpdateProfile(u)
		color.Green("✓ Profile updated")
		printProfile(p)
		return nil
	},
}

func printProfile(p models.Profile) {
	faint := color.New(color.Faint)
	name := p.Name
	if name == "" {
		name = faint.Sprint("(not onboarded)")
	}
	fmt.Printf("%s\n", color.New(color.Bold).Sprint(name))
	fmt.Printf("  Tokens:     %.1f\n", p.Tokens)
	fmt.Printf("  Streak:     %d (best %d)\n", p.CurrentStreak, p.BestStreak)
	fmt.Printf("  Today:      %d routine(s)\n", p.DailyRoutineCount)
	fmt.Printf("  Reminders:  %s / %s\n", p.NotificationTime.Morning, p.NotificationTime.Evening)
	if p.FCMToken != "" {
		fmt.Printf("  Push:       %s\n", faint.Sprint("subscribed"))
	}
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profileSetCmd.Flags().StringVar(&profileMorning, "morning", "", "Morning reminder time (HH:MM)")
	profileSetCmd.Flags().StringVar(&profileEvening, "evening", "", "Evening reminder time (HH:MM)")

	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(profileCmd)
}
