// ABOUTME: CLI commands for push notification reminders.
// ABOUTME: Subscribes a device token to an hourly topic and records it on the profile.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/harperreed/rhythm/internal/notify"
	"github.com/spf13/cobra"
)

var (
	notifyToken string
	notifyTime  string
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Manage reminder notifications",
	Long: `Manage reminder notifications.

Reminders are delivered by topic: a device subscribed at 08:00 joins
alarm_08, and the hourly dispatch job targets one topic per hour.`,
}

var notifySubscribeCmd = &cobra.Command{
	Use:   "subscribe",
	Short: "Subscribe a device token to morning reminders",
	Long: `Subscribe a push token to the reminder topic for an hour.

Without --time the profile's morning reminder is used.

Examples:
  rhythm notify subscribe --token abc123
  rhythm notify subscribe --token abc123 --time 07:30`,
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(notifyToken)
		if token == "" {
			return fmt.Errorf("--token is required")
		}

		nt := st.Profile().NotificationTime
		at := nt.Morning
		if notifyTime != "" {
			at = notifyTime
		}
		hour, err := notify.HourFromTime(at)
		if err != nil {
			return err
		}
		if !strings.Contains(at, ":") {
			at = hour + ":00"
		}

		client := notify.NewClient(cfg.GetSubscribeURL())
		topic, err := client.Subscribe(cmd.Context(), token, hour)
		if err != nil {
			return fmt.Errorf("subscribe failed: %w", err)
		}

		nt.Morning = at
		st.UpdateProfile(models.ProfileUpdate{
			FCMToken:         &token,
			NotificationTime: &nt,
		})

		color.Green("✓ Subscribed to %s", topic)
		fmt.Printf("  Morning reminder: %s\n", at)
		return nil
	},
}

var notifyTopicCmd = &cobra.Command{
	Use:         "topic",
	Short:       "Show the topic the dispatch job targets right now",
	Annotations: map[string]string{skipStoreAnnotation: ""},
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println(notify.DispatchTopic(time.Now()))
		return nil
	},
}

func init() {
	notifySubscribeCmd.Flags().StringVar(&notifyToken, "token", "", "Push token for this device")
	notifySubscribeCmd.Flags().StringVar(&notifyTime, "time", "", "Reminder time as HH or HH:MM")

	notifyCmd.AddCommand(notifySubscribeCmd)
	notifyCmd.AddCommand(notifyTopicCmd)
	rootCmd.AddCommand(notifyCmd)
}
