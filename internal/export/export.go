// ABOUTME: Export and import functionality for rhythm data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over a store snapshot.
package export

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/rhythm/internal/models"
	"github.com/harperreed/rhythm/internal/store"
	"gopkg.in/yaml.v3"
)

// Version is the export format version.
const Version = "1.0"

// Data represents the full export format for rhythm data.
type Data struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Tool       string              `json:"tool"`
	Profile    models.Profile      `json:"profile"`
	Logs       models.DailyLogSet  `json:"logs"`
	Routine    *models.Routine     `json:"routine,omitempty"`
	Garden     []models.GardenItem `json:"garden"`
}

// FromSnapshot wraps a store snapshot for export.
func FromSnapshot(snap store.Snapshot, now time.Time) *Data {
	return &Data{
		Version:    Version,
		ExportedAt: now,
		Tool:       "rhythm",
		Profile:    snap.Profile,
		Logs:       snap.Logs,
		Routine:    snap.Routine,
		Garden:     snap.Garden,
	}
}

// Snapshot converts imported data back into a store snapshot.
func (d *Data) Snapshot() store.Snapshot {
	return store.Snapshot{
		Profile: d.Profile,
		Logs:    d.Logs,
		Routine: d.Routine,
		Garden:  d.Garden,
	}
}

// JSON exports all data as JSON.
func JSON(d *Data) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// ParseJSON reads a JSON export.
func ParseJSON(data []byte) (*Data, error) {
	var d Data
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	if d.Version != Version {
		return nil, fmt.Errorf("unsupported export version %q", d.Version)
	}
	return &d, nil
}

type yamlData struct {
	Version    string       `yaml:"version"`
	ExportedAt string       `yaml:"exported_at"`
	Tool       string       `yaml:"tool"`
	Profile    yamlProfile  `yaml:"profile"`
	Routine    *yamlRoutine `yaml:"routine,omitempty"`
	Logs       []yamlLog    `yaml:"logs"`
	Garden     []yamlGarden `yaml:"garden"`
}

type yamlProfile struct {
	Name          string  `yaml:"name"`
	Onboarded     bool    `yaml:"onboarded"`
	Morning       string  `yaml:"morning"`
	Evening       string  `yaml:"evening"`
	Tokens        float64 `yaml:"tokens"`
	CurrentStreak int     `yaml:"current_streak"`
	BestStreak    int     `yaml:"best_streak"`
	LastRoutine   string  `yaml:"last_routine,omitempty"`
}

type yamlRoutine struct {
	Text      string `yaml:"text"`
	Completed bool   `yaml:"completed"`
}

type yamlLog struct {
	Date       string   `yaml:"date"`
	SleepHours *float64 `yaml:"sleep_hours,omitempty"`
	Mood       string   `yaml:"mood,omitempty"`
	Energy     *int     `yaml:"energy,omitempty"`
	Anxiety    *int     `yaml:"anxiety,omitempty"`
	Meals      *int     `yaml:"meals,omitempty"`
	Symptoms   []string `yaml:"symptoms,omitempty"`
	Note       string   `yaml:"note,omitempty"`
	Routine    bool     `yaml:"routine,omitempty"`
}

type yamlGarden struct {
	ID        int64     `yaml:"id"`
	Origin    string    `yaml:"origin"`
	PlantedAt string    `yaml:"planted_at"`
	Position  []float64 `yaml:"position,flow"`
}

// YAML exports all data as human-readable YAML.
func YAML(d *Data) ([]byte, error) {
	out := yamlData{
		Version:    d.Version,
		ExportedAt: d.ExportedAt.Format(time.RFC3339),
		Tool:       d.Tool,
		Profile: yamlProfile{
			Name:          d.Profile.Name,
			Onboarded:     d.Profile.IsOnboarded,
			Morning:       d.Profile.NotificationTime.Morning,
			Evening:       d.Profile.NotificationTime.Evening,
			Tokens:        d.Profile.Tokens,
			CurrentStreak: d.Profile.CurrentStreak,
			BestStreak:    d.Profile.BestStreak,
			LastRoutine:   d.Profile.LastRoutineDate,
		},
		Logs:   make([]yamlLog, 0, len(d.Logs)),
		Garden: make([]yamlGarden, 0, len(d.Garden)),
	}
	if d.Routine != nil {
		out.Routine = &yamlRoutine{Text: d.Routine.Text, Completed: d.Routine.Completed}
	}

	for _, date := range d.Logs.Dates() {
		l := d.Logs[date]
		yl := yamlLog{
			Date:       date,
			SleepHours: l.SleepHours,
			Energy:     l.Energy,
			Anxiety:    l.Anxiety,
			Meals:      l.MealCount,
			Symptoms:   l.PhysicalSymptoms,
			Routine:    l.HasRoutine(),
		}
		if l.Mood != nil {
			yl.Mood = *l.Mood
		}
		if l.Note != nil {
			yl.Note = *l.Note
		}
		out.Logs = append(out.Logs, yl)
	}

	for _, g := range d.Garden {
		yg := yamlGarden{
			ID:        g.ID,
			Origin:    string(g.OriginType),
			PlantedAt: g.PlantedTime().Format(time.RFC3339),
		}
		if g.Position != nil {
			yg.Position = g.Position[:]
		}
		out.Garden = append(out.Garden, yg)
	}

	return yaml.Marshal(out)
}

// Markdown exports the logs and garden as Markdown tables. A non-nil since
// drops logs and garden items before that day.
func Markdown(d *Data, since *time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Rhythm Export - %s\n\n", d.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", d.ExportedAt.Format(time.RFC3339)))

	p := d.Profile
	sb.WriteString("## Profile\n\n")
	if p.Name != "" {
		sb.WriteString(fmt.Sprintf("- Name: %s\n", p.Name))
	}
	sb.WriteString(fmt.Sprintf("- Tokens: %.1f\n", p.Tokens))
	sb.WriteString(fmt.Sprintf("- Streak: %d (best %d)\n\n", p.CurrentStreak, p.BestStreak))

	cutoff := ""
	if since != nil {
		cutoff = since.Format(store.DateLayout)
	}

	sb.WriteString("## Daily Logs\n\n")
	sb.WriteString("| Date | Sleep | Mood | Energy | Routine | Note |\n")
	sb.WriteString("|------|-------|------|--------|---------|------|\n")
	for _, date := range d.Logs.Dates() {
		if date < cutoff {
			continue
		}
		l := d.Logs[date]
		sleep, mood, energy, note, routine := "", "", "", "", ""
		if l.SleepHours != nil {
			sleep = fmt.Sprintf("%.1f h", *l.SleepHours)
		}
		if l.Mood != nil {
			mood = *l.Mood
		}
		if l.Energy != nil {
			energy = fmt.Sprintf("%d", *l.Energy)
		}
		if l.Note != nil {
			note = strings.ReplaceAll(*l.Note, "|", "\\|")
		}
		if l.HasRoutine() {
			routine = "✓"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n", date, sleep, mood, energy, routine, note))
	}

	var garden []models.GardenItem
	for _, g := range d.Garden {
		if since != nil && g.PlantedTime().Before(*since) {
			continue
		}
		garden = append(garden, g)
	}
	if len(garden) > 0 {
		sb.WriteString("\n## Garden\n\n")
		sb.WriteString("| Planted | Origin |\n")
		sb.WriteString("|---------|--------|\n")
		for _, g := range garden {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", g.PlantedTime().Format("2006-01-02 15:04"), g.OriginType))
		}
	}

	return sb.String()
}
