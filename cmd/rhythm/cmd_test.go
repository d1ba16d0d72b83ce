// ABOUTME: Tests for CLI commands, flags and store wiring.
// ABOUTME: Runs commands offline against a SQLite cache in a temp directory.
package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/rhythm/internal/cache"
	"github.com/harperreed/rhythm/internal/export"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestCLI points config and data at temp directories and returns the
// data directory.
func setupTestCLI(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	return filepath.Join(tmpDir, "data", "rhythm")
}

// resetFlags restores every flag to its default so runs don't leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes one offline CLI invocation.
func run(t *testing.T, args ...string) error {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(append([]string{"--offline"}, args...))
	return Execute()
}

// openTestStore reads back what the CLI persisted.
func openTestStore(t *testing.T, dataDir string) *store.Store {
	t.Helper()
	c, err := cache.OpenSQLite(filepath.Join(dataDir, "rhythm.db"))
	if err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return store.New(c, store.Options{})
}

func TestRootCmdFlags(t *testing.T) {
	if rootCmd.Use != "rhythm" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "rhythm")
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("Expected rootCmd descriptions to be non-empty")
	}
	for _, name := range []string{"data-dir", "backend", "offline", "debug"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Expected --%s persistent flag", name)
		}
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	paths := [][]string{
		{"onboard"},
		{"profile"},
		{"profile", "set"},
		{"checkin"},
		{"checkin", "show"},
		{"routine"},
		{"routine", "new"},
		{"routine", "complete"},
		{"routine", "refresh"},
		{"garden"},
		{"garden", "throw"},
		{"stats"},
		{"sync", "status"},
		{"sync", "push"},
		{"sync", "link"},
		{"sync", "unlink"},
		{"sync", "reset"},
		{"sync", "wipe"},
		{"sync", "repair"},
		{"notify", "subscribe"},
		{"notify", "topic"},
		{"export"},
		{"import"},
		{"mcp"},
		{"install-skill"},
	}

	for _, path := range paths {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			cmd, _, err := rootCmd.Find(path)
			if err != nil {
				t.Fatalf("Find(%v) failed: %v", path, err)
			}
			if cmd.Name() != path[len(path)-1] {
				t.Errorf("Find(%v) = %s", path, cmd.Name())
			}
			if cmd.Short == "" {
				t.Errorf("Expected %s to have a short description", cmd.Name())
			}
		})
	}
}

func TestCommandAliases(t *testing.T) {
	tests := map[string]string{
		"p":    "profile",
		"c":    "checkin",
		"r":    "routine",
		"g":    "garden",
		"s":    "sync",
		"done": "complete",
	}
	for alias, want := range tests {
		path := []string{alias}
		if alias == "done" {
			path = []string{"routine", "done"}
		}
		cmd, _, err := rootCmd.Find(path)
		if err != nil {
			t.Errorf("Find(%v) failed: %v", path, err)
			continue
		}
		if cmd.Name() != want {
			t.Errorf("alias %s resolved to %s, want %s", alias, cmd.Name(), want)
		}
	}
}

func TestSkipsStore(t *testing.T) {
	tests := []struct {
		path []string
		want bool
	}{
		{[]string{"install-skill"}, true},
		{[]string{"sync", "wipe"}, true},
		{[]string{"sync", "reset"}, true},
		{[]string{"sync", "repair"}, true},
		{[]string{"sync", "link"}, true},
		{[]string{"notify", "topic"}, true},
		{[]string{"sync", "status"}, false},
		{[]string{"checkin"}, false},
		{[]string{"mcp"}, false},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.path)
		if err != nil {
			t.Fatalf("Find(%v) failed: %v", tt.path, err)
		}
		if got := skipsStore(cmd); got != tt.want {
			t.Errorf("skipsStore(%v) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestOnboardAndProfileSet(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := run(t, "onboard", "Mina", "Park"); err != nil {
		t.Fatalf("onboard failed: %v", err)
	}
	if err := run(t, "profile", "set", "--morning", "07:30"); err != nil {
		t.Fatalf("profile set failed: %v", err)
	}

	p := openTestStore(t, dataDir).Profile()
	if p.Name != "Mina Park" || !p.IsOnboarded {
		t.Errorf("Expected onboarded Mina Park, got %+v", p)
	}
	if p.NotificationTime.Morning != "07:30" || p.NotificationTime.Evening != "20:00" {
		t.Errorf("Unexpected reminders: %+v", p.NotificationTime)
	}
}

func TestProfileSetValidation(t *testing.T) {
	setupTestCLI(t)

	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{"no flags", []string{"profile", "set"}, "nothing to update"},
		{"bad time", []string{"profile", "set", "--evening", "25:00"}, "invalid time"},
		{"blank name", []string{"profile", "set", "--name", " "}, "name cannot be empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %v", tt.errSubstr, err)
			}
		})
	}
}

func TestCheckinMergesAcrossRuns(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := run(t, "checkin", "--sleep", "7.5", "--mood", "good", "--symptom", "headache"); err != nil {
		t.Fatalf("checkin failed: %v", err)
	}
	if err := run(t, "checkin", "--energy", "3", "--done"); err != nil {
		t.Fatalf("checkin failed: %v", err)
	}

	l, ok := openTestStore(t, dataDir).TodayLog()
	if !ok {
		t.Fatal("Expected a log for today")
	}
	if l.SleepHours == nil || *l.SleepHours != 7.5 {
		t.Errorf("Expected sleep 7.5, got %v", l.SleepHours)
	}
	if l.Mood == nil || *l.Mood != "good" {
		t.Errorf("Expected mood good, got %v", l.Mood)
	}
	if l.Energy == nil || *l.Energy != 3 {
		t.Errorf("Expected energy 3, got %v", l.Energy)
	}
	if len(l.PhysicalSymptoms) != 1 || l.PhysicalSymptoms[0] != "headache" {
		t.Errorf("Expected headache, got %v", l.PhysicalSymptoms)
	}
	if !l.HasCheckIn() {
		t.Error("Expected check-in complete")
	}
}

func TestCheckinValidation(t *testing.T) {
	setupTestCLI(t)

	tests := []struct {
		name      string
		args      []string
		errSubstr string
	}{
		{"nothing", []string{"checkin"}, "nothing to record"},
		{"bad mood", []string{"checkin", "--mood", "ecstatic"}, "unknown mood"},
		{"scale too high", []string{"checkin", "--quality", "9"}, "invalid quality"},
		{"negative sleep", []string{"checkin", "--sleep", "-1"}, "invalid sleep"},
		{"bad symptom", []string{"checkin", "--symptom", "hiccups"}, "unknown symptom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Expected error containing %q, got %v", tt.errSubstr, err)
			}
		})
	}
}

func TestRoutineFlow(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := run(t, "routine", "complete"); err == nil || !strings.Contains(err.Error(), "no active routine") {
		t.Errorf("Expected no active routine error, got %v", err)
	}
	if err := run(t, "routine", "new"); err != nil {
		t.Fatalf("routine new failed: %v", err)
	}
	if err := run(t, "routine", "complete"); err != nil {
		t.Fatalf("routine complete failed: %v", err)
	}
	if err := run(t, "routine", "complete"); err == nil {
		t.Error("Expected second completion to fail")
	}
	if err := run(t, "routine", "refresh", "--paid"); err == nil || !strings.Contains(err.Error(), "insufficient tokens") {
		t.Errorf("Expected insufficient tokens, got %v", err)
	}

	s := openTestStore(t, dataDir)
	p := s.Profile()
	if p.Tokens != 0.2 || p.CurrentStreak != 1 || p.DailyRoutineCount != 1 {
		t.Errorf("Unexpected profile after routine: %+v", p)
	}
	if r := s.Routine(); r == nil || !r.Completed {
		t.Errorf("Expected completed routine, got %+v", r)
	}
}

func writeBackup(t *testing.T, tokens float64) string {
	t.Helper()
	d := export.FromSnapshot(store.Snapshot{
		Profile: models.Profile{Name: "Mina", Tokens: tokens, HasWelcomeGift: true},
		Logs:    models.DailyLogSet{"2024-03-14": {SleepHours: models.Ptr(6.0)}},
	}, time.Now())
	data, err := export.JSON(d)
	if err != nil {
		t.Fatalf("export.JSON failed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "backup.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("Failed to write backup: %v", err)
	}
	return path
}

func TestImportThenThrow(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := run(t, "garden", "throw", "stone"); err == nil || !strings.Contains(err.Error(), "insufficient tokens") {
		t.Errorf("Expected insufficient tokens, got %v", err)
	}

	if err := run(t, "import", writeBackup(t, 2.0), "--yes"); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if err := run(t, "garden", "throw", "rose"); err != nil {
		t.Fatalf("garden throw failed: %v", err)
	}
	if err := run(t, "garden", "throw", "anvil"); err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Errorf("Expected unknown type error, got %v", err)
	}
	if err := run(t, "garden"); err != nil {
		t.Errorf("garden list failed: %v", err)
	}

	s := openTestStore(t, dataDir)
	if got := s.Profile().Tokens; got != 1.2 {
		t.Errorf("Expected 1.2 tokens, got %.1f", got)
	}
	garden := s.Garden()
	if len(garden) != 1 || garden[0].OriginType != models.OriginRose {
		t.Errorf("Expected one rose, got %+v", garden)
	}
	if _, ok := s.Logs()["2024-03-14"]; !ok {
		t.Error("Expected imported log")
	}
}

func TestImportInvalidFile(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "import", filepath.Join(t.TempDir(), "missing.json"), "--yes"); err == nil {
		t.Error("Expected error for missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte(`{"version":"0.1"}`), 0600)
	if err := run(t, "import", bad, "--yes"); err == nil || !strings.Contains(err.Error(), "unsupported export version") {
		t.Errorf("Expected version error, got %v", err)
	}
}

func TestExportFormats(t *testing.T) {
	setupTestCLI(t)
	out := filepath.Join(t.TempDir(), "out")

	for _, format := range []string{"json", "yaml", "markdown"} {
		t.Run(format, func(t *testing.T) {
			path := out + "." + format
			if err := run(t, "export", format, "-o", path); err != nil {
				t.Fatalf("export %s failed: %v", format, err)
			}
			data, err := os.ReadFile(path)
			if err != nil || len(data) == 0 {
				t.Fatalf("Expected export file, got %v", err)
			}
		})
	}

	if err := run(t, "export", "csv"); err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("Expected unknown format error, got %v", err)
	}
	if err := run(t, "export", "markdown", "--since", "yesterday"); err == nil || !strings.Contains(err.Error(), "invalid date format") {
		t.Errorf("Expected invalid date error, got %v", err)
	}
}

func TestStatsAndSyncStatusOffline(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "stats", "--days", "3"); err != nil {
		t.Errorf("stats failed: %v", err)
	}
	if err := run(t, "stats", "--days", "0"); err == nil {
		t.Error("Expected error for --days 0")
	}
	if err := run(t, "sync", "status"); err != nil {
		t.Errorf("sync status failed: %v", err)
	}
	if err := run(t, "sync", "push"); err == nil || !strings.Contains(err.Error(), "local-only") {
		t.Errorf("Expected push to fail while local-only, got %v", err)
	}
}

func TestNotifySubscribe(t *testing.T) {
	dataDir := setupTestCLI(t)

	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"topic":"alarm_07"}`))
	}))
	defer srv.Close()

	configDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "rhythm")
	os.MkdirAll(configDir, 0750)
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"subscribe_url":"`+srv.URL+`"}`), 0600)

	if err := run(t, "notify", "subscribe"); err == nil || !strings.Contains(err.Error(), "--token") {
		t.Errorf("Expected missing token error, got %v", err)
	}
	if err := run(t, "notify", "subscribe", "--token", "tok-1", "--time", "7"); err != nil {
		t.Fatalf("notify subscribe failed: %v", err)
	}

	if got["token"] != "tok-1" || got["time"] != "07" {
		t.Errorf("Unexpected request body: %v", got)
	}
	p := openTestStore(t, dataDir).Profile()
	if p.FCMToken != "tok-1" || p.NotificationTime.Morning != "07:00" {
		t.Errorf("Unexpected profile: %+v", p)
	}
}

func TestDeviceIDSavedOnFirstRun(t *testing.T) {
	setupTestCLI(t)

	if err := run(t, "profile"); err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "rhythm", "config.json"))
	if err != nil {
		t.Fatalf("Expected config to be written: %v", err)
	}
	if !strings.Contains(string(data), "device_id") {
		t.Errorf("Expected device_id in config, got %s", data)
	}
}

func TestMemoryBackendLeavesNoCache(t *testing.T) {
	dataDir := setupTestCLI(t)

	if err := run(t, "--backend", "memory", "onboard", "Mina"); err != nil {
		t.Fatalf("onboard failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dataDir, "rhythm.db")); !os.IsNotExist(err) {
		t.Errorf("Expected no SQLite cache with the memory backend, got %v", err)
	}
}

func TestStoreLocationDefault(t *testing.T) {
	cfg = nil
	if storeLocation() != time.UTC {
		t.Error("Expected UTC without config")
	}
}

func TestFormatPosition(t *testing.T) {
	if got := formatPosition(nil); got != "(unplaced)" {
		t.Errorf("formatPosition(nil) = %q", got)
	}
	if got := formatPosition(&models.Vec3{1, 6.5, -7}); got != "(1.0, 6.5, -7.0)" {
		t.Errorf("formatPosition = %q", got)
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input  string
		length int
		want   string
	}{
		{"rose", 6, "rose  "},
		{"sunflower", 4, "sunflower"},
		{"", 2, "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.length); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.length, got, tt.want)
		}
	}
}

func TestInstallSkillFunction(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()

	if err := installSkill(); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}

	skillPath := filepath.Join(tmpDir, ".claude", "skills", "rhythm", "SKILL.md")
	content, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Expected skill file to be created: %v", err)
	}
	if !strings.Contains(string(content), "name: rhythm") {
		t.Error("Expected skill frontmatter in installed file")
	}
}
