// ABOUTME: Root Cobra command for rhythm CLI.
// ABOUTME: Handles config, cache, Charm client and store lifecycle via PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/cache"
	"github.com/harperreed/rhythm/internal/charm"
	"github.com/harperreed/rhythm/internal/config"
	"github.com/harperreed/rhythm/internal/logger"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
)

// skipStoreAnnotation marks commands that run without opening the store.
const skipStoreAnnotation = "rhythm.skip-store"

// closeTimeout bounds the final remote flush.
const closeTimeout = 10 * time.Second

var (
	cfg         *config.Config
	appLog      *log.Logger
	cacheStore  cache.Cache
	charmClient *charm.Client
	st          *store.Store
	stopStore   context.CancelFunc

	flagDataDir string
	flagBackend string
	flagOffline bool
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "rhythm",
	Short: "Daily rhythm tracker with a token garden",
	Long: `Rhythm is a CLI for keeping a gentle daily rhythm.

Check in each day, finish one tiny routine, and spend the tokens you earn
growing a garden of stars.

QUICK START:

  $ rhythm onboard Mina                   # Set your name
  $ rhythm checkin --sleep 7.5 --mood good
  $ rhythm routine new                    # Draw today's tiny routine
  $ rhythm routine complete               # Earn 0.2 tokens and grow your streak
  $ rhythm garden throw stone             # Spend tokens on the garden
  $ rhythm stats                          # See your journey

ECONOMY:

  Completing a routine pays 0.2 tokens. Swapping a routine is free once an
  hour or costs 0.5 tokens with --paid. Garden objects cost 0.5 to 1.5 tokens.

SYNC (AUTOMATIC):

  Progress syncs across devices using Charm Cloud.
  Data is E2E encrypted with your SSH key.

  $ rhythm sync link      # Link device to your Charm account
  $ rhythm sync status    # Check sync status
  $ rhythm --offline ...  # Keep everything on this machine

MCP INTEGRATION:

  Run 'rhythm mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants.

DATA STORAGE:

  The local cache lives at ~/.local/share/rhythm (SQLite by default).
  Settings are read from ~/.config/rhythm/config.json.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip store init for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" || skipsStore(cmd) {
			return nil
		}
		return openStore(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

// Execute runs the root command. The store is closed even when a command
// fails, since PersistentPostRunE only runs after success.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeStore(); err == nil {
		err = cerr
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "Directory for the local cache and logs")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Local cache backend: sqlite, badger or memory")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Do not sync with Charm Cloud")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log debug output to stderr")
}

func skipsStore(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipStoreAnnotation]; ok {
			return true
		}
	}
	return false
}

// loadConfig reads the config file and applies persistent flag overrides.
func loadConfig() (*config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagOffline {
		c.Offline = true
	}
	return c, nil
}

func openStore(cmd *cobra.Command) error {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		return err
	}

	appLog, err = logger.New(logger.Config{Debug: flagDebug, Dir: cfg.GetDataDir()})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	if cfg.EnsureDeviceID() {
		if err := cfg.Save(); err != nil {
			appLog.Warn("could not save device id", "error", err)
		}
	}

	loc, err := cfg.GetLocation()
	if err != nil {
		return err
	}
	debounce, err := cfg.GetDebounce()
	if err != nil {
		return err
	}
	syncTimeout, err := cfg.GetSyncTimeout()
	if err != nil {
		return err
	}

	cacheStore, err = cfg.OpenCache()
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}

	opts := store.Options{
		Logger:         appLog,
		Location:       loc,
		DebounceWindow: debounce,
		ReplayPreSync:  cfg.ReplayPreSync,
		DeviceID:       cfg.DeviceID,
	}
	if !cfg.Offline {
		charmClient, err = charm.InitClient()
		if err != nil {
			appLog.Warn("charm unavailable, running local-only", "error", err)
			color.Yellow("⚠ Sync unavailable, changes stay on this device: %v", err)
			charmClient = nil
		} else {
			opts.Replica = charmClient
			opts.Identity = charmClient
		}
	}

	st = store.New(cacheStore, opts)

	var ctx context.Context
	ctx, stopStore = context.WithCancel(context.Background())
	st.Start(ctx)

	waitCtx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
	defer cancel()
	if err := st.WaitReady(waitCtx); err != nil {
		appLog.Warn("initial sync still pending", "timeout", syncTimeout)
	}
	return nil
}

func closeStore() error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if st != nil {
		ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		keep(st.Close(ctx))
		cancel()
		st = nil
	}
	if stopStore != nil {
		stopStore()
		stopStore = nil
	}
	if charmClient != nil {
		keep(charmClient.Close())
		charmClient = nil
	}
	if cacheStore != nil {
		keep(cacheStore.Close())
		cacheStore = nil
	}
	return firstErr
}
