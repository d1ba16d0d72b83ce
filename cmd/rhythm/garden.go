// ABOUTME: CLI commands for the garden.
// ABOUTME: Throws catalog objects for tokens and lists what has been planted.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/rhythm/internal/models"
	"github.com/harperreed/rhythm/internal/store"
	"github.com/spf13/cobra"
)

var (
	gardenCost  float64
	gardenLimit int
)

var gardenCmd = &cobra.Command{
	Use:     "garden",
	Aliases: []string{"g"},
	Short:   "List your garden",
	Long: `List your garden, newest first.

Throw thought objects into the river or plant seeds; each becomes a star in
the garden sky.

CATALOG:

  stone, pebble, branch, cup, book, clock   0.5 tokens
  sunflower                                 0.5 tokens
  rose                                      0.8 tokens
  tree                                      1.5 tokens`,
	RunE: func(cmd *cobra.Command, args []string) error {
		garden := st.Garden()
		if len(garden) == 0 {
			fmt.Println("The garden is empty. Try 'rhythm garden throw stone'.")
			return nil
		}

		faint := color.New(color.Faint)
		shown := 0
		for i := len(garden) - 1; i >= 0; i-- {
			if gardenLimit > 0 && shown >= gardenLimit {
				break
			}
			item := garden[i]
			fmt.Printf("%s  %s  %s\n",
				faint.Sprint(item.PlantedTime().In(storeLocation()).Format("2006-01-02 15:04")),
				padRight(string(item.OriginType), 10),
				faint.Sprint(formatPosition(item.Position)))
			shown++
		}
		fmt.Printf("\n%d item(s)\n", len(garden))
		return nil
	},
}

var gardenThrowCmd = &cobra.Command{
	Use:   "throw <type>",
	Short: "Spend tokens on a garden object",
	Long: `Spend tokens to throw an object into the river or plant a seed.

The catalog price is used unless --cost is given.

Examples:
  rhythm garden throw stone
  rhythm garden throw rose
  rhythm garden throw cup --cost 0.2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		origin := models.OriginType(args[0])
		cost, ok := models.OriginCosts[origin]
		if !ok {
			return fmt.Errorf("unknown type: %s\nValid types: %s", args[0], originList())
		}
		if cmd.Flags().Changed("cost") {
			cost = gardenCost
		}

		item, err := st.ThrowObject(origin, cost)
		if err != nil {
			if errors.Is(err, store.ErrInsufficientTokens) {
				return fmt.Errorf("%w: a %s costs %.1f, you have %.1f", err, origin, cost, st.Profile().Tokens)
			}
			return err
		}

		color.Green("✓ Threw a %s into the river", origin)
		fmt.Printf("  %s  %.1f tokens left\n",
			color.New(color.Faint).Sprint(formatPosition(item.Position)),
			st.Profile().Tokens)
		return nil
	},
}

func originList() string {
	names := make([]string, len(models.AllOriginTypes))
	for i, o := range models.AllOriginTypes {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

func formatPosition(p *models.Vec3) string {
	if p == nil {
		return "(unplaced)"
	}
	return fmt.Sprintf("(%.1f, %.1f, %.1f)", p[0], p[1], p[2])
}

// padRight pads a string to the specified length.
func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	gardenCmd.Flags().IntVarP(&gardenLimit, "limit", "n", 20, "Max items to show (0 for all)")
	gardenThrowCmd.Flags().Float64Var(&gardenCost, "cost", 0, "Override the catalog price")

	gardenCmd.AddCommand(gardenThrowCmd)
	rootCmd.AddCommand(gardenCmd)
}
