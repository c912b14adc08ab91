package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/adhocore/gronx"
	"github.com/spf13/cobra"

	"askdb/internal/app"
	"askdb/pkg/models"
	"askdb/pkg/normalize"
)

var dashWatch bool

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run your dashboard tiles and print their answers",
	Long: `Fetch the saved dashboard and run every tile's query. With --watch
the tiles re-run on the configured refresh cron until interrupted.`,
	RunE: runDashboard,
}

var dashboardSaveCmd = &cobra.Command{
	Use:   "save <tiles.json>",
	Short: "Replace your dashboard with the tiles in a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var tiles []models.Tile
		if err := json.Unmarshal(b, &tiles); err != nil {
			return fmt.Errorf("askdb: parse tiles file: %w", err)
		}
		if err := a.Client.SaveDashboard(cmd.Context(), models.Dashboard{Tiles: tiles}); err != nil {
			return err
		}
		fmt.Printf("saved %d tiles\n", len(tiles))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.AddCommand(dashboardSaveCmd)
	dashboardCmd.Flags().BoolVar(&dashWatch, "watch", false, "re-run tiles on the refresh cron")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := runTiles(ctx, a); err != nil {
		return err
	}
	if !dashWatch {
		return nil
	}

	cron := a.Cfg.Dashboard.RefreshCron
	for {
		next, err := gronx.NextTickAfter(cron, time.Now(), false)
		if err != nil {
			return fmt.Errorf("askdb: refresh cron: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(next)):
		}
		if err := runTiles(ctx, a); err != nil {
			fmt.Fprintf(os.Stderr, "refresh failed: %v\n", err)
		}
	}
}

// runTiles fetches the dashboard and asks each tile's query. Tile
// answers share the ask cache, so an unchanged tile within its TTL
// window costs nothing.
func runTiles(ctx context.Context, a *app.App) error {
	d, err := a.Client.Dashboard(ctx)
	if err != nil {
		return err
	}
	if len(d.Tiles) == 0 {
		fmt.Println("(no tiles saved)")
		return nil
	}
	for _, tile := range d.Tiles {
		fmt.Printf("== %s ==\n", tile.Title)
		ex, err := a.Client.Ask(ctx, models.AskRequest{
			Question:  tile.Query,
			Dashboard: "true",
			Tile:      tile.ID,
			QueryType: models.QueryDB,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "tile %s failed: %v\n", tile.ID, err)
			continue
		}
		renderMessage(os.Stdout, normalize.MessageFromExchange(*ex))
	}
	return nil
}
