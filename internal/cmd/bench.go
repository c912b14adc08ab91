package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	vegeta "github.com/tsenart/vegeta/lib"

	"askdb/pkg/config"
	"askdb/pkg/models"
)

var (
	benchRPS      int
	benchDur      time.Duration
	benchQuestion string
	benchDB       bool
)

// benchCmd represents the bench command
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Load-test the ask endpoint",
	Long: `Fire the same question at the ask endpoint at a fixed rate and
report latency percentiles. Requests go straight to the backend,
bypassing the client-side cache.`,
	RunE: runBench,
}

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().IntVar(&benchRPS, "rps", 10, "requests per second")
	benchCmd.Flags().DurationVar(&benchDur, "duration", 30*time.Second, "benchmark duration")
	benchCmd.Flags().StringVar(&benchQuestion, "question", "how many rows are in the largest table", "question to send")
	benchCmd.Flags().BoolVar(&benchDB, "db", false, "send as a database query")
}

func runBench(cmd *cobra.Command, args []string) error {
	flags := config.Flags{Config: flagConfig, BaseURL: flagBaseURL, UserID: flagUser, Set: map[string]bool{}}
	if cmd.Flags().Changed("config") {
		flags.Set["config"] = true
	}
	cfg, err := config.LoadEffectiveConfig(flags)
	if err != nil {
		return err
	}

	qt := models.QueryChat
	if benchDB {
		qt = models.QueryDB
	}
	body, err := json.Marshal(models.AskRequest{
		UserID:    cfg.API.UserID,
		Question:  benchQuestion,
		QueryType: qt,
	})
	if err != nil {
		return err
	}

	target := vegeta.Target{
		Method: "POST",
		URL:    strings.TrimRight(cfg.API.BaseURL, "/") + "/ask",
		Body:   body,
		Header: map[string][]string{"Content-Type": {"application/json"}},
	}
	targeter := vegeta.NewStaticTargeter(target)
	rate := vegeta.Rate{Freq: benchRPS, Per: time.Second}
	attacker := vegeta.NewAttacker()

	var metrics vegeta.Metrics
	for res := range attacker.Attack(targeter, rate, benchDur, "ask") {
		metrics.Add(res)
	}
	metrics.Close()

	fmt.Printf("requests:  %d\n", metrics.Requests)
	fmt.Printf("success:   %.2f%%\n", metrics.Success*100)
	fmt.Printf("mean:      %s\n", metrics.Latencies.Mean)
	fmt.Printf("p50:       %s\n", metrics.Latencies.P50)
	fmt.Printf("p95:       %s\n", metrics.Latencies.P95)
	fmt.Printf("p99:       %s\n", metrics.Latencies.P99)
	fmt.Printf("max:       %s\n", metrics.Latencies.Max)
	if len(metrics.Errors) > 0 {
		fmt.Printf("errors:    %s\n", strings.Join(metrics.Errors, "; "))
	}
	return nil
}
