package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/pvetui-stats/internal/domain"
	"github.com/devnullvoid/pvetui-stats/internal/metrics"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspects or clears the cached statistics",
}

// cacheReport is what `cache show` prints.
type cacheReport struct {
	Entry *domain.CacheEntry `json:"entry"`
	Age   string             `json:"age,omitempty"`
	Fresh bool               `json:"fresh"`
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Prints the cached entry and whether it is still fresh",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, svc, st, _ := mustSetup(cmd, metrics.NoopRecorder{})
		defer st.Close()

		report := cacheReport{Entry: svc.Entry(ctx)}
		if report.Entry != nil {
			now := svc.Now()
			report.Age = report.Entry.Age(now).Truncate(time.Second).String()
			report.Fresh = report.Entry.IsFresh(now, svc.TTL())
		}

		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal cache entry to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deletes the cached entry so the next lookup fetches from GitHub",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, svc, st, _ := mustSetup(cmd, metrics.NoopRecorder{})
		defer st.Close()

		if err := svc.Invalidate(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared.")
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
