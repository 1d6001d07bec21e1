package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devnullvoid/pvetui-stats/internal/metrics"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the repository statistics as JSON",
	Long: `Resolves the repository statistics once and prints them as JSON. A cache entry
younger than the TTL is served without contacting GitHub.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, svc, st, _ := mustSetup(cmd, metrics.NoopRecorder{})
		defer st.Close()

		results := svc.Resolve(ctx)

		// Marshal the results into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal results to JSON: %v\n", err)
			os.Exit(1)
		}

		// Print the final JSON to standard output.
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
