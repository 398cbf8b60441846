package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(playersCmd)
	rootCmd.AddCommand(leaguesCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Trigger an ingest of played reservations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/fetch")
	},
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the post-settlement pipeline and the stale-pending sweep",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/process")
	},
}

var playersCmd = &cobra.Command{
	Use:   "players",
	Short: "List the rating leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/players")
	},
}

var leaguesCmd = &cobra.Command{
	Use:   "leagues",
	Short: "List leagues",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leagues")
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings [league-id]",
	Short: "Show the latest standings for a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leagues/" + args[0] + "/standings")
	},
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute [league-id]",
	Short: "Rebuild the standings for a league",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performPostRequest("/leagues/" + args[0] + "/standings/recompute")
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Get lifetime counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
