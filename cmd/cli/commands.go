package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jvossman/gloat/internal/config"
	"github.com/jvossman/gloat/internal/database"
	"github.com/jvossman/gloat/internal/invite"
)

var (
	challengeSlug string
	inviteTTLDays int
)

func init() {
	leaderboardCmd.Flags().StringVar(&challengeSlug, "challenge", "all", "Challenge slug to show the board for")
	invitesCmd.Flags().IntVar(&inviteTTLDays, "ttl-days", 14, "Days until the generated invites expire")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(challengesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(duelsCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(invitesCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var challengesCmd = &cobra.Command{
	Use:   "challenges",
	Short: "List the active challenges",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/challenges")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard for a challenge",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/leaderboard?challenge=" + url.QueryEscape(challengeSlug))
	},
}

var duelsCmd = &cobra.Command{
	Use:   "duels",
	Short: "List your duels",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/api/duels")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

// invitesCmd talks to the database directly rather than the server: invites
// are minted by the group admin, not through the public API.
var invitesCmd = &cobra.Command{
	Use:   "invites [name]...",
	Short: "Generate invite tokens for named friends",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			fmt.Println("No .env file found, reading from environment variables")
		}
		cfg := config.Load()

		db, teardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken, cfg.MigrationsDir)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer teardown()

		invites := invite.New(db)
		ttl := time.Duration(inviteTTLDays) * 24 * time.Hour
		for _, name := range args {
			inv, err := invites.Create(name, ttl)
			if err != nil {
				return fmt.Errorf("failed to create invite for %s: %w", name, err)
			}
			fmt.Printf("%s\t%s/invite/%s\texpires %s\n", name, host, inv.Token, inv.ExpiresAt.Format("2006-01-02"))
		}
		return nil
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
