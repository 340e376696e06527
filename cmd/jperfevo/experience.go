package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ghexp "github.com/jperfevo/jperfevo-go/internal/github"
)

var experienceCmd = &cobra.Command{
	Use:   "experience",
	Short: "Score the GitHub experience of commit authors",
	Long: `Looks up the author of each given commit and scores their GitHub
experience from repository contributions, total contributions, code
reviews and account age. Results are printed as JSON.`,
	RunE: runExperience,
}

func init() {
	experienceCmd.Flags().String("repo", "", "repository in owner/name form (required)")
	experienceCmd.Flags().StringSlice("commits", nil, "commit SHAs to score (required)")

	experienceCmd.MarkFlagRequired("repo")
	experienceCmd.MarkFlagRequired("commits")
}

func runExperience(cmd *cobra.Command, args []string) error {
	repo, _ := cmd.Flags().GetString("repo")
	commits, _ := cmd.Flags().GetStringSlice("commits")

	if cfg.GitHub.Token == "" {
		return fmt.Errorf("GitHub token not configured (set GITHUB_TOKEN)")
	}

	cache, err := ghexp.OpenStatsCache(cfg.GitHub.CachePath)
	if err != nil {
		return fmt.Errorf("open stats cache: %w", err)
	}
	defer cache.Close()

	service := ghexp.NewService(cfg.GitHub.Token, cfg.GitHub.RateLimit, cache, logger)

	results, err := service.BatchExperience(context.Background(), repo, commits)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "    ")
	return enc.Encode(results)
}
