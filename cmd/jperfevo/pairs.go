package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jperfevo/jperfevo-go/internal/models"
	"github.com/jperfevo/jperfevo-go/internal/pairs"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Extract before/after code pairs for significant method changes",
	Long: `Checks out each mapped commit, extracts the current and previous method
implementation, and writes one labeled code pair per significant change
under <results>/<project>/code-pairs.`,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().String("project", "", "project name (required)")
	pairsCmd.Flags().String("git-url", "", "git URL of the analyzed project (required)")
	pairsCmd.Flags().String("mappings", "", "method mappings JSON file (default: <results>/<project>/method_mappings.json)")

	pairsCmd.MarkFlagRequired("project")
	pairsCmd.MarkFlagRequired("git-url")
}

func runPairs(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetString("project")
	gitURL, _ := cmd.Flags().GetString("git-url")
	mappingsPath, _ := cmd.Flags().GetString("mappings")

	if mappingsPath == "" {
		mappingsPath = filepath.Join(cfg.Analysis.ResultsDir, project, "method_mappings.json")
	}

	data, err := os.ReadFile(mappingsPath)
	if err != nil {
		return fmt.Errorf("read mappings %s: %w", mappingsPath, err)
	}
	var mappings map[string][]models.MethodMapping
	if err := json.Unmarshal(data, &mappings); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", mappingsPath, err)
	}

	ctx := context.Background()
	generator, err := pairs.NewGenerator(ctx, pairs.GeneratorConfig{
		ProjectName:  project,
		GitURL:       gitURL,
		ResultsDir:   cfg.Analysis.ResultsDir,
		ProjectsDir:  cfg.Pairs.ProjectsDir,
		ExtractorJAR: cfg.Pairs.ExtractorJAR,
	}, logger)
	if err != nil {
		return err
	}

	return generator.Generate(ctx, mappings)
}
