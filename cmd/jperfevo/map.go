package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jperfevo/jperfevo-go/internal/lineage"
)

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Map benchmarked methods to their previous implementations",
	Long: `Resolves each method in the performance data to its implementation in
the previous commit, using candidate commit records and name similarity,
and writes the resulting method mappings as JSON.`,
	RunE: runMap,
}

func init() {
	mapCmd.Flags().String("project", "", "project name (required)")
	mapCmd.Flags().String("commits", "", "candidate commits JSON file (required)")
	mapCmd.Flags().String("performance", "", "performance data JSON file (required)")
	mapCmd.Flags().String("output", "", "output file (default: <results>/<project>/method_mappings.json)")
	mapCmd.Flags().Bool("save", false, "also persist mappings to storage")

	mapCmd.MarkFlagRequired("project")
	mapCmd.MarkFlagRequired("commits")
	mapCmd.MarkFlagRequired("performance")
}

func runMap(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetString("project")
	commitsPath, _ := cmd.Flags().GetString("commits")
	perfPath, _ := cmd.Flags().GetString("performance")
	output, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if output == "" {
		output = filepath.Join(cfg.Analysis.ResultsDir, project, "method_mappings.json")
	}

	resolver, err := lineage.LoadResolver(commitsPath, perfPath, logger)
	if err != nil {
		return err
	}

	mappings := resolver.CreateMethodMappings()

	total := 0
	for _, items := range mappings {
		total += len(items)
	}
	logger.WithField("mappings", total).Info("Resolved method mappings")

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	data, err := json.MarshalIndent(mappings, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write mappings: %w", err)
	}

	if save {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveMethodMappings(context.Background(), project, mappings); err != nil {
			return fmt.Errorf("save mappings: %w", err)
		}
	}

	logger.WithField("output", output).Info("Method mappings written")
	return nil
}
