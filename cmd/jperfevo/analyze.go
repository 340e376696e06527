package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jperfevo/jperfevo-go/internal/models"
	"github.com/jperfevo/jperfevo-go/internal/trace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Attach statistical significance verdicts to method mappings",
	Long: `Replays method entry/exit traces for each commit in the mappings,
compares execution time distributions between a method and its previous
implementation, and records whether the change is statistically
significant.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("project", "", "project name (required)")
	analyzeCmd.Flags().String("mappings", "", "method mappings JSON file (default: <results>/<project>/method_mappings.json)")
	analyzeCmd.Flags().String("traces", "", "directory with per-commit trace data (required)")
	analyzeCmd.Flags().String("trace-name", "trace.log", "trace file name inside each commit directory")
	analyzeCmd.Flags().Bool("save", false, "also persist annotated mappings to storage")

	analyzeCmd.MarkFlagRequired("project")
	analyzeCmd.MarkFlagRequired("traces")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	project, _ := cmd.Flags().GetString("project")
	mappingsPath, _ := cmd.Flags().GetString("mappings")
	tracesDir, _ := cmd.Flags().GetString("traces")
	traceName, _ := cmd.Flags().GetString("trace-name")
	save, _ := cmd.Flags().GetBool("save")

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

	analyzers := make(map[string]*trace.Analyzer)
	analyzerFor := func(commit string) (*trace.Analyzer, error) {
		if a, ok := analyzers[commit]; ok {
			return a, nil
		}
		a := trace.NewAnalyzer(filepath.Join(tracesDir, commit, traceName), logger)
		if err := a.Analyze(); err != nil {
			return nil, fmt.Errorf("analyze traces for %s: %w", commit, err)
		}
		analyzers[commit] = a
		return a, nil
	}

	annotated := 0
	for commitHash, items := range mappings {
		current, err := analyzerFor(commitHash)
		if err != nil {
			return err
		}
		for i, item := range items {
			previous, err := analyzerFor(item.PreviousCommit)
			if err != nil {
				return err
			}
			// Previous version is the baseline; its samples are "before".
			result, ok := previous.CalculateSignificance(current, item.PreviousMethod, item.MethodNameChange)
			if !ok {
				logger.WithFields(map[string]interface{}{
					"commit": commitHash,
					"method": item.MethodNameChange,
				}).Debug("Not enough trace data for significance")
				continue
			}
			items[i].Significance = result
			annotated++
		}
		mappings[commitHash] = items
	}
	logger.WithField("annotated", annotated).Info("Significance analysis complete")

	out, err := json.MarshalIndent(mappings, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal mappings: %w", err)
	}
	if err := os.WriteFile(mappingsPath, out, 0o644); err != nil {
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

	return nil
}
