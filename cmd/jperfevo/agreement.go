package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jperfevo/jperfevo-go/internal/agreement"
)

var agreementCmd = &cobra.Command{
	Use:   "agreement",
	Short: "Score inter-reviewer agreement on code pair labels",
	Long: `Reads a JSON file of labeled code pairs (one object per pair, mapping
reviewer name to the list of categories they assigned) and reports the
mean Cohen's kappa between two reviewers.`,
	RunE: runAgreement,
}

func init() {
	agreementCmd.Flags().String("labels", "", "labels JSON file (required)")
	agreementCmd.Flags().StringSlice("reviewers", nil, "the two reviewer names to compare (required)")

	agreementCmd.MarkFlagRequired("labels")
	agreementCmd.MarkFlagRequired("reviewers")
}

func runAgreement(cmd *cobra.Command, args []string) error {
	labelsPath, _ := cmd.Flags().GetString("labels")
	reviewers, _ := cmd.Flags().GetStringSlice("reviewers")

	if len(reviewers) != 2 {
		return fmt.Errorf("expected exactly 2 reviewers, got %d", len(reviewers))
	}

	data, err := os.ReadFile(labelsPath)
	if err != nil {
		return fmt.Errorf("read labels %s: %w", labelsPath, err)
	}

	var raw []map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", labelsPath, err)
	}

	labels := make([]agreement.Labels, len(raw))
	for i, review := range raw {
		entry := make(agreement.Labels, len(review))
		for reviewer, categories := range review {
			set := make(map[string]struct{}, len(categories))
			for _, cat := range categories {
				set[cat] = struct{}{}
			}
			entry[reviewer] = set
		}
		labels[i] = entry
	}

	analyzer := agreement.NewAnalyzer(reviewers[0], reviewers[1])
	kappa := analyzer.MeanKappa(labels)

	fmt.Printf("Mean Cohen's kappa (%s vs %s): %.4f\n", reviewers[0], reviewers[1], kappa)
	return nil
}
