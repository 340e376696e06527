package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jperfevo/jperfevo-go/internal/pairs"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import generated code pairs into storage and the review API",
	Long: `Collects code pairs from every project under the results directory,
balances unchanged pairs against significant ones, and ships the batch to
the configured storage backend and review API.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().String("base-dir", "", "base directory with per-project results (default: results dir)")
	importCmd.Flags().Bool("no-api", false, "skip posting to the review API")
	importCmd.Flags().Bool("no-store", false, "skip persisting to storage")
}

func runImport(cmd *cobra.Command, args []string) error {
	baseDir, _ := cmd.Flags().GetString("base-dir")
	noAPI, _ := cmd.Flags().GetBool("no-api")
	noStore, _ := cmd.Flags().GetBool("no-store")

	if baseDir == "" {
		baseDir = cfg.Analysis.ResultsDir
	}

	apiURL := cfg.Import.APIURL
	if noAPI {
		apiURL = ""
	}

	inserter := pairs.NewInserter(baseDir, apiURL, nil, logger)
	if !noStore {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()
		inserter = pairs.NewInserter(baseDir, apiURL, store, logger)
	}

	return inserter.Import(context.Background())
}
