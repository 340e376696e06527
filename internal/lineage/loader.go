package lineage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// LoadCandidateCommits reads a JSON list of candidate-commit records and
// indexes them by commit hash. Malformed or missing input fails fast with the
// offending path; silently proceeding on corrupt data would poison everything
// downstream.
func LoadCandidateCommits(path string) (map[string]*models.CommitRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidate commits %s: %w", path, err)
	}

	var records []*models.CommitRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	byCommit := make(map[string]*models.CommitRecord, len(records))
	for _, rec := range records {
		byCommit[rec.Commit] = rec
	}
	return byCommit, nil
}

// LoadPerformanceData reads the nested performance dataset keyed by commit,
// measurement hash, benchmark and method signature.
func LoadPerformanceData(path string) (models.PerformanceData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read performance data %s: %w", path, err)
	}

	var perf models.PerformanceData
	if err := json.Unmarshal(data, &perf); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", path, err)
	}
	return perf, nil
}
