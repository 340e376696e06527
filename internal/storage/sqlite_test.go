package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)

	t.Cleanup(func() { store.Close() })
	return store
}

func TestCodePairRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pairs := []models.CodePair{
		{
			ID:                "pair-1",
			ProjectName:       "rdf4j",
			Version1:          "int size() { return count; }",
			Version2:          "int size() { return elements.length; }",
			CommitHash:        "abc123",
			CommitMessage:     "optimize size lookup",
			MethodName:        "int size()",
			PerformanceChange: string(models.ChangeImprovement),
		},
		{
			ProjectName:       "rdf4j",
			Version1:          "void clear() {}",
			Version2:          "void clear() { count = 0; }",
			CommitHash:        "def456",
			MethodName:        "void clear()",
			PerformanceChange: string(models.ChangeUnchanged),
		},
	}

	require.NoError(t, store.SaveCodePairs(ctx, pairs))

	got, err := store.GetCodePairs(ctx, "rdf4j")
	require.NoError(t, err)
	require.Len(t, got, 2)

	byHash := make(map[string]models.CodePair, len(got))
	for _, p := range got {
		byHash[p.CommitHash] = p
	}

	assert.Equal(t, "pair-1", byHash["abc123"].ID)
	assert.Equal(t, "optimize size lookup", byHash["abc123"].CommitMessage)
	assert.Equal(t, string(models.ChangeImprovement), byHash["abc123"].PerformanceChange)

	// Pairs saved without an ID get one assigned.
	assert.NotEmpty(t, byHash["def456"].ID)

	other, err := store.GetCodePairs(ctx, "other-project")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCodePairUpsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	pair := models.CodePair{
		ID:          "pair-1",
		ProjectName: "rdf4j",
		Version1:    "v1",
		Version2:    "v2",
		CommitHash:  "abc123",
		MethodName:  "int size()",
	}
	require.NoError(t, store.SaveCodePairs(ctx, []models.CodePair{pair}))

	pair.Version2 = "v2-updated"
	require.NoError(t, store.SaveCodePairs(ctx, []models.CodePair{pair}))

	got, err := store.GetCodePairs(ctx, "rdf4j")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "v2-updated", got[0].Version2)
}

func TestMethodMappingRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	mappings := map[string][]models.MethodMapping{
		"abc123": {
			{
				CommitMessage:    "optimize size lookup",
				Benchmark:        "QueryBenchmark",
				MethodNamePerf:   "int size()",
				MethodNameChange: "int size()",
				File:             "src/Model.java",
				PreviousMethod:   "int size()",
				PreviousFile:     "src/Model.java",
				PreviousCommit:   "000aaa",
				PerformanceDiff:  0.5,
			},
			{
				CommitMessage:    "optimize size lookup",
				Benchmark:        "QueryBenchmark",
				MethodNamePerf:   "void clear()",
				MethodNameChange: "void clear()",
				File:             "src/Model.java",
				PreviousMethod:   "void clear()",
				PreviousFile:     "src/Model.java",
				PreviousCommit:   "000aaa",
				PerformanceDiff:  -0.1,
			},
		},
	}

	require.NoError(t, store.SaveMethodMappings(ctx, "rdf4j", mappings))

	got, err := store.GetMethodMappings(ctx, "rdf4j")
	require.NoError(t, err)
	require.Len(t, got["abc123"], 2)

	// Position column preserves the original slice order.
	assert.Equal(t, "int size()", got["abc123"][0].MethodNamePerf)
	assert.Equal(t, "void clear()", got["abc123"][1].MethodNamePerf)
	assert.Equal(t, 0.5, got["abc123"][0].PerformanceDiff)
}

func TestMethodMappingNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetMethodMappings(context.Background(), "missing-project")
	assert.ErrorIs(t, err, ErrNotFound)
}
