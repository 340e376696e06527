package pairs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jperfevo/jperfevo-go/internal/models"
	"github.com/jperfevo/jperfevo-go/internal/storage"
)

// ErrNoPairs is returned when no valid code pairs exist under the base
// directory.
var ErrNoPairs = errors.New("no valid code pairs found")

// Inserter collects generated code pairs across projects, rebalances the
// label distribution and ships the batch to local storage and the review
// API.
type Inserter struct {
	baseDir    string
	apiURL     string
	store      storage.Store
	httpClient *http.Client
	rng        *rand.Rand
	logger     *logrus.Logger
}

// importRequest is the payload posted to the review API.
type importRequest struct {
	ImportID  string            `json:"importId"`
	CodePairs []models.CodePair `json:"codePairs"`
}

// NewInserter builds an Inserter. The store and apiURL are each optional;
// at least one destination must be set before Import is called.
func NewInserter(baseDir, apiURL string, store storage.Store, logger *logrus.Logger) *Inserter {
	if logger == nil {
		logger = logrus.New()
	}
	return &Inserter{
		baseDir:    baseDir,
		apiURL:     apiURL,
		store:      store,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:     logger,
	}
}

// Import gathers pairs from every project directory, balances unchanged
// pairs against changed ones by downsampling, shuffles the batch and
// delivers it.
func (ins *Inserter) Import(ctx context.Context) error {
	entries, err := os.ReadDir(ins.baseDir)
	if err != nil {
		return fmt.Errorf("read base directory %s: %w", ins.baseDir, err)
	}

	var all []models.CodePair
	projects := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		projects++
		pairsDir := filepath.Join(ins.baseDir, entry.Name(), "code-pairs")
		if _, err := os.Stat(pairsDir); err != nil {
			ins.logger.WithField("project", entry.Name()).Warn("No code-pairs directory")
			continue
		}
		pairs, err := ins.collectProject(pairsDir, entry.Name())
		if err != nil {
			return err
		}
		all = append(all, pairs...)
	}

	batch := ins.balance(all)
	if len(batch) == 0 {
		return ErrNoPairs
	}

	importID := uuid.NewString()
	ins.logger.WithFields(logrus.Fields{
		"import_id": importID,
		"pairs":     len(batch),
		"projects":  projects,
	}).Info("Importing code pairs")

	if ins.store != nil {
		if err := ins.store.SaveCodePairs(ctx, batch); err != nil {
			return fmt.Errorf("save code pairs: %w", err)
		}
	}
	if ins.apiURL != "" {
		if err := ins.post(ctx, importID, batch); err != nil {
			return err
		}
	}
	return nil
}

// collectProject reads every complete v1/v2/metadata triple in one
// code-pairs directory. Incomplete or malformed triples are skipped with a
// warning.
func (ins *Inserter) collectProject(dir, project string) ([]models.CodePair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read code-pairs directory %s: %w", dir, err)
	}

	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.Name()] = struct{}{}
	}

	var pairs []models.CodePair
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, "_v1.java") {
			continue
		}
		base := strings.TrimSuffix(name, "_v1.java")
		if _, ok := present[base+"_v2.java"]; !ok {
			continue
		}
		if _, ok := present[base+"_metadata.json"]; !ok {
			continue
		}

		pair, err := ins.readPair(dir, base, project)
		if err != nil {
			ins.logger.WithError(err).WithFields(logrus.Fields{
				"project": project,
				"pair":    base,
			}).Warn("Skipping code pair")
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func (ins *Inserter) readPair(dir, base, project string) (models.CodePair, error) {
	v1, err := os.ReadFile(filepath.Join(dir, base+"_v1.java"))
	if err != nil {
		return models.CodePair{}, err
	}
	v2, err := os.ReadFile(filepath.Join(dir, base+"_v2.java"))
	if err != nil {
		return models.CodePair{}, err
	}
	metaRaw, err := os.ReadFile(filepath.Join(dir, base+"_metadata.json"))
	if err != nil {
		return models.CodePair{}, err
	}

	var meta pairMetadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		return models.CodePair{}, fmt.Errorf("parse metadata: %w", err)
	}
	if meta.CurrentCommit == "" {
		return models.CodePair{}, errors.New("metadata missing current_commit")
	}

	change := ""
	if meta.Significance != nil {
		change = string(meta.Significance.ChangeType)
	}
	return models.CodePair{
		ProjectName:       project,
		Version1:          string(v1),
		Version2:          string(v2),
		CommitHash:        meta.CurrentCommit,
		CommitMessage:     meta.CommitMessage,
		MethodName:        meta.CurrentMethod,
		PerformanceChange: change,
	}, nil
}

// balance keeps every changed pair and downsamples unchanged pairs to the
// same count, then shuffles the combined batch.
func (ins *Inserter) balance(all []models.CodePair) []models.CodePair {
	var changed, unchanged []models.CodePair
	for _, pair := range all {
		if pair.PerformanceChange == string(models.ChangeUnchanged) {
			unchanged = append(unchanged, pair)
		} else {
			changed = append(changed, pair)
		}
	}

	if len(unchanged) > len(changed) {
		ins.rng.Shuffle(len(unchanged), func(i, j int) {
			unchanged[i], unchanged[j] = unchanged[j], unchanged[i]
		})
		unchanged = unchanged[:len(changed)]
	}

	batch := append(changed, unchanged...)
	ins.rng.Shuffle(len(batch), func(i, j int) {
		batch[i], batch[j] = batch[j], batch[i]
	})
	return batch
}

func (ins *Inserter) post(ctx context.Context, importID string, batch []models.CodePair) error {
	payload, err := json.Marshal(importRequest{ImportID: importID, CodePairs: batch})
	if err != nil {
		return fmt.Errorf("marshal import request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ins.apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build import request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ins.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("import code pairs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("import code pairs: API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
