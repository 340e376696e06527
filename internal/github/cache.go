package github

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var statsBucket = []byte("contributor_stats")

// StatsCache persists per-repository contributor totals so reruns across the
// commits of one repository do not refetch the expensive stats endpoint.
type StatsCache struct {
	db *bolt.DB
}

// OpenStatsCache opens (or creates) the cache database at path.
func OpenStatsCache(path string) (*StatsCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open stats cache %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(statsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init stats cache: %w", err)
	}

	return &StatsCache{db: db}, nil
}

// Contributors returns the cached login->total map for a repository.
func (c *StatsCache) Contributors(repo string) (map[string]int, bool) {
	var totals map[string]int
	err := c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(statsBucket).Get([]byte(repo))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, &totals)
	})
	if err != nil || totals == nil {
		return nil, false
	}
	return totals, true
}

// PutContributors stores the login->total map for a repository.
func (c *StatsCache) PutContributors(repo string, totals map[string]int) error {
	raw, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(statsBucket).Put([]byte(repo), raw)
	})
}

// Close closes the underlying database.
func (c *StatsCache) Close() error {
	return c.db.Close()
}
