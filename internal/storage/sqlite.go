package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// SQLiteStore implements storage using SQLite (for local/development)
type SQLiteStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewSQLiteStore creates a new SQLite storage
func NewSQLiteStore(path string, logger *logrus.Logger) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to sqlite: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	db.Exec("PRAGMA foreign_keys = ON")
	db.Exec("PRAGMA journal_mode = WAL")

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS code_pairs (
		id TEXT PRIMARY KEY,
		project_name TEXT NOT NULL,
		version1 TEXT NOT NULL,
		version2 TEXT NOT NULL,
		commit_hash TEXT NOT NULL,
		commit_message TEXT,
		method_name TEXT NOT NULL,
		performance_change TEXT
	);

	CREATE TABLE IF NOT EXISTS method_mappings (
		project_name TEXT NOT NULL,
		commit_hash TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		PRIMARY KEY (project_name, commit_hash, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pairs_project ON code_pairs(project_name);
	CREATE INDEX IF NOT EXISTS idx_mappings_project ON method_mappings(project_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Code pair operations

func (s *SQLiteStore) SaveCodePairs(ctx context.Context, pairs []models.CodePair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO code_pairs
		(id, project_name, version1, version2, commit_hash, commit_message, method_name, performance_change)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for _, pair := range pairs {
		id := pair.ID
		if id == "" {
			id = uuid.NewString()
		}
		_, err := tx.ExecContext(ctx, query,
			id, pair.ProjectName, pair.Version1, pair.Version2,
			pair.CommitHash, pair.CommitMessage, pair.MethodName, pair.PerformanceChange)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetCodePairs(ctx context.Context, projectName string) ([]models.CodePair, error) {
	var pairs []models.CodePair
	query := `SELECT * FROM code_pairs WHERE project_name = ?`

	err := s.db.SelectContext(ctx, &pairs, query, projectName)
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// Method mapping operations

func (s *SQLiteStore) SaveMethodMappings(ctx context.Context, projectName string, mappings map[string][]models.MethodMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT OR REPLACE INTO method_mappings
		(project_name, commit_hash, position, payload)
		VALUES (?, ?, ?, ?)
	`

	for commitHash, items := range mappings {
		for i, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("marshal mapping: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, projectName, commitHash, i, string(payload)); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) GetMethodMappings(ctx context.Context, projectName string) (map[string][]models.MethodMapping, error) {
	type row struct {
		CommitHash string `db:"commit_hash"`
		Position   int    `db:"position"`
		Payload    string `db:"payload"`
	}

	var rows []row
	query := `SELECT commit_hash, position, payload FROM method_mappings WHERE project_name = ? ORDER BY commit_hash, position`

	err := s.db.SelectContext(ctx, &rows, query, projectName)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	mappings := make(map[string][]models.MethodMapping)
	for _, r := range rows {
		var mapping models.MethodMapping
		if err := json.Unmarshal([]byte(r.Payload), &mapping); err != nil {
			return nil, fmt.Errorf("unmarshal mapping: %w", err)
		}
		mappings[r.CommitHash] = append(mappings[r.CommitHash], mapping)
	}

	return mappings, nil
}
