package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// PostgresStore implements storage using PostgreSQL
type PostgresStore struct {
	db     *sqlx.DB
	logger *logrus.Logger
}

// NewPostgresStore creates a new PostgreSQL storage
func NewPostgresStore(dsn string, logger *logrus.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store := &PostgresStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) initSchema() error {
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
		payload JSONB NOT NULL,
		PRIMARY KEY (project_name, commit_hash, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pairs_project ON code_pairs(project_name);
	CREATE INDEX IF NOT EXISTS idx_mappings_project ON method_mappings(project_name);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Code pair operations

func (s *PostgresStore) SaveCodePairs(ctx context.Context, pairs []models.CodePair) error {
	if len(pairs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO code_pairs
		(id, project_name, version1, version2, commit_hash, commit_message, method_name, performance_change)
		VALUES (:id, :project_name, :version1, :version2, :commit_hash, :commit_message, :method_name, :performance_change)
		ON CONFLICT (id) DO UPDATE SET
			performance_change = EXCLUDED.performance_change
	`

	for _, pair := range pairs {
		if pair.ID == "" {
			pair.ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, pair); err != nil {
			return fmt.Errorf("save code pair: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetCodePairs(ctx context.Context, projectName string) ([]models.CodePair, error) {
	var pairs []models.CodePair
	query := `SELECT * FROM code_pairs WHERE project_name = $1`

	err := s.db.SelectContext(ctx, &pairs, query, projectName)
	if err != nil {
		return nil, fmt.Errorf("get code pairs: %w", err)
	}

	return pairs, nil
}

// Method mapping operations

func (s *PostgresStore) SaveMethodMappings(ctx context.Context, projectName string, mappings map[string][]models.MethodMapping) error {
	if len(mappings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO method_mappings (project_name, commit_hash, position, payload)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (project_name, commit_hash, position) DO UPDATE SET
			payload = EXCLUDED.payload
	`

	for commitHash, items := range mappings {
		for i, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("marshal mapping: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, projectName, commitHash, i, string(payload)); err != nil {
				return fmt.Errorf("save mapping: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (s *PostgresStore) GetMethodMappings(ctx context.Context, projectName string) (map[string][]models.MethodMapping, error) {
	type row struct {
		CommitHash string `db:"commit_hash"`
		Position   int    `db:"position"`
		Payload    string `db:"payload"`
	}

	var rows []row
	query := `SELECT commit_hash, position, payload FROM method_mappings WHERE project_name = $1 ORDER BY commit_hash, position`

	err := s.db.SelectContext(ctx, &rows, query, projectName)
	if err != nil {
		return nil, fmt.Errorf("get method mappings: %w", err)
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
