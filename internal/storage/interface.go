package storage

import (
	"context"
	"errors"

	"github.com/jperfevo/jperfevo-go/internal/models"
)

// Common errors
var (
	ErrNotFound = errors.New("not found")
)

// Store persists analysis output: labeled code pairs and the method
// mappings they were derived from.
type Store interface {
	// Code pair operations
	SaveCodePairs(ctx context.Context, pairs []models.CodePair) error
	GetCodePairs(ctx context.Context, projectName string) ([]models.CodePair, error)

	// Method mapping operations
	SaveMethodMappings(ctx context.Context, projectName string, mappings map[string][]models.MethodMapping) error
	GetMethodMappings(ctx context.Context, projectName string) (map[string][]models.MethodMapping, error)

	// Close connection
	Close() error
}
