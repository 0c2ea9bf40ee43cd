package postgres

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ExtensionStore = (*ExtensionStore)(nil)

// searchIndex is one GIN index over a searched text column
type searchIndex struct {
	table  string
	column string
}

var searchIndexes = []searchIndex{
	{table: "posts", column: "content"},
	{table: "users", column: "nickname"},
	{table: "users", column: "bio"},
}

// operatorClass maps a mode to the GIN operator class of its extension
func operatorClass(mode domain.SearchMode) string {
	switch mode {
	case domain.SearchModeNgram:
		return "gin_bigm_ops"
	case domain.SearchModeTrigram:
		return "gin_trgm_ops"
	default:
		return ""
	}
}

// indexStatements returns the DDL for the mode's search indexes
func indexStatements(mode domain.SearchMode) []string {
	opclass := operatorClass(mode)
	if opclass == "" {
		return nil
	}

	stmts := make([]string, 0, len(searchIndexes))
	for _, idx := range searchIndexes {
		name := fmt.Sprintf("idx_%s_%s_%s", idx.table, idx.column, mode)
		stmts = append(stmts, fmt.Sprintf(
			"CREATE INDEX IF NOT EXISTS %s ON %s USING gin (%s %s)",
			pq.QuoteIdentifier(name), pq.QuoteIdentifier(idx.table), pq.QuoteIdentifier(idx.column), opclass,
		))
	}
	return stmts
}

// ExtensionStore implements driven.ExtensionStore
type ExtensionStore struct {
	db *DB
}

// NewExtensionStore creates a new ExtensionStore
func NewExtensionStore(db *DB) *ExtensionStore {
	return &ExtensionStore{db: db}
}

// ExtensionInstalled reports whether name is present in pg_extension
func (s *ExtensionStore) ExtensionInstalled(ctx context.Context, name string) (bool, error) {
	var installed bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)", name,
	).Scan(&installed)
	if err != nil {
		return false, wrapPQ("check extension "+name, err)
	}
	return installed, nil
}

// CreateExtension installs name if it is not installed yet
func (s *ExtensionStore) CreateExtension(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS "+pq.QuoteIdentifier(name)); err != nil {
		return wrapPQ("create extension "+name, err)
	}
	return nil
}

// CreateSearchIndexes creates the GIN indexes used by mode.
// Pattern mode has none.
func (s *ExtensionStore) CreateSearchIndexes(ctx context.Context, mode domain.SearchMode) error {
	for _, stmt := range indexStatements(mode) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return wrapPQ("create search index", err)
		}
	}
	return nil
}
