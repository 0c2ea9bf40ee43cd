package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/lib/pq"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SearchStore = (*SearchStore)(nil)

// SearchStore implements driven.SearchStore against the posts and users tables
type SearchStore struct {
	db *DB
}

// NewSearchStore creates a new SearchStore
func NewSearchStore(db *DB) *SearchStore {
	return &SearchStore{db: db}
}

// SearchPosts runs one post search under q.Mode
func (s *SearchStore) SearchPosts(ctx context.Context, q driven.SearchQuery, opts domain.PostSearchOptions) ([]string, error) {
	stmt := buildPostSearch(q, opts)
	ids, err := s.run(ctx, q, stmt)
	if err != nil {
		return nil, wrapPQ(fmt.Sprintf("search posts (%s)", q.Mode), err)
	}
	return ids, nil
}

// SearchUsers runs one user search under q.Mode
func (s *SearchStore) SearchUsers(ctx context.Context, q driven.SearchQuery, opts domain.UserSearchOptions) ([]string, error) {
	stmt := buildUserSearch(q, opts)
	ids, err := s.run(ctx, q, stmt)
	if err != nil {
		return nil, wrapPQ(fmt.Sprintf("search users (%s)", q.Mode), err)
	}
	return ids, nil
}

// run executes stmt. Similarity-ranked queries run in a transaction so the
// threshold set for the % operator does not leak to other pooled sessions.
func (s *SearchStore) run(ctx context.Context, q driven.SearchQuery, stmt searchStatement) ([]string, error) {
	if !q.Mode.RanksBySimilarity() {
		return queryIDs(ctx, s.db, stmt.query, stmt.args...)
	}

	var ids []string
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, setThresholdSQL, formatThreshold(q.Threshold)); err != nil {
			return fmt.Errorf("set similarity threshold: %w", err)
		}
		var err error
		ids, err = queryIDs(ctx, tx, stmt.query, stmt.args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func formatThreshold(t float64) string {
	if t <= 0 || t > 1 {
		t = domain.DefaultSimilarityThreshold
	}
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// wrapPQ adds the SQLSTATE of a server error to the message
func wrapPQ(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w (sqlstate %s)", op, err, pqErr.Code)
	}
	return fmt.Errorf("%s: %w", op, err)
}
