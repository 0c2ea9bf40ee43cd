package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
	"github.com/bonlog/bonlog-core/internal/core/ports/driving"
	"github.com/bonlog/bonlog-core/internal/metrics"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

const (
	targetPosts = "posts"
	targetUsers = "users"
)

// SearchConfig holds the search settings read once at startup
type SearchConfig struct {
	Mode                domain.SearchMode
	SimilarityThreshold float64 // pg_trgm threshold (default: 0.3)
	MaxLimit            int     // page size cap (default: 100)
}

// searchService implements the SearchService interface
type searchService struct {
	store      driven.SearchStore
	exclusions driven.ExclusionStore
	config     SearchConfig
	logger     *slog.Logger
}

// NewSearchService creates a new SearchService.
// exclusions may be nil when viewer relations are not available.
func NewSearchService(
	store driven.SearchStore,
	exclusions driven.ExclusionStore,
	cfg SearchConfig,
	logger *slog.Logger,
) driving.SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Mode == "" {
		cfg.Mode = domain.SearchModePattern
	}
	if cfg.SimilarityThreshold <= 0 || cfg.SimilarityThreshold > 1 {
		cfg.SimilarityThreshold = domain.DefaultSimilarityThreshold
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = domain.MaxSearchLimit
	}

	return &searchService{
		store:      store,
		exclusions: exclusions,
		config:     cfg,
		logger:     logger,
	}
}

// Mode returns the configured search mode
func (s *searchService) Mode() domain.SearchMode {
	return s.config.Mode
}

// PageSize returns the effective limit for a requested limit
func (s *searchService) PageSize(limit int) int {
	return domain.NormalizeLimit(limit, s.config.MaxLimit)
}

// SearchPosts returns IDs of visible posts matching query
func (s *searchService) SearchPosts(ctx context.Context, query string, opts domain.PostSearchOptions) ([]string, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return []string{}, nil
	}
	opts.Limit = s.PageSize(opts.Limit)

	return s.withFallback(ctx, targetPosts, term, func(ctx context.Context, q driven.SearchQuery) ([]string, error) {
		return s.store.SearchPosts(ctx, q, opts)
	})
}

// SearchUsers returns IDs of users whose nickname or bio matches query
func (s *searchService) SearchUsers(ctx context.Context, query string, opts domain.UserSearchOptions) ([]string, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return []string{}, nil
	}
	opts.Limit = s.PageSize(opts.Limit)

	return s.withFallback(ctx, targetUsers, term, func(ctx context.Context, q driven.SearchQuery) ([]string, error) {
		return s.store.SearchUsers(ctx, q, opts)
	})
}

// ExclusionsFor returns the users hidden from viewerID
func (s *searchService) ExclusionsFor(ctx context.Context, viewerID string) ([]string, error) {
	if viewerID == "" || s.exclusions == nil {
		return nil, nil
	}
	ids, err := s.exclusions.ExcludedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load exclusions for %s: %w", viewerID, err)
	}
	return ids, nil
}

type searchFunc func(ctx context.Context, q driven.SearchQuery) ([]string, error)

// withFallback runs the configured strategy, then pattern matching exactly
// once if that failed. Only a failure of the pattern attempt is returned.
func (s *searchService) withFallback(ctx context.Context, target, term string, run searchFunc) ([]string, error) {
	mode := s.config.Mode

	ids, err := s.attempt(ctx, target, mode, term, run)
	if err == nil {
		return ids, nil
	}
	if mode.IsFallback() {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, target, err)
	}

	s.logger.Warn("search failed, falling back to pattern matching",
		"target", target, "mode", mode, "error", err)
	metrics.SearchFallbacksTotal.WithLabelValues(target, string(mode)).Inc()

	ids, err = s.attempt(ctx, target, domain.SearchModePattern, term, run)
	if err != nil {
		s.logger.Error("fallback search failed", "target", target, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSearchFailed, target, err)
	}
	return ids, nil
}

func (s *searchService) attempt(ctx context.Context, target string, mode domain.SearchMode, term string, run searchFunc) ([]string, error) {
	start := time.Now()
	ids, err := run(ctx, driven.SearchQuery{
		Mode:      mode,
		Term:      term,
		Threshold: s.config.SimilarityThreshold,
	})
	metrics.SearchDuration.WithLabelValues(target, string(mode)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.SearchQueriesTotal.WithLabelValues(target, string(mode), "error").Inc()
		return nil, err
	}
	metrics.SearchQueriesTotal.WithLabelValues(target, string(mode), "ok").Inc()

	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
