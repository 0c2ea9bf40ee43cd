package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bonlog/bonlog-core/internal/core/domain"
	"github.com/bonlog/bonlog-core/internal/core/ports/driven"
	"github.com/bonlog/bonlog-core/internal/core/ports/driving"
)

// Ensure searchAdminService implements SearchAdminService
var _ driving.SearchAdminService = (*searchAdminService)(nil)

const (
	provisionLockName  = "search:provision"
	lockReleaseTimeout = 5 * time.Second
	minLockRefresh     = 10 * time.Millisecond
)

// SearchAdminConfig holds configuration for the search admin service.
type SearchAdminConfig struct {
	Store        driven.ExtensionStore
	Mode         domain.SearchMode
	Lock         driven.DistributedLock // Optional: serializes index provisioning across instances
	LockTTL      time.Duration          // TTL for the provisioning lock (default: 5m)
	LockRequired bool                   // If true, refuse to provision when the lock backend fails
	Logger       *slog.Logger
}

// searchAdminService implements capability probing, index provisioning and status.
// Every failure is absorbed into a negative result.
type searchAdminService struct {
	store        driven.ExtensionStore
	mode         domain.SearchMode
	lock         driven.DistributedLock
	lockTTL      time.Duration
	lockRequired bool
	logger       *slog.Logger
}

// NewSearchAdminService creates a new SearchAdminService
func NewSearchAdminService(cfg SearchAdminConfig) driving.SearchAdminService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	mode := cfg.Mode
	if mode == "" {
		mode = domain.SearchModePattern
	}

	lockTTL := cfg.LockTTL
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}

	return &searchAdminService{
		store:        cfg.Store,
		mode:         mode,
		lock:         cfg.Lock,
		lockTTL:      lockTTL,
		lockRequired: cfg.LockRequired,
		logger:       logger,
	}
}

// Mode returns the configured search mode
func (s *searchAdminService) Mode() domain.SearchMode {
	return s.mode
}

// IsExtensionAvailable checks the extension registry.
// A failed check is reported the same as a missing extension.
func (s *searchAdminService) IsExtensionAvailable(ctx context.Context, name string) bool {
	installed, err := s.store.ExtensionInstalled(ctx, name)
	if err != nil {
		s.logger.Debug("extension check failed", "extension", name, "error", err)
		return false
	}
	return installed
}

// EnableExtension installs the extension if missing
func (s *searchAdminService) EnableExtension(ctx context.Context, name string) bool {
	if err := s.store.CreateExtension(ctx, name); err != nil {
		s.logger.Error("failed to enable extension", "extension", name, "error", err)
		return false
	}
	s.logger.Info("extension enabled", "extension", name)
	return true
}

// CreateSearchIndexes creates the indexes the configured mode needs
func (s *searchAdminService) CreateSearchIndexes(ctx context.Context) domain.ProvisionResult {
	if s.mode.IsFallback() {
		return domain.ProvisionResult{
			Success: true,
			Message: "pattern search mode uses no search indexes; set SEARCH_MODE=bigm or trgm for indexed search",
		}
	}

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, provisionLockName, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn("failed to acquire provisioning lock", "error", err)
			if s.lockRequired {
				return domain.ProvisionResult{Success: false, Message: fmt.Sprintf("acquire provisioning lock: %v", err)}
			}
		case !acquired:
			return domain.ProvisionResult{
				Success:    false,
				Message:    "search index provisioning already in progress",
				InProgress: true,
			}
		default:
			stop := s.keepLockAlive(ctx)
			defer func() {
				stop()
				s.releaseLock(ctx)
			}()
		}
	}

	if err := s.store.CreateSearchIndexes(ctx, s.mode); err != nil {
		s.logger.Error("failed to create search indexes", "mode", s.mode, "error", err)
		return domain.ProvisionResult{Success: false, Message: err.Error()}
	}

	s.logger.Info("search indexes ready", "mode", s.mode)
	return domain.ProvisionResult{
		Success: true,
		Message: fmt.Sprintf("%s search indexes created", s.mode.Extension()),
	}
}

// releaseLock gives the lock back even when the caller's context is already done,
// so a disconnected client does not leave it held until the TTL runs out.
func (s *searchAdminService) releaseLock(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), lockReleaseTimeout)
	defer cancel()
	if err := s.lock.Release(ctx, provisionLockName); err != nil {
		s.logger.Warn("failed to release provisioning lock", "error", err)
	}
}

// keepLockAlive extends the provisioning lock every half TTL while index builds run.
// The returned func stops the loop and waits for it.
func (s *searchAdminService) keepLockAlive(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(max(s.lockTTL/2, minLockRefresh))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.lock.Extend(ctx, provisionLockName, s.lockTTL); err != nil {
					s.logger.Warn("failed to extend provisioning lock", "error", err)
				}
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Status probes both extensions concurrently. Never cached.
func (s *searchAdminService) Status(ctx context.Context) domain.SearchStatus {
	status := domain.SearchStatus{Mode: s.mode}

	var g errgroup.Group
	g.Go(func() error {
		status.NgramAvailable = s.IsExtensionAvailable(ctx, domain.ExtensionBigm)
		return nil
	})
	g.Go(func() error {
		status.TrigramAvailable = s.IsExtensionAvailable(ctx, domain.ExtensionTrgm)
		return nil
	})
	_ = g.Wait()

	return status
}
