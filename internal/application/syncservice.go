// Package application contains use-case orchestration services.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/port/driven"
)

// ErrSyncDisabled is returned by Refresh when no inventory client is configured.
var ErrSyncDisabled = errors.New("inventory sync disabled: no inventory API configured")

// refreshRequest represents a manual sync trigger.
type refreshRequest struct {
	done chan error
}

// SyncService periodically copies products and recent stock movements from
// the remote inventory API into the local snapshot used by the alert feed.
type SyncService struct {
	client        driven.InventoryClient
	productStore  driven.ProductStore
	movementStore driven.MovementStore
	interval      time.Duration
	refreshCh     chan refreshRequest
	now           func() time.Time
	logger        *slog.Logger

	mu           sync.RWMutex
	lastSync     time.Time
	lastErr      error
	lastMovement time.Time
}

// NewSyncService creates a new SyncService. client may be nil, in which case
// Start returns immediately and Refresh reports ErrSyncDisabled.
func NewSyncService(
	client driven.InventoryClient,
	ps driven.ProductStore,
	ms driven.MovementStore,
	interval time.Duration,
) *SyncService {
	return &SyncService{
		client:        client,
		productStore:  ps,
		movementStore: ms,
		interval:      interval,
		refreshCh:     make(chan refreshRequest),
		now:           time.Now,
		logger:        slog.Default(),
	}
}

// WithClock replaces the time source used for the movement window.
func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

// Start runs an immediate sync, then syncs on an interval adapted to recent
// stock activity. It also serves manual refresh requests. Start blocks until
// the context is canceled.
func (s *SyncService) Start(ctx context.Context) {
	if s.client == nil {
		s.logger.Info("inventory sync disabled")
		return
	}

	if err := s.syncOnce(ctx); err != nil {
		s.logger.Error("initial inventory sync failed", "error", err)
	}

	timer := time.NewTimer(s.nextInterval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sync service stopped")
			return
		case <-timer.C:
			if err := s.syncOnce(ctx); err != nil {
				s.logger.Error("inventory sync failed", "error", err)
			}
			timer.Reset(s.nextInterval())
		case req := <-s.refreshCh:
			req.done <- s.syncOnce(ctx)
		}
	}
}

// Refresh triggers a sync outside the schedule and blocks until it completes
// or the context is canceled.
func (s *SyncService) Refresh(ctx context.Context) error {
	if s.client == nil {
		return ErrSyncDisabled
	}

	done := make(chan error, 1)
	select {
	case s.refreshCh <- refreshRequest{done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LastSync returns the time of the last attempted sync and its error.
func (s *SyncService) LastSync() (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync, s.lastErr
}

// Enabled reports whether an inventory client is configured.
func (s *SyncService) Enabled() bool {
	return s.client != nil
}

func (s *SyncService) nextInterval() time.Duration {
	s.mu.RLock()
	last := s.lastMovement
	s.mu.RUnlock()

	tier := classifyActivity(last, s.now())
	interval := tierInterval(tier, s.interval)
	s.logger.Debug("next inventory sync scheduled", "tier", tier.String(), "in", interval)
	return interval
}

// syncOnce replaces the product snapshot and merges recent movements. On a
// product fetch failure the previous snapshot is kept.
func (s *SyncService) syncOnce(ctx context.Context) error {
	start := s.now()
	err := s.sync(ctx, start)

	s.mu.Lock()
	s.lastSync = start
	s.lastErr = err
	s.mu.Unlock()

	return err
}

func (s *SyncService) sync(ctx context.Context, now time.Time) error {
	products, err := s.client.FetchProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch products: %w", err)
	}
	if err := s.productStore.ReplaceAll(ctx, products); err != nil {
		return fmt.Errorf("store products: %w", err)
	}

	cutoff := now.Add(-movementWindow)
	movements, err := s.client.FetchMovements(ctx, cutoff)
	if err != nil {
		// Products are already stored; movement alerts just lag a cycle.
		s.logger.Warn("fetch stock movements failed", "error", err)
	} else {
		if err := s.movementStore.Upsert(ctx, movements); err != nil {
			s.logger.Error("store stock movements failed", "error", err)
		}
		if latest := latestMovement(movements); !latest.IsZero() {
			s.mu.Lock()
			if latest.After(s.lastMovement) {
				s.lastMovement = latest
			}
			s.mu.Unlock()
		}
	}

	if err := s.movementStore.DeleteBefore(ctx, cutoff); err != nil {
		s.logger.Warn("prune stock movements failed", "error", err)
	}

	s.logger.Info("inventory synced",
		"products", len(products),
		"movements", len(movements),
		"duration", s.now().Sub(now).Round(time.Millisecond),
	)
	return nil
}
