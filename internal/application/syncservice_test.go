package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// startSync runs svc.Start in the background and stops it when the test ends.
func startSync(t *testing.T, svc *application.SyncService) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func refresh(t *testing.T, svc *application.SyncService) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return svc.Refresh(ctx)
}

func TestSyncService_Disabled(t *testing.T) {
	svc := application.NewSyncService(nil, &mockProductStore{}, &mockMovementStore{}, time.Minute)

	assert.False(t, svc.Enabled())
	assert.ErrorIs(t, svc.Refresh(context.Background()), application.ErrSyncDisabled)

	done := make(chan struct{})
	go func() {
		svc.Start(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start should return immediately without a client")
	}
}

func TestSyncService_Refresh(t *testing.T) {
	client := &mockInventoryClient{
		products: []model.Product{
			{ID: "1", Name: "Rice", Quantity: "20"},
			{ID: "2", Name: "Beans", Quantity: "0"},
		},
		movements: []model.StockMovement{
			{ID: "m1", ProductID: "2", ProductName: "Beans", Delta: -15, OccurredAt: fixedNow.Add(-time.Hour)},
		},
	}
	ps := &mockProductStore{}
	ms := &mockMovementStore{}

	svc := application.NewSyncService(client, ps, ms, time.Hour).WithClock(fixedClock())
	startSync(t, svc)

	require.NoError(t, refresh(t, svc))

	assert.True(t, svc.Enabled())
	assert.Equal(t, 2, client.callCount(), "initial sync plus manual refresh")

	products, err := ps.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 2)

	movements, err := ms.ListSince(context.Background(), fixedNow.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.NotEmpty(t, movements)

	ms.mu.Lock()
	cutoffs := append([]time.Time(nil), ms.cutoffs...)
	ms.mu.Unlock()
	require.NotEmpty(t, cutoffs)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), cutoffs[len(cutoffs)-1])

	last, lastErr := svc.LastSync()
	assert.Equal(t, fixedNow, last)
	assert.NoError(t, lastErr)
}

func TestSyncService_ProductFetchFailureKeepsSnapshot(t *testing.T) {
	client := &mockInventoryClient{productsErr: errors.New("502 bad gateway")}
	ps := &mockProductStore{products: []model.Product{{ID: "1", Name: "Rice", Quantity: "20"}}}

	svc := application.NewSyncService(client, ps, &mockMovementStore{}, time.Hour).WithClock(fixedClock())
	startSync(t, svc)

	err := refresh(t, svc)
	require.Error(t, err)

	ps.mu.Lock()
	assert.Zero(t, ps.replaces)
	assert.Len(t, ps.products, 1)
	ps.mu.Unlock()

	_, lastErr := svc.LastSync()
	assert.Error(t, lastErr)
}

func TestSyncService_MovementFetchFailureIsNonFatal(t *testing.T) {
	client := &mockInventoryClient{
		products:     []model.Product{{ID: "1", Name: "Rice", Quantity: "20"}},
		movementsErr: errors.New("timeout"),
	}
	ps := &mockProductStore{}

	svc := application.NewSyncService(client, ps, &mockMovementStore{}, time.Hour).WithClock(fixedClock())
	startSync(t, svc)

	require.NoError(t, refresh(t, svc))

	ps.mu.Lock()
	assert.Len(t, ps.products, 1)
	ps.mu.Unlock()
}

func TestSyncService_RefreshHonorsContext(t *testing.T) {
	client := &mockInventoryClient{}
	svc := application.NewSyncService(client, &mockProductStore{}, &mockMovementStore{}, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Start is not running, so nothing receives the request.
	assert.ErrorIs(t, svc.Refresh(ctx), context.Canceled)
}
