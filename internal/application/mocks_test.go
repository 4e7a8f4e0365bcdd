package application_test

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// --- Mock implementations ---

type mockKVStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
	deletes int
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: make(map[string][]byte)}
}

func (m *mockKVStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (m *mockKVStore) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *mockKVStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *mockKVStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
}

func (m *mockNotifier) Notify(_ context.Context, n model.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
}

func (m *mockNotifier) titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.sent))
	for _, n := range m.sent {
		out = append(out, n.Title)
	}
	return out
}

type mockProductStore struct {
	mu       sync.Mutex
	products []model.Product
	listErr  error
	replaces int
}

func (m *mockProductStore) ReplaceAll(_ context.Context, products []model.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces++
	m.products = append([]model.Product(nil), products...)
	return nil
}

func (m *mockProductStore) ListAll(_ context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]model.Product(nil), m.products...), nil
}

func (m *mockProductStore) GetByID(_ context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

type mockMovementStore struct {
	mu        sync.Mutex
	movements []model.StockMovement
	listErr   error
	cutoffs   []time.Time
}

func (m *mockMovementStore) Upsert(_ context.Context, movements []model.StockMovement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements = append(m.movements, movements...)
	return nil
}

func (m *mockMovementStore) ListSince(_ context.Context, since time.Time) ([]model.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.StockMovement
	for _, mv := range m.movements {
		if !mv.OccurredAt.Before(since) {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (m *mockMovementStore) DeleteBefore(_ context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cutoffs = append(m.cutoffs, cutoff)
	return nil
}

type mockInventoryClient struct {
	mu           sync.Mutex
	products     []model.Product
	movements    []model.StockMovement
	productsErr  error
	movementsErr error
	calls        int
}

func (m *mockInventoryClient) FetchProducts(_ context.Context) ([]model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.productsErr != nil {
		return nil, m.productsErr
	}
	return m.products, nil
}

func (m *mockInventoryClient) FetchMovements(_ context.Context, _ time.Time) ([]model.StockMovement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.movementsErr != nil {
		return nil, m.movementsErr
	}
	return m.movements, nil
}

func (m *mockInventoryClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func fixedClock() func() time.Time {
	return func() time.Time { return fixedNow }
}
