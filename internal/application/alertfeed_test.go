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

func alertIDs(alerts []model.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestComputeProductAlerts(t *testing.T) {
	settings := model.DefaultSettings()

	tests := []struct {
		name     string
		product  model.Product
		wantID   []string
		wantType []model.AlertType
	}{
		{
			name:    "healthy product raises nothing",
			product: model.Product{ID: "1", Name: "Rice", Quantity: "50", ExpirationDate: daysFromNow(90)},
		},
		{
			name:     "expired",
			product:  model.Product{ID: "2", Name: "Milk", Quantity: "50", ExpirationDate: daysFromNow(-2)},
			wantID:   []string{"expired-2"},
			wantType: []model.AlertType{model.AlertTypeError},
		},
		{
			name:     "critical expiry is an error",
			product:  model.Product{ID: "3", Name: "Bread", Quantity: "50", ExpirationDate: daysFromNow(3)},
			wantID:   []string{"expiring-3"},
			wantType: []model.AlertType{model.AlertTypeError},
		},
		{
			name:     "warning expiry",
			product:  model.Product{ID: "4", Name: "Cheese", Quantity: "50", ExpirationDate: daysFromNow(20)},
			wantID:   []string{"expiring-4"},
			wantType: []model.AlertType{model.AlertTypeWarning},
		},
		{
			name:     "out of stock",
			product:  model.Product{ID: "5", Name: "Salt", Quantity: "0"},
			wantID:   []string{"out-of-stock-5"},
			wantType: []model.AlertType{model.AlertTypeError},
		},
		{
			name:     "non-numeric quantity counts as zero",
			product:  model.Product{ID: "6", Name: "Sugar", Quantity: "n/a"},
			wantID:   []string{"out-of-stock-6"},
			wantType: []model.AlertType{model.AlertTypeError},
		},
		{
			name:     "low stock",
			product:  model.Product{ID: "7", Name: "Tea", Quantity: "4"},
			wantID:   []string{"low-stock-7"},
			wantType: []model.AlertType{model.AlertTypeWarning},
		},
		{
			name:    "negative quantity raises nothing",
			product: model.Product{ID: "8", Name: "Coffee", Quantity: "-2"},
		},
		{
			name:     "expiry and stock together",
			product:  model.Product{ID: "9", Name: "Eggs", Quantity: "2", ExpirationDate: daysFromNow(-1)},
			wantID:   []string{"expired-9", "low-stock-9"},
			wantType: []model.AlertType{model.AlertTypeError, model.AlertTypeWarning},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := application.ComputeProductAlerts(tt.product, settings, fixedNow)

			require.Len(t, got, len(tt.wantID))
			for i, a := range got {
				assert.Equal(t, tt.wantID[i], a.ID)
				assert.Equal(t, tt.wantType[i], a.Type)
				assert.Equal(t, tt.product.Name, a.ProductName)
				assert.NoError(t, a.Details.Validate())
			}
		})
	}
}

func TestComputeProductAlerts_Messages(t *testing.T) {
	settings := model.DefaultSettings()

	got := application.ComputeProductAlerts(
		model.Product{ID: "1", Name: "Tea", Quantity: "4", ExpirationDate: daysFromNow(1)}, settings, fixedNow)
	require.Len(t, got, 2)
	assert.Equal(t, "Expires in 1 day", got[0].Message)
	assert.Equal(t, "Only 4 left in stock", got[1].Message)

	got = application.ComputeProductAlerts(
		model.Product{ID: "2", Name: "Jam", Quantity: "40", ExpirationDate: daysFromNow(-3)}, settings, fixedNow)
	require.Len(t, got, 1)
	assert.Equal(t, "Expired 3 days ago", got[0].Message)
}

func TestComputeProductAlerts_Toggles(t *testing.T) {
	product := model.Product{ID: "1", Name: "Eggs", Quantity: "0", ExpirationDate: daysFromNow(-1)}

	s := model.DefaultSettings()
	s.ExpiryAlertsEnabled = false
	assert.Equal(t, []string{"out-of-stock-1"}, alertIDs(application.ComputeProductAlerts(product, s, fixedNow)))

	s = model.DefaultSettings()
	s.LowStockAlertsEnabled = false
	assert.Equal(t, []string{"expired-1"}, alertIDs(application.ComputeProductAlerts(product, s, fixedNow)))
}

func TestComputeMovementAlert(t *testing.T) {
	settings := model.DefaultSettings()
	base := model.StockMovement{ID: "m1", ProductID: "p1", ProductName: "Flour", Reason: "restock", OccurredAt: fixedNow}

	tests := []struct {
		name  string
		delta int
		want  bool
	}{
		{"large inbound", 25, true},
		{"large outbound", -12, true},
		{"exactly threshold", 10, true},
		{"below threshold", 9, false},
		{"zero", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base
			m.Delta = tt.delta

			alert, ok := application.ComputeMovementAlert(m, settings)
			assert.Equal(t, tt.want, ok)
			if ok {
				assert.Equal(t, "movement-m1", alert.ID)
				assert.Equal(t, model.AlertTypeInfo, alert.Type)
				assert.Equal(t, "p1", alert.ProductID)
			}
		})
	}

	disabled := settings
	disabled.MovementAlertsEnabled = false
	m := base
	m.Delta = 100
	_, ok := application.ComputeMovementAlert(m, disabled)
	assert.False(t, ok)
}

func newTestFeed(products []model.Product, movements []model.StockMovement) (*application.AlertFeed, *application.AlertStore, *mockMovementStore) {
	ps := &mockProductStore{products: products}
	ms := &mockMovementStore{movements: movements}
	settings := application.NewSettingsService(newMockKVStore(), nil).WithClock(fixedClock())
	settings.Load(context.Background())
	store := newTestAlertStore(newMockKVStore())

	feed := application.NewAlertFeed(ps, ms, settings, store).WithClock(fixedClock())
	return feed, store, ms
}

func TestAlertFeed_ActiveAlerts_Ordering(t *testing.T) {
	feed, _, _ := newTestFeed(
		[]model.Product{
			{ID: "1", Name: "Bread", Quantity: "5"},
			{ID: "2", Name: "Apples", Quantity: "0"},
			{ID: "3", Name: "Cheese", Quantity: "50", ExpirationDate: daysFromNow(-1)},
			{ID: "4", Name: "Apples", Quantity: "3"},
		},
		[]model.StockMovement{
			{ID: "m1", ProductID: "1", ProductName: "Bread", Delta: -20, OccurredAt: fixedNow.Add(-time.Hour)},
			{ID: "m0", ProductID: "9", ProductName: "Old", Delta: 50, OccurredAt: fixedNow.Add(-48 * time.Hour)},
		},
	)

	alerts, err := feed.ActiveAlerts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"out-of-stock-2",
		"expired-3",
		"low-stock-4",
		"low-stock-1",
		"movement-m1",
	}, alertIDs(alerts))
}

func TestAlertFeed_ActiveAlerts_ExcludesDismissed(t *testing.T) {
	feed, store, _ := newTestFeed(
		[]model.Product{
			{ID: "1", Name: "Bread", Quantity: "5"},
			{ID: "2", Name: "Apples", Quantity: "0"},
		},
		nil,
	)
	ctx := context.Background()

	require.NoError(t, store.DismissAlert(ctx, "out-of-stock-2", model.AlertTypeError, "Apples", nil))

	alerts, err := feed.ActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"low-stock-1"}, alertIDs(alerts))

	store.ClearDismissedAlerts(ctx)
	alerts, err = feed.ActiveAlerts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"out-of-stock-2", "low-stock-1"}, alertIDs(alerts))
}

func TestAlertFeed_ActiveAlerts_MovementStoreFailure(t *testing.T) {
	feed, _, ms := newTestFeed([]model.Product{{ID: "1", Name: "Bread", Quantity: "0"}}, nil)
	ms.listErr = errors.New("table locked")

	alerts, err := feed.ActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"out-of-stock-1"}, alertIDs(alerts))
}

func TestAlertFeed_ActiveAlerts_ProductStoreFailure(t *testing.T) {
	ps := &mockProductStore{listErr: errors.New("no such table")}
	settings := application.NewSettingsService(newMockKVStore(), nil)
	feed := application.NewAlertFeed(ps, nil, settings, newTestAlertStore(newMockKVStore()))

	_, err := feed.ActiveAlerts(context.Background())
	require.Error(t, err)
}

func TestAlertFeed_ActiveAlerts_Empty(t *testing.T) {
	feed, _, _ := newTestFeed(nil, nil)

	alerts, err := feed.ActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, alerts)
	assert.Empty(t, alerts)
}
