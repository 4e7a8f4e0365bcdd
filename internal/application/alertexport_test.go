package application_test

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stockpanel/internal/application"
	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

func TestWriteHistoryCSV(t *testing.T) {
	entries := []model.AlertHistoryEntry{
		{
			ID:          "low-stock-1",
			Type:        model.AlertTypeWarning,
			ProductName: `Oat Milk, "Barista"`,
			DismissedAt: time.Date(2026, 3, 10, 14, 30, 0, 0, time.FixedZone("CET", 3600)),
			Details:     model.AlertDetails{"quantity": 3},
		},
		{
			ID:          "expired-2",
			Type:        model.AlertTypeError,
			ProductName: "Yogurt",
			DismissedAt: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, application.WriteHistoryCSV(&buf, entries))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Date", "Type", "Product Name", "Details"},
		{"2026-03-10T13:30:00Z", "warning", `Oat Milk, "Barista"`, `{"quantity":3}`},
		{"2026-03-09T08:00:00Z", "error", "Yogurt", `{}`},
	}, rows)
}

func TestWriteHistoryCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, application.WriteHistoryCSV(&buf, nil))

	assert.Equal(t, "Date,Type,Product Name,Details\n", buf.String())
}
