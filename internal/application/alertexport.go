package application

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ericfisherdev/stockpanel/internal/domain/model"
)

// historyCSVHeader is the fixed column layout consumed by reporting.
var historyCSVHeader = []string{"Date", "Type", "Product Name", "Details"}

// WriteHistoryCSV writes entries as CSV in the order given, one row per entry,
// with Details encoded as a JSON object string.
func WriteHistoryCSV(w io.Writer, entries []model.AlertHistoryEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(historyCSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		details := e.Details
		if details == nil {
			details = model.AlertDetails{}
		}
		encoded, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("encode details for %q: %w", e.ID, err)
		}

		row := []string{
			e.DismissedAt.UTC().Format(time.RFC3339),
			string(e.Type),
			e.ProductName,
			string(encoded),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for %q: %w", e.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
