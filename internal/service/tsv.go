package service

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/target/report-relay/internal/domain/model"
)

// ShipmentTSV renders shipment items as a tab separated file with a header row.
func ShipmentTSV(items []model.ShipmentItem) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'
	w.UseCRLF = false

	if err := w.Write(model.ShipmentItemHeader); err != nil {
		return nil, fmt.Errorf("write shipment header: %w", err)
	}
	for _, item := range items {
		if err := w.Write(item.Row()); err != nil {
			return nil, fmt.Errorf("write shipment item %s: %w", item.SellerSKU, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush shipment tsv: %w", err)
	}
	return buf.Bytes(), nil
}
