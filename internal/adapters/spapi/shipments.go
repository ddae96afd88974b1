package spapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
	"github.com/target/report-relay/internal/core"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

const shipmentsBase = "/fba/inbound/v0/shipments"

// Payload extraction expressions for the inbound v0 responses.
const (
	shipmentIDsExpr   = "payload.ShipmentData[].ShipmentId"
	shipmentItemsExpr = "payload.ItemData[].{" +
		"ShipmentId: ShipmentId, " +
		"SellerSKU: SellerSKU, " +
		"FulfillmentNetworkSKU: FulfillmentNetworkSKU, " +
		"QuantityShipped: QuantityShipped, " +
		"QuantityReceived: QuantityReceived, " +
		"QuantityInCase: QuantityInCase, " +
		"PrepInstruction: PrepDetailsList[0].PrepInstruction, " +
		"PrepOwner: PrepDetailsList[0].PrepOwner}"
)

var _ core.ShipmentAPI = (*Client)(nil)

// ListShipments returns the ids of inbound shipments in any of statuses.
func (c *Client) ListShipments(ctx context.Context, token string, statuses []string) ([]string, error) {
	query := url.Values{
		"ShipmentStatusList": []string{strings.Join(statuses, ",")},
		"QueryType":          []string{"SHIPMENT"},
	}
	if c.marketplaceID != "" {
		query.Set("MarketplaceId", c.marketplaceID)
	}

	data, _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   shipmentsBase,
		query:  query,
		token:  token,
	})
	if err != nil {
		return nil, fetchError(err, "list shipments")
	}

	result, err := search(shipmentIDsExpr, data)
	if err != nil {
		return nil, apperrors.FetchError(err, "decode shipment list", false)
	}

	raw, _ := result.([]any)
	ids := make([]string, 0, len(raw))
	for _, v := range raw {
		if id := stringify(v); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListShipmentItems returns the item lines of one shipment.
func (c *Client) ListShipmentItems(ctx context.Context, token, shipmentID string) ([]model.ShipmentItem, error) {
	query := url.Values{}
	if c.marketplaceID != "" {
		query.Set("MarketplaceId", c.marketplaceID)
	}

	data, _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   shipmentsBase + "/" + url.PathEscape(shipmentID) + "/items",
		query:  query,
		token:  token,
	})
	if err != nil {
		return nil, fetchError(err, "list shipment items "+shipmentID)
	}

	result, err := search(shipmentItemsExpr, data)
	if err != nil {
		return nil, apperrors.FetchError(err, "decode shipment items "+shipmentID, false)
	}

	raw, _ := result.([]any)
	items := make([]model.ShipmentItem, 0, len(raw))
	for _, v := range raw {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		items = append(items, model.ShipmentItem{
			ShipmentID:            stringify(fields["ShipmentId"]),
			SellerSKU:             stringify(fields["SellerSKU"]),
			FulfillmentNetworkSKU: stringify(fields["FulfillmentNetworkSKU"]),
			QuantityShipped:       stringify(fields["QuantityShipped"]),
			QuantityReceived:      stringify(fields["QuantityReceived"]),
			QuantityInCase:        stringify(fields["QuantityInCase"]),
			PrepInstruction:       stringify(fields["PrepInstruction"]),
			PrepOwner:             stringify(fields["PrepOwner"]),
		})
	}
	return items, nil
}

func search(expr string, body []byte) (any, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	out, err := jmespath.Search(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return out, nil
}

// stringify renders a decoded JSON scalar the way it appeared on the wire.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
