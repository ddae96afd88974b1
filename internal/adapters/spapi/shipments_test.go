package spapi

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/target/report-relay/internal/domain/model"
	apperrors "github.com/target/report-relay/internal/errors"
)

func TestListShipments(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fba/inbound/v0/shipments", r.URL.Path)
		assert.Equal(t, "WORKING,READY_TO_SHIP", r.URL.Query().Get("ShipmentStatusList"))
		assert.Equal(t, "SHIPMENT", r.URL.Query().Get("QueryType"))
		assert.Equal(t, "ATVPDKIKX0DER", r.URL.Query().Get("MarketplaceId"))
		_, _ = io.WriteString(w, `{"payload":{"ShipmentData":[
			{"ShipmentId":"FBA1","ShipmentStatus":"WORKING"},
			{"ShipmentId":"FBA2","ShipmentStatus":"READY_TO_SHIP"}
		]}}`)
	}))

	ids, err := c.ListShipments(context.Background(), "tok",
		[]string{model.ShipmentStatusWorking, model.ShipmentStatusReadyToShip})
	require.NoError(t, err)
	assert.Equal(t, []string{"FBA1", "FBA2"}, ids)
}

func TestListShipments_EmptyPayload(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"payload":{}}`)
	}))

	ids, err := c.ListShipments(context.Background(), "tok", []string{model.ShipmentStatusWorking})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListShipmentItems(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fba/inbound/v0/shipments/FBA1/items", r.URL.Path)
		_, _ = io.WriteString(w, `{"payload":{"ItemData":[
			{
				"ShipmentId":"FBA1","SellerSKU":"SKU-1","FulfillmentNetworkSKU":"X001",
				"QuantityShipped":12,"QuantityReceived":0,"QuantityInCase":6,
				"PrepDetailsList":[{"PrepInstruction":"Labeling","PrepOwner":"SELLER"},{"PrepInstruction":"Taping","PrepOwner":"AMAZON"}]
			},
			{
				"ShipmentId":"FBA1","SellerSKU":"SKU-2","FulfillmentNetworkSKU":"X002",
				"QuantityShipped":1,"QuantityReceived":1
			}
		]}}`)
	}))

	items, err := c.ListShipmentItems(context.Background(), "tok", "FBA1")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, model.ShipmentItem{
		ShipmentID:            "FBA1",
		SellerSKU:             "SKU-1",
		FulfillmentNetworkSKU: "X001",
		QuantityShipped:       "12",
		QuantityReceived:      "0",
		QuantityInCase:        "6",
		PrepInstruction:       "Labeling",
		PrepOwner:             "SELLER",
	}, items[0])
	assert.Empty(t, items[1].PrepInstruction)
	assert.Empty(t, items[1].QuantityInCase)
}

func TestListShipmentItems_ExpiredToken(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := c.ListShipmentItems(context.Background(), "tok", "FBA1")
	require.Error(t, err)
	assert.True(t, apperrors.IsTokenExpired(err))
}
