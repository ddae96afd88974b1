package model

// ShipmentStatusWorking and ShipmentStatusReadyToShip are the inbound shipment
// states the shipments job relays.
const (
	ShipmentStatusWorking     = "WORKING"
	ShipmentStatusReadyToShip = "READY_TO_SHIP"
)

// ShipmentItem is one line of an inbound shipment.
type ShipmentItem struct {
	ShipmentID            string
	SellerSKU             string
	FulfillmentNetworkSKU string
	QuantityShipped       string
	QuantityReceived      string
	QuantityInCase        string
	PrepInstruction       string
	PrepOwner             string
}

// ShipmentItemHeader is the column order of the shipment TSV export.
var ShipmentItemHeader = []string{
	"ShipmentId",
	"SellerSKU",
	"FulfillmentNetworkSKU",
	"QuantityShipped",
	"QuantityReceived",
	"QuantityInCase",
	"PrepInstruction",
	"PrepOwner",
}

// Row returns the item in ShipmentItemHeader order.
func (i ShipmentItem) Row() []string {
	return []string{
		i.ShipmentID,
		i.SellerSKU,
		i.FulfillmentNetworkSKU,
		i.QuantityShipped,
		i.QuantityReceived,
		i.QuantityInCase,
		i.PrepInstruction,
		i.PrepOwner,
	}
}
