package domain

import "time"

// ShipmentStatus moves along pending -> created -> cancelled.
type ShipmentStatus string

const (
	ShipmentPending   ShipmentStatus = "pending"
	ShipmentCreated   ShipmentStatus = "created"
	ShipmentCancelled ShipmentStatus = "cancelled"
)

// ServiceType distinguishes home delivery from carrier pickup points.
type ServiceType string

const (
	StandardDelivery ServiceType = "standard_delivery"
	PickupPoint      ServiceType = "pickup_point"
)

// Shipment is the shipping intent recorded at checkout, 1:1 with an Order.
// CarrierShipmentID stays nil until the carrier accepts the shipment; status
// created requires it to be set.
type Shipment struct {
	ID                int64               `json:"id"`
	OrderID           int64               `json:"orderId"`
	RateID            string              `json:"rateId"`
	ServiceType       ServiceType         `json:"serviceType"`
	PickupPointID     *string             `json:"pickupPointId,omitempty"`
	CostCents         int64               `json:"costCents"`
	Destination       ShipmentDestination `json:"destination"`
	Recipient         ShipmentRecipient   `json:"recipient"`
	Status            ShipmentStatus      `json:"status"`
	CarrierShipmentID *string             `json:"carrierShipmentId,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
}

type ShipmentDestination struct {
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`
	Street       string `json:"street,omitempty"`
	StreetNumber string `json:"streetNumber,omitempty"`
	StreetExtras string `json:"streetExtras,omitempty"`
}

type ShipmentRecipient struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Document string `json:"document"`
}
