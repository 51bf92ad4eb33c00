// Package carrier wraps the shipping-carrier HTTP API: rate quoting,
// shipment creation after payment approval, and shipment cancellation.
package carrier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"

	"storefront/internal/domain"
)

// Config carries the carrier account credentials, injected at startup.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	AccountID int
	OriginID  int
}

type Client struct {
	cfg    Config
	httpc  *http.Client
	logger *log.Logger
}

func New(cfg Config, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

// APIError is a rejection from the carrier itself, as opposed to a transport
// failure. Callers treat it as an upstream (bad gateway) condition.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("carrier: status %d: %s", e.StatusCode, e.Message)
}

type Destination struct {
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
}

// Item identifies one physical unit to ship; quantities are expressed by
// repeating the SKU.
type Item struct {
	SKU string `json:"sku"`
}

type QuoteRequest struct {
	Destination        Destination
	Items              []Item
	DeclaredValueCents int64
}

type PickupPointInfo struct {
	PointID  string  `json:"point_id"`
	Name     string  `json:"name"`
	Address  string  `json:"address"`
	City     string  `json:"city"`
	State    string  `json:"state"`
	Zipcode  string  `json:"zipcode"`
	Distance float64 `json:"distance,omitempty"`
	Hours    string  `json:"hours,omitempty"`
}

type EstimatedDelivery struct {
	MinDays       int    `json:"min_days"`
	MaxDays       int    `json:"max_days"`
	EstimatedDate string `json:"estimated_date,omitempty"`
}

// RateOption is one shipping alternative offered for a quote.
type RateOption struct {
	RateID            string             `json:"rate_id"`
	CarrierName       string             `json:"carrier_name"`
	CarrierLogo       string             `json:"carrier_logo,omitempty"`
	ServiceType       domain.ServiceType `json:"service_type"`
	ServiceName       string             `json:"service_name,omitempty"`
	PriceCents        int64              `json:"price_cents"`
	PriceInclTaxCents int64              `json:"price_incl_tax_cents"`
	EstimatedDelivery EstimatedDelivery  `json:"estimated_delivery"`
	PickupPoints      []PickupPointInfo  `json:"pickup_points,omitempty"`
	Tags              []string           `json:"tags,omitempty"`
}

type quoteWire struct {
	AccountID     int         `json:"account_id"`
	OriginID      int         `json:"origin_id"`
	DeclaredValue float64     `json:"declared_value"`
	Destination   Destination `json:"destination"`
	Items         []Item      `json:"items"`
}

type quoteResponseWire struct {
	AllResults []rateOptionWire `json:"all_results"`
	Message    string           `json:"message"`
	Error      string           `json:"error"`
}

type rateOptionWire struct {
	Rate struct {
		ID       string `json:"id"`
		TariffID string `json:"tariff_id"`
	} `json:"rate"`
	Carrier struct {
		Name string `json:"name"`
		Logo string `json:"logo"`
	} `json:"carrier"`
	ServiceType struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"service_type"`
	Amounts struct {
		Price        float64 `json:"price"`
		PriceInclTax float64 `json:"price_incl_tax"`
	} `json:"amounts"`
	DeliveryTime struct {
		Min               int    `json:"min"`
		Max               int    `json:"max"`
		EstimatedDelivery string `json:"estimated_delivery"`
	} `json:"delivery_time"`
	PickupPoints []pickupPointWire `json:"pickup_points"`
	Tags         []string          `json:"tags"`
}

type pickupPointWire struct {
	PointID     string `json:"point_id"`
	Description string `json:"description"`
	Hours       string `json:"hours"`
	Location    struct {
		Street       string `json:"street"`
		StreetNumber string `json:"street_number"`
		City         string `json:"city"`
		State        string `json:"state"`
		Zipcode      string `json:"zipcode"`
		Geolocation  struct {
			Distance float64 `json:"distance"`
		} `json:"geolocation"`
	} `json:"location"`
}

// Quote asks the carrier for every shipping alternative to the destination.
func (c *Client) Quote(ctx context.Context, req QuoteRequest) ([]RateOption, error) {
	body := quoteWire{
		AccountID:     c.cfg.AccountID,
		OriginID:      c.cfg.OriginID,
		DeclaredValue: centsToUnits(req.DeclaredValueCents),
		Destination:   req.Destination,
		Items:         req.Items,
	}

	var resp quoteResponseWire
	if err := c.post(ctx, "/shipments/quote", body, &resp); err != nil {
		return nil, err
	}

	options := make([]RateOption, 0, len(resp.AllResults))
	for _, w := range resp.AllResults {
		options = append(options, fromWire(w))
	}
	return options, nil
}

func fromWire(w rateOptionWire) RateOption {
	rateID := w.Rate.ID
	if rateID == "" {
		rateID = w.Rate.TariffID
	}
	serviceType := domain.ServiceType(w.ServiceType.Code)
	if serviceType == "" {
		if len(w.PickupPoints) > 0 {
			serviceType = domain.PickupPoint
		} else {
			serviceType = domain.StandardDelivery
		}
	}
	priceInclTax := w.Amounts.PriceInclTax
	if priceInclTax == 0 {
		priceInclTax = w.Amounts.Price
	}

	opt := RateOption{
		RateID:            rateID,
		CarrierName:       w.Carrier.Name,
		CarrierLogo:       w.Carrier.Logo,
		ServiceType:       serviceType,
		ServiceName:       w.ServiceType.Name,
		PriceCents:        unitsToCents(w.Amounts.Price),
		PriceInclTaxCents: unitsToCents(priceInclTax),
		EstimatedDelivery: EstimatedDelivery{
			MinDays:       w.DeliveryTime.Min,
			MaxDays:       w.DeliveryTime.Max,
			EstimatedDate: w.DeliveryTime.EstimatedDelivery,
		},
		Tags: w.Tags,
	}
	for _, pp := range w.PickupPoints {
		address := pp.Location.Street
		if pp.Location.StreetNumber != "" {
			address += " " + pp.Location.StreetNumber
		}
		opt.PickupPoints = append(opt.PickupPoints, PickupPointInfo{
			PointID:  pp.PointID,
			Name:     pp.Description,
			Address:  address,
			City:     pp.Location.City,
			State:    pp.Location.State,
			Zipcode:  pp.Location.Zipcode,
			Distance: pp.Location.Geolocation.Distance,
			Hours:    pp.Hours,
		})
	}
	return opt
}

type CreateShipmentRequest struct {
	ExternalID         string
	DeclaredValueCents int64
	ServiceType        domain.ServiceType
	Destination        domain.ShipmentDestination
	Recipient          domain.ShipmentRecipient
	Items              []Item
	PickupPointID      *string
}

type CreateShipmentResult struct {
	ShipmentID     string `json:"shipment_id"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

type createDestinationWire struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Document     string `json:"document"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zipcode      string `json:"zipcode"`
	Street       string `json:"street,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
	StreetExtras string `json:"street_extras,omitempty"`
}

type createShipmentWire struct {
	AccountID     int                   `json:"account_id"`
	OriginID      int                   `json:"origin_id"`
	DeclaredValue float64               `json:"declared_value"`
	ExternalID    string                `json:"external_id"`
	ServiceType   domain.ServiceType    `json:"service_type"`
	Destination   createDestinationWire `json:"destination"`
	Items         []Item                `json:"items"`
	PointID       string                `json:"point_id,omitempty"`
}

type createShipmentResponseWire struct {
	ID             string `json:"id"`
	ShipmentID     string `json:"shipment_id"`
	TrackingNumber string `json:"tracking_number"`
	Tracking       string `json:"tracking"`
	Message        string `json:"message"`
	Error          string `json:"error"`
}

// CreateShipment registers the shipment with the carrier once the order is
// paid. Street fields are only sent for home delivery; pickup orders send the
// chosen point instead.
func (c *Client) CreateShipment(ctx context.Context, req CreateShipmentRequest) (*CreateShipmentResult, error) {
	dest := createDestinationWire{
		Name:     req.Recipient.Name,
		Email:    req.Recipient.Email,
		Phone:    req.Recipient.Phone,
		Document: req.Recipient.Document,
		City:     req.Destination.City,
		State:    req.Destination.State,
		Zipcode:  req.Destination.Zipcode,
	}
	if req.ServiceType == domain.StandardDelivery {
		dest.Street = req.Destination.Street
		dest.StreetNumber = req.Destination.StreetNumber
		dest.StreetExtras = req.Destination.StreetExtras
	}

	body := createShipmentWire{
		AccountID:     c.cfg.AccountID,
		OriginID:      c.cfg.OriginID,
		DeclaredValue: centsToUnits(req.DeclaredValueCents),
		ExternalID:    req.ExternalID,
		ServiceType:   req.ServiceType,
		Destination:   dest,
		Items:         req.Items,
	}
	if req.ServiceType == domain.PickupPoint && req.PickupPointID != nil {
		body.PointID = *req.PickupPointID
	}

	var resp createShipmentResponseWire
	if err := c.post(ctx, "/shipments/", body, &resp); err != nil {
		return nil, err
	}

	id := resp.ID
	if id == "" {
		id = resp.ShipmentID
	}
	tracking := resp.TrackingNumber
	if tracking == "" {
		tracking = resp.Tracking
	}
	c.logger.Printf("carrier: shipment created external_id=%s shipment_id=%s", req.ExternalID, id)
	return &CreateShipmentResult{ShipmentID: id, TrackingNumber: tracking}, nil
}

type CancelResult struct {
	ShipmentID string `json:"shipment_id"`
	Status     string `json:"status"`
}

type cancelResponseWire struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CancelShipment asks the carrier to stop a previously created shipment.
func (c *Client) CancelShipment(ctx context.Context, carrierShipmentID string) (*CancelResult, error) {
	var resp cancelResponseWire
	if err := c.post(ctx, "/shipments/"+carrierShipmentID+"/cancel", struct{}{}, &resp); err != nil {
		return nil, err
	}
	status := resp.Status
	if status == "" {
		status = "cancelled"
	}
	c.logger.Printf("carrier: shipment cancelled shipment_id=%s status=%s", carrierShipmentID, status)
	return &CancelResult{ShipmentID: carrierShipmentID, Status: status}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Basic "+basicCredentials(c.cfg.APIKey, c.cfg.APISecret))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("carrier: %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("carrier: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("carrier: decode response: %w", err)
	}
	return nil
}

func basicCredentials(key, secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))
}

func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return "request rejected"
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}

func unitsToCents(units float64) int64 {
	return int64(math.Round(units * 100))
}
