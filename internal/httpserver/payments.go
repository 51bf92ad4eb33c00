package httpserver

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	checkoutsvc "storefront/internal/service/checkout"
	paymentsvc "storefront/internal/service/payment"
)

type checkoutRequest struct {
	Items []struct {
		ProductID string `json:"product_id" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
	Shipping struct {
		RateID        string  `json:"rate_id" binding:"required"`
		ServiceType   string  `json:"service_type" binding:"required"`
		PickupPointID *string `json:"pickup_point_id"`
		CostCents     int64   `json:"cost_cents" binding:"required,min=1"`
		Destination   struct {
			City         string `json:"city" binding:"required"`
			State        string `json:"state" binding:"required"`
			Zipcode      string `json:"zipcode" binding:"required"`
			Street       string `json:"street"`
			StreetNumber string `json:"street_number"`
			StreetExtras string `json:"street_extras"`
		} `json:"destination" binding:"required"`
		Recipient struct {
			Name     string `json:"name" binding:"required"`
			Email    string `json:"email" binding:"required,email"`
			Phone    string `json:"phone"`
			Document string `json:"document"`
		} `json:"recipient" binding:"required"`
	} `json:"shipping" binding:"required"`
}

func (r checkoutRequest) toService() checkoutsvc.Request {
	req := checkoutsvc.Request{
		Shipping: checkoutsvc.ShippingSelection{
			RateID:        r.Shipping.RateID,
			ServiceType:   domain.ServiceType(r.Shipping.ServiceType),
			PickupPointID: r.Shipping.PickupPointID,
			CostCents:     r.Shipping.CostCents,
			Destination: domain.ShipmentDestination{
				City:         r.Shipping.Destination.City,
				State:        r.Shipping.Destination.State,
				Zipcode:      r.Shipping.Destination.Zipcode,
				Street:       r.Shipping.Destination.Street,
				StreetNumber: r.Shipping.Destination.StreetNumber,
				StreetExtras: r.Shipping.Destination.StreetExtras,
			},
			Recipient: domain.ShipmentRecipient{
				Name:     r.Shipping.Recipient.Name,
				Email:    r.Shipping.Recipient.Email,
				Phone:    r.Shipping.Recipient.Phone,
				Document: r.Shipping.Recipient.Document,
			},
		},
	}
	for _, item := range r.Items {
		req.Items = append(req.Items, checkoutsvc.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return req
}

type checkoutResponse struct {
	OrderID           int64  `json:"order_id"`
	ExternalReference string `json:"external_reference"`
	PreferenceID      string `json:"preference_id"`
	InitPoint         string `json:"init_point"`
}

func checkoutHandler(svc CheckoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		result, err := svc.Checkout(c.Request.Context(), req.toService())
		if err != nil {
			respondCheckoutError(c, err)
			return
		}
		c.JSON(http.StatusCreated, checkoutResponse{
			OrderID:           result.OrderID,
			ExternalReference: result.ExternalReference,
			PreferenceID:      result.PreferenceID,
			InitPoint:         result.InitPoint,
		})
	}
}

func respondCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkoutsvc.ErrEmptyCart),
		errors.Is(err, checkoutsvc.ErrItemNotFound),
		errors.Is(err, checkoutsvc.ErrItemUnavailable),
		errors.Is(err, checkoutsvc.ErrLimitExceeded),
		errors.Is(err, checkoutsvc.ErrShippingRequired):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondServiceError(c, err)
	}
}

type webhookRequest struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// webhookHandler receives provider notifications. Anything the service
// classifies as ignorable is acknowledged with 200 so the provider stops
// retrying; unknown orders return 404 so it retries later.
func webhookHandler(svc PaymentService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "malformed notification")
			return
		}
		if req.Type == "payment" && req.Data.ID == "" {
			respondError(c, http.StatusBadRequest, "missing payment id")
			return
		}

		err := svc.Process(c.Request.Context(), paymentsvc.Notification{
			Type:      req.Type,
			PaymentID: req.Data.ID,
		})
		switch {
		case err == nil:
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		case errors.Is(err, paymentsvc.ErrIgnored):
			c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		case errors.Is(err, paymentsvc.ErrOrderNotFound):
			respondError(c, http.StatusNotFound, err.Error())
		default:
			logger.Printf("webhook: processing failed payment_id=%s error=%v", req.Data.ID, err)
			if status, ok := upstreamStatus(err); ok {
				respondError(c, status, "provider unavailable")
				return
			}
			respondError(c, http.StatusInternalServerError, "internal error")
		}
	}
}
