package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
	ordersvc "storefront/internal/service/order"
)

type orderResponse struct {
	ID                int64     `json:"id"`
	TotalCents        int64     `json:"total_cents"`
	Status            string    `json:"status"`
	ExternalReference string    `json:"external_reference"`
	CreatedAt         time.Time `json:"created_at"`
}

type orderItemResponse struct {
	ID             int64  `json:"id"`
	ProductID      string `json:"product_id"`
	Title          string `json:"title"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := svc.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		out := make([]orderResponse, 0, len(orders))
		for _, o := range orders {
			out = append(out, orderResponse{
				ID:                o.ID,
				TotalCents:        o.TotalCents,
				Status:            string(o.Status),
				ExternalReference: o.ExternalReference,
				CreatedAt:         o.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func orderItemsHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		items, err := svc.Items(c.Request.Context(), orderID)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		out := make([]orderItemResponse, 0, len(items))
		for _, it := range items {
			out = append(out, orderItemResponse{
				ID:             it.ID,
				ProductID:      it.ProductID,
				Title:          it.Title,
				Quantity:       it.Quantity,
				UnitPriceCents: it.UnitPriceCents,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

type cancelShipmentResponse struct {
	Cancellation *carrier.CancelResult     `json:"cancellation"`
	Refund       *mercadopago.RefundResult `json:"refund,omitempty"`
	RefundError  string                    `json:"refund_error,omitempty"`
}

func cancelShipmentHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := orderIDParam(c)
		if !ok {
			return
		}
		result, err := svc.CancelShipment(c.Request.Context(), orderID)
		if err != nil {
			respondOrderError(c, err)
			return
		}
		c.JSON(http.StatusOK, cancelShipmentResponse{
			Cancellation: result.Cancellation,
			Refund:       result.Refund,
			RefundError:  result.RefundError,
		})
	}
}

func orderIDParam(c *gin.Context) (int64, bool) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid order id")
		return 0, false
	}
	return orderID, true
}

func respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ordersvc.ErrOrderNotFound), errors.Is(err, ordersvc.ErrShipmentNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, ordersvc.ErrShipmentNotCreated):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	default:
		respondServiceError(c, err)
	}
}
