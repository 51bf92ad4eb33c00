package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/gateway/carrier"
	shippingsvc "storefront/internal/service/shipping"
)

type quoteRequest struct {
	Destination struct {
		City    string `json:"city" binding:"required"`
		State   string `json:"state" binding:"required"`
		Zipcode string `json:"zipcode" binding:"required"`
	} `json:"destination" binding:"required"`
	Items []struct {
		ID       string `json:"id" binding:"required"`
		Quantity int    `json:"quantity" binding:"required,min=1"`
	} `json:"items" binding:"required,min=1"`
}

func (r quoteRequest) toService() shippingsvc.QuoteRequest {
	req := shippingsvc.QuoteRequest{
		Destination: carrier.Destination{
			City:    r.Destination.City,
			State:   r.Destination.State,
			Zipcode: r.Destination.Zipcode,
		},
	}
	for _, item := range r.Items {
		req.Items = append(req.Items, shippingsvc.QuoteItem{
			ProductID: item.ID,
			Quantity:  item.Quantity,
		})
	}
	return req
}

func quoteHandler(svc ShippingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		option, err := svc.Cheapest(c.Request.Context(), req.toService())
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		c.JSON(http.StatusOK, option)
	}
}

func quoteOptionsHandler(svc ShippingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req quoteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		options, err := svc.Options(c.Request.Context(), req.toService())
		if err != nil {
			respondQuoteError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"options": options})
	}
}

func respondQuoteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shippingsvc.ErrNoDestination),
		errors.Is(err, shippingsvc.ErrNoItems),
		errors.Is(err, shippingsvc.ErrItemNotFound):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, shippingsvc.ErrNoRates):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondServiceError(c, err)
	}
}
