package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/gateway/carrier"
	"storefront/internal/gateway/mercadopago"
)

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// upstreamStatus reports whether err is a rejection from the payment provider
// or the carrier. Those surface as 502 so the frontend can tell a storefront
// bug from an upstream outage.
func upstreamStatus(err error) (int, bool) {
	var mpErr *mercadopago.APIError
	if errors.As(err, &mpErr) {
		return http.StatusBadGateway, true
	}
	var carrierErr *carrier.APIError
	if errors.As(err, &carrierErr) {
		return http.StatusBadGateway, true
	}
	return 0, false
}

// respondServiceError maps common error shapes; handlers special-case their
// own sentinels before falling through to this.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(c, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrAlreadyExists):
		respondError(c, http.StatusConflict, "already exists")
	default:
		if status, ok := upstreamStatus(err); ok {
			respondError(c, status, err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
