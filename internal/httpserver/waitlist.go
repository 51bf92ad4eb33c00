package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	waitlistsvc "storefront/internal/service/waitlist"
)

type waitlistRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Province string `json:"province" binding:"required"`
}

type waitlistEntryResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Province  string    `json:"province"`
	CreatedAt time.Time `json:"created_at"`
}

func joinWaitlistHandler(svc WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req waitlistRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		err := svc.Join(c.Request.Context(), req.Name, req.Email, req.Province)
		switch {
		case err == nil:
			c.JSON(http.StatusCreated, gin.H{"status": "joined"})
		case errors.Is(err, waitlistsvc.ErrInvalidEntry), errors.Is(err, waitlistsvc.ErrUnknownProvince):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			respondServiceError(c, err)
		}
	}
}

func listWaitlistHandler(svc WaitlistService) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := svc.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		count, err := svc.Count(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		out := make([]waitlistEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, waitlistEntryResponse{
				ID:        e.ID,
				Name:      e.Name,
				Email:     e.Email,
				Province:  e.Province,
				CreatedAt: e.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"count": count, "entries": out})
	}
}
