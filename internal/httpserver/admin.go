package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const adminCookieName = "admin_token"

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler(svc AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		token, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

func verifyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"username": c.GetString("admin_user")})
}

// requireAdmin accepts the token either as a bearer header or as the cookie
// the admin frontend sets after login.
func requireAdmin(svc AdminService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			if cookie, err := c.Cookie(adminCookieName); err == nil {
				token = cookie
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		username, err := svc.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set("admin_user", username)
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
