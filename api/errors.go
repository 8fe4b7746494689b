package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkuznecov/ticketgate/internal/domain"
)

// writeError maps service errors onto the gateway's error contract:
// unavailability becomes 503 naming the downstream, not-found errors become
// 404, everything else is a 500.
func writeError(c *gin.Context, err error) {
	var unavailable *domain.ServiceUnavailableError
	switch {
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": unavailable.Service + " unavailable"})
	case errors.Is(err, domain.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Flight not found"})
	case errors.Is(err, domain.ErrTicketNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
	case errors.Is(err, domain.ErrPrivilegeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Privilege not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// RequireUserName extracts the X-User-Name header every user-scoped endpoint
// depends on, rejecting the request when it is missing.
func RequireUserName() gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.GetHeader("X-User-Name")
		if username == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "X-User-Name: header is required"})
			return
		}
		c.Set("username", username)
		c.Next()
	}
}

func userName(c *gin.Context) string {
	return c.GetString("username")
}
