package orderserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	customersports "github.com/vuhk2k6/web-order-sub000/internal/domains/customers/ports"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "session"

	customerKey = "orderserver.customer"
)

// SessionMiddleware attaches the signed-in customer, if any, to the request.
// Unknown or expired tokens make the request anonymous rather than failing.
func SessionMiddleware(customers customersports.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if customers == nil {
			c.Next()
			return
		}
		if token := sessionToken(c); token != "" {
			if customerID, err := customers.Authenticate(c.Request.Context(), token); err == nil {
				c.Set(customerKey, customerID)
			}
		}
		c.Next()
	}
}

// CustomerID returns the authenticated customer or "".
func CustomerID(c *gin.Context) string {
	return c.GetString(customerKey)
}

func sessionToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}
