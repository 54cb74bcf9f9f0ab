package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// corsMiddleware lets the browser frontend call the API from its own origin.
// With no configured origins every origin is allowed, which suits local
// development.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAny := len(allowed) == 0
	exact := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			allowAny = true
			continue
		}
		exact[strings.ToLower(origin)] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		headers := c.Writer.Header()

		switch {
		case allowAny:
			headers.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := exact[strings.ToLower(origin)]; ok {
				headers.Set("Access-Control-Allow-Origin", origin)
				headers.Add("Vary", "Origin")
			}
		}
		headers.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
