package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// CustomLoggerMiddleware logs each HTTP request in simple text form on
// stdout, separate from the structured application log.
func CustomLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		userID := "-"
		if id, exists := c.Get("userID"); exists {
			if s, ok := id.(string); ok && s != "" {
				userID = s
			}
		}

		fmt.Printf("[API] %s | %s | %d | %s | %s | User: %s\n",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			latency.String(),
			c.ClientIP(),
			userID,
		)
	}
}
