package middleware

import (
	"log"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/neko-san1432/citizenlink-insights-go/internal/report"
	"github.com/neko-san1432/citizenlink-insights-go/pkg/response"
)

// Recovery turns panics into 500 responses and reports them to Sentry
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[HTTP] Error: panic serving %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, r, debug.Stack())
				report.RecoveredPanic(r, c.Request.Method, c.FullPath())
				response.InternalError(c, "Internal server error")
				c.Abort()
			}
		}()

		c.Next()
	}
}
