package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports each named dependency and answers 503 when any is down.
func Health(checks map[string]func(context.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{"status": "ok"}
		status := http.StatusOK
		for name, check := range checks {
			ok := check(c.Request.Context())
			body[name] = ok
			if !ok {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
			}
		}
		c.JSON(status, body)
	}
}
