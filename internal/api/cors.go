package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// preflight answers OPTIONS with the fixed CORS header set for an endpoint.
func preflight(methods string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", methods)
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Status(http.StatusOK)
	}
}

func allowOrigin(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Next()
}
