package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// Index returns a handler for GET /, a service self-description for
// humans poking at the endpoint.
func Index() gin.HandlerFunc {
	hostname, _ := os.Hostname()
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service_name": "screenberry",
			"description":  "Screenshot web page and extract text",
			"backend":      hostname,
			"version":      Version,
		})
	}
}
