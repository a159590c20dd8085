// Package web provides the HTTP server and web interface for go-uaecho
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// homePage serves the embedded landing page ("/").
// The body never depends on the request.
func (s *WebServer) homePage(c *gin.Context) {
	c.Data(http.StatusOK, htmlContentType, s.indexPage)
}
