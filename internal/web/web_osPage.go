package web

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-uaecho/internal/models"
)

// osPageTemplate is parsed with html/template so the User-Agent is escaped
// for the HTML text context.
const osPageTemplate = `<h1>Welcome, your connection is from a {{.UserAgent}} based system.</h1>`

// OSPageData represents data for the os page
type OSPageData struct {
	UserAgent string
}

// clientInfo extracts the User-Agent from the request.
// A header sent with an empty value still counts as present.
func clientInfo(r *http.Request) models.ClientInfo {
	values := r.Header.Values("User-Agent")
	if len(values) == 0 {
		return models.ClientInfo{}
	}
	return models.ClientInfo{UserAgent: values[0], Present: true}
}

// osPage echoes the caller's User-Agent ("/os")
func (s *WebServer) osPage(c *gin.Context) {
	data := OSPageData{UserAgent: clientInfo(c.Request).Display()}

	var buf bytes.Buffer
	if err := s.osTmpl.Execute(&buf, data); err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	c.Data(http.StatusOK, htmlContentType, buf.Bytes())
}
