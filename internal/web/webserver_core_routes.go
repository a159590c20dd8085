// Package web provides the HTTP server and web interface for go-uaecho
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/go-while/go-uaecho/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

const htmlContentType = "text/html; charset=utf-8"

// WebServer represents the web server
type WebServer struct {
	Router    *gin.Engine
	Config    *config.WebConfig
	StartTime time.Time // Track server start time for uptime calculations

	indexPage []byte             // pre-authored landing page, served as-is
	osTmpl    *template.Template // echo page, escapes the User-Agent
	registry  *prometheus.Registry
	metrics   *webMetrics

	mux        sync.Mutex
	httpServer *http.Server
}

// NewServer creates a new web server instance
func NewServer(webconfig *config.WebConfig) (*WebServer, error) {
	if err := webconfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid web config: %w", err)
	}

	if webconfig.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		// Set Gin to release mode for production
		gin.SetMode(gin.ReleaseMode)
	}

	indexPage, err := loadEmbeddedPage(indexPagePath)
	if err != nil {
		return nil, err
	}
	osTmpl, err := template.New("os").Parse(osPageTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse os page template: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics, err := newWebMetrics(registry)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	// Configure Gin to trust reverse proxy headers
	// Set trusted proxies for common reverse proxy setups (nginx, etc.)
	if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}); err != nil {
		return nil, fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	server := &WebServer{
		Router:    router,
		Config:    webconfig,
		indexPage: indexPage,
		osTmpl:    osTmpl,
		registry:  registry,
		metrics:   metrics,
	}

	router.Use(gin.Recovery())
	router.Use(server.ApacheLogFormat())
	router.Use(server.MetricsMiddleware()) // before secure, so SSL redirects are counted
	router.Use(secure.New(securityConfig(webconfig)))

	server.setupRoutes()
	return server, nil
}

// securityConfig builds the security headers based on SSL setup
func securityConfig(webconfig *config.WebConfig) secure.Config {
	secureConfig := secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; style-src 'unsafe-inline'",
	}

	// Only add SSL-specific headers if SSL is enabled on the application itself
	// (not when running behind a reverse proxy like nginx with SSL)
	if webconfig.SSL {
		secureConfig.SSLRedirect = true
		secureConfig.SSLProxyHeaders = map[string]string{"X-Forwarded-Proto": "https"}
		secureConfig.STSSeconds = 31536000
		secureConfig.STSIncludeSubdomains = true
	}
	return secureConfig
}

// setupRoutes configures all HTTP routes
func (s *WebServer) setupRoutes() {
	s.Router.GET("/", s.homePage)
	s.Router.GET("/os", s.osPage)

	s.Router.NoRoute(func(c *gin.Context) {
		c.String(http.StatusNotFound, "404 page not found")
	})
	s.Router.NoMethod(func(c *gin.Context) {
		c.Header("Allow", http.MethodGet)
		c.String(http.StatusMethodNotAllowed, "405 method not allowed")
	})
}

// ServeHTTP lets the WebServer be used directly as an http.Handler
func (s *WebServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Start binds the configured address and serves until Shutdown is called.
// After a graceful shutdown it returns http.ErrServerClosed.
func (s *WebServer) Start() error {
	addr := s.Config.Addr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ln)
}

// Serve runs the web server on an existing listener with SSL support if configured
func (s *WebServer) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router,
		ReadHeaderTimeout: s.Config.ReadHeaderTimeout,
		ReadTimeout:       s.Config.ReadTimeout,
		WriteTimeout:      s.Config.WriteTimeout,
		IdleTimeout:       s.Config.IdleTimeout,
	}

	s.mux.Lock()
	if s.httpServer != nil {
		s.mux.Unlock()
		ln.Close()
		return errors.New("web server already started")
	}
	s.httpServer = srv
	s.StartTime = time.Now()
	s.mux.Unlock()

	if s.Config.SSL {
		if s.Config.CertFile == "" || s.Config.KeyFile == "" {
			ln.Close()
			return errors.New("SSL enabled but cert_file or key_file not specified in config")
		}
		log.Printf("[WEB]: Starting HTTPS server on %s", ln.Addr())
		return srv.ServeTLS(ln, s.Config.CertFile, s.Config.KeyFile)
	}
	log.Printf("[WEB]: Starting HTTP server on %s", ln.Addr())
	return srv.Serve(ln)
}

// Shutdown gracefully stops the listener, waiting for in-flight requests
func (s *WebServer) Shutdown(ctx context.Context) error {
	s.mux.Lock()
	srv := s.httpServer
	s.mux.Unlock()
	if srv == nil {
		return nil
	}
	log.Printf("[WEB]: Shutting down web server after %s uptime", s.Uptime().Round(time.Second))
	return srv.Shutdown(ctx)
}

// Uptime returns how long the listener has been running
func (s *WebServer) Uptime() time.Duration {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.StartTime.IsZero() {
		return 0
	}
	return time.Since(s.StartTime)
}

// ApacheLogFormat writes access log lines in Apache combined format
func (s *WebServer) ApacheLogFormat() gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf(`%s - - [%s] "%s %s %s" %d %d "%s" "%s"`+"\n",
			param.ClientIP,
			param.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.BodySize,
			param.Request.Referer(),
			param.Request.UserAgent(),
		)
	})
}

// renderError writes a plain error response; details go to the log only
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	log.Printf("[ERROR]:internal/web: Error %d: %s - %s", statusCode, message, errstring)
	c.String(statusCode, "Error: %s", message)
}
