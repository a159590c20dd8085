// Web server for go-uaecho
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	prof "github.com/go-while/go-cpu-mem-profiler"
	"github.com/go-while/go-uaecho/internal/config"
	"github.com/go-while/go-uaecho/internal/web"
)

var (
	// command-line flags
	webhost     string
	webport     int
	webssl      bool
	webcertFile string
	webkeyFile  string
	debug       bool
	pprofAddr   string
	metricsAddr string
)

var appVersion = "-unset-"

var Prof *prof.Profiler

func main() {
	config.AppVersion = appVersion

	flag.StringVar(&webhost, "webhost", "", "Web server bind address (default: 0.0.0.0)")
	flag.IntVar(&webport, "webport", 0, "Web server port (default: 8000)")
	flag.BoolVar(&webssl, "webssl", false, "Enable SSL")
	flag.StringVar(&webcertFile, "websslcert", "", "SSL certificate file (/path/to/fullchain.pem)")
	flag.StringVar(&webkeyFile, "websslkey", "", "SSL key file (/path/to/privkey.pem)")
	flag.BoolVar(&debug, "debug", false, "Developer diagnostics: gin debug mode + pprof listener. NEVER use in production!")
	flag.StringVar(&pprofAddr, "pprofaddr", "", "pprof listen address, only used with -debug (default: 127.0.0.1:51111)")
	flag.StringVar(&metricsAddr, "metricsaddr", "", "Prometheus metrics listen address, e.g. 127.0.0.1:9100 (default: disabled)")
	flag.Parse()

	mainConfig := config.NewDefaultConfig()
	log.Printf("Starting go-uaecho: Web Server (version: %s)", appVersion)

	if err := mainConfig.ApplyEnv(os.LookupEnv); err != nil {
		log.Fatalf("[WEB]: Error loading environment config: %v", err)
	}
	webConfig := mainConfig.Server.WEB

	// Override config with command-line flags if provided
	if webhost != "" {
		webConfig.ListenHost = webhost
		log.Printf("[WEB]: Overriding listen host with command-line flag: %s", webConfig.ListenHost)
	}
	if webport > 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	} else {
		log.Printf("[WEB]: No port flag provided, using: %d", webConfig.ListenPort)
	}
	if webssl {
		webConfig.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		webConfig.CertFile = webcertFile
		log.Printf("[WEB]: SSL cert file set: %s", webConfig.CertFile)
	}
	if webkeyFile != "" {
		webConfig.KeyFile = webkeyFile
		log.Printf("[WEB]: SSL key file set: %s", webConfig.KeyFile)
	}
	if debug {
		webConfig.Debug = true
	}
	if pprofAddr != "" {
		webConfig.PprofAddr = pprofAddr
	}
	if metricsAddr != "" {
		webConfig.MetricsAddr = metricsAddr
	}
	log.Printf("[WEB]: Using WEB configuration: %#v", webConfig)

	if err := webConfig.Validate(); err != nil {
		log.Fatalf("[WEB]: Invalid configuration: %v", err)
	}

	if webConfig.Debug {
		log.Printf("[DEBUG]: WARNING: diagnostics mode is ENABLED. Do not run this on a public deployment!")
		if files, err := web.ListEmbeddedFiles(); err == nil {
			log.Printf("[DEBUG]: Embedded pages: %v", files)
		}
		if webConfig.PprofAddr != "" {
			Prof = prof.NewProf()
			go Prof.PprofWeb(webConfig.PprofAddr)
			Prof.StartMemProfile(5*time.Minute, 30*time.Second)
			log.Printf("[DEBUG]: pprof listening on %s", webConfig.PprofAddr)
		}
	}

	server, err := web.NewServer(webConfig)
	if err != nil {
		log.Fatalf("[WEB]: Failed to create web server: %v", err)
	}

	var metricsServer *http.Server
	if webConfig.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:              webConfig.MetricsAddr,
			Handler:           metricsMux(server),
			ReadHeaderTimeout: webConfig.ReadHeaderTimeout,
		}
		go func() {
			log.Printf("[METRICS]: Serving metrics on http://%s/metrics", webConfig.MetricsAddr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("[METRICS]: Metrics listener failed: %v", err)
			}
		}()
	}

	protocol := "http"
	if webConfig.SSL {
		protocol = "https"
	}
	log.Printf("[WEB]: Starting go-uaecho web server on %s://%s", protocol, webConfig.Addr())

	// Set up cross-platform signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start web server in goroutine to make it non-blocking
	webServerErrChan := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			webServerErrChan <- err
		}
	}()

	log.Printf("[WEB]: Server started successfully. Press Ctrl+C to gracefully shutdown...")

	// Wait for either shutdown signal or server error
	select {
	case <-sigChan:
		log.Printf("[WEB]: Received shutdown signal, initiating graceful shutdown...")
	case err := <-webServerErrChan:
		log.Fatalf("[WEB]: Failed to start web server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Printf("[METRICS]: Error stopping metrics listener: %v", err)
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[WEB]: Error during shutdown: %v", err)
	}

	log.Printf("[WEB]: Graceful shutdown completed")
} // end main

// metricsMux serves the Prometheus endpoint on its own listener
func metricsMux(server *web.WebServer) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", server.MetricsHandler())
	return mux
}
