// Package config provides configuration management for go-uaecho.
package config

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var AppVersion = "-unset-" // will be set at build time

const (
	// Default listener settings
	DefaultListenHost = "0.0.0.0"
	DefaultListenPort = 8000
	DefaultPprofAddr  = "127.0.0.1:51111"

	// Listener timeouts
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultReadTimeout       = 30 * time.Second
	DefaultWriteTimeout      = 30 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 15 * time.Second

	// Environment overrides
	EnvWebHost     = "UAECHO_WEB_HOST"
	EnvWebPort     = "UAECHO_WEB_PORT"
	EnvWebSSL      = "UAECHO_WEB_SSL"
	EnvWebSSLCert  = "UAECHO_WEB_SSL_CERT"
	EnvWebSSLKey   = "UAECHO_WEB_SSL_KEY"
	EnvDebug       = "UAECHO_DEBUG"
	EnvPprofAddr   = "UAECHO_PPROF_ADDR"
	EnvMetricsAddr = "UAECHO_METRICS_ADDR"
)

// MainConfig holds the main configuration for go-uaecho
type MainConfig struct {
	// Mutex for thread-safe access
	mux sync.Mutex `json:"-"`

	// Server settings
	Server ServerConfig `json:"server"`

	AppVersion string `json:"app_version"` // Application version, set at build time
}

// ServerConfig holds the Web server configuration
type ServerConfig struct {
	WEB *WebConfig `json:"web"`
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenHost  string `json:"listen_host"`
	ListenPort  int    `json:"listen_port"`
	SSL         bool   `json:"ssl"`
	CertFile    string `json:"cert_file,omitempty"`
	KeyFile     string `json:"key_file,omitempty"`
	Debug       bool   `json:"debug"` // never enable on a public deployment
	PprofAddr   string `json:"pprof_addr"`
	MetricsAddr string `json:"metrics_addr,omitempty"` // empty disables the metrics listener

	ReadHeaderTimeout time.Duration `json:"read_header_timeout"`
	ReadTimeout       time.Duration `json:"read_timeout"`
	WriteTimeout      time.Duration `json:"write_timeout"`
	IdleTimeout       time.Duration `json:"idle_timeout"`
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	maincfg := &MainConfig{
		AppVersion: AppVersion,
		Server: ServerConfig{
			WEB: &WebConfig{
				ListenHost:        DefaultListenHost,
				ListenPort:        DefaultListenPort,
				SSL:               false,
				PprofAddr:         DefaultPprofAddr,
				ReadHeaderTimeout: DefaultReadHeaderTimeout,
				ReadTimeout:       DefaultReadTimeout,
				WriteTimeout:      DefaultWriteTimeout,
				IdleTimeout:       DefaultIdleTimeout,
			},
		},
	}

	maincfg.mux.Lock()
	log.Printf("[CONFIG]: MainConfig initialized (version: %s)", maincfg.AppVersion)
	maincfg.mux.Unlock()
	return maincfg
}

// ApplyEnv overrides web settings from UAECHO_* environment variables.
// lookup is usually os.LookupEnv; tests pass their own.
func (mc *MainConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	mc.mux.Lock()
	defer mc.mux.Unlock()
	web := mc.Server.WEB

	if v, ok := lookup(EnvWebHost); ok {
		web.ListenHost = strings.TrimSpace(v)
		log.Printf("[CONFIG]: Listen host overridden by %s: %s", EnvWebHost, web.ListenHost)
	}
	if v, ok := lookup(EnvWebPort); ok {
		p, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWebPort, v, err)
		}
		web.ListenPort = p
		log.Printf("[CONFIG]: Port overridden by %s: %d", EnvWebPort, p)
	}
	if v, ok := lookup(EnvWebSSL); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvWebSSL, v, err)
		}
		web.SSL = b
	}
	if v, ok := lookup(EnvWebSSLCert); ok {
		web.CertFile = v
	}
	if v, ok := lookup(EnvWebSSLKey); ok {
		web.KeyFile = v
	}
	if v, ok := lookup(EnvDebug); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvDebug, v, err)
		}
		web.Debug = b
	}
	if v, ok := lookup(EnvPprofAddr); ok {
		web.PprofAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMetricsAddr); ok {
		web.MetricsAddr = strings.TrimSpace(v)
	}
	return nil
}

// Addr returns the host:port the web listener binds to
func (wc *WebConfig) Addr() string {
	return net.JoinHostPort(wc.ListenHost, strconv.Itoa(wc.ListenPort))
}

// Validate checks the web configuration before the listener starts
func (wc *WebConfig) Validate() error {
	if wc == nil {
		return errors.New("web config is nil")
	}
	if wc.ListenPort < 1 || wc.ListenPort > 65535 {
		return fmt.Errorf("invalid port number: %d (must be between 1 and 65535)", wc.ListenPort)
	}
	if wc.ListenHost != "" && net.ParseIP(wc.ListenHost) == nil && strings.ContainsAny(wc.ListenHost, " /:") {
		return fmt.Errorf("invalid listen host: %q", wc.ListenHost)
	}
	if wc.SSL && (wc.CertFile == "" || wc.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	if wc.Debug && wc.PprofAddr != "" {
		if _, _, err := net.SplitHostPort(wc.PprofAddr); err != nil {
			return fmt.Errorf("invalid pprof address %q: %w", wc.PprofAddr, err)
		}
	}
	if wc.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(wc.MetricsAddr); err != nil {
			return fmt.Errorf("invalid metrics address %q: %w", wc.MetricsAddr, err)
		}
	}
	return nil
}
