package network

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"

	"github.com/veristry/veristry/lib/common"
)

// MetricPattern serves the prometheus scrape endpoint.
const MetricPattern = "/metrics"

type ServerConfig struct {
	Bind string

	ReadTimeout,
	ReadHeaderTimeout,
	WriteTimeout,
	IdleTimeout time.Duration

	// both empty means plain http; http2 then only serves h2c-unaware
	// clients over http/1.1
	TLSCertFile,
	TLSKeyFile string

	AccessLogOutput io.Writer
}

func NewServerConfig(bind string) ServerConfig {
	return ServerConfig{
		Bind:            bind,
		IdleTimeout:     5 * time.Second,
		AccessLogOutput: os.Stdout,
	}
}

// Server is the public http interface; routes are registered on
// Router() before Start.
type Server struct {
	config ServerConfig
	router *mux.Router
	server *http.Server
}

func NewServer(config ServerConfig, rateLimitRule common.RateLimitRule) (*Server, error) {
	router := mux.NewRouter()
	router.Use(RecoverMiddleware(false))
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(log, rateLimitRule))

	router.Handle(MetricPattern, promhttp.Handler()).Methods(http.MethodGet)

	handler := handlers.CombinedLoggingHandler(config.AccessLogOutput, router)

	server := &http.Server{
		Addr:              config.Bind,
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadHeaderTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	if err := http2.ConfigureServer(server, &http2.Server{}); err != nil {
		return nil, err
	}

	return &Server{
		config: config,
		router: router,
		server: server,
	}, nil
}

func (s *Server) Router() *mux.Router {
	return s.router
}

// Start blocks until Stop is called or the listener fails; a closed
// listener after Stop is not an error.
func (s *Server) Start() error {
	log.Info("starting http server", "bind", s.config.Bind, "tls", len(s.config.TLSCertFile) > 0)

	var err error
	if len(s.config.TLSCertFile) > 0 {
		err = s.server.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
	} else {
		err = s.server.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}
