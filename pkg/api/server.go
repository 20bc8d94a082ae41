// Package api serves the gate's HTTP surface: code validation, the
// signaling WebSocket, network discovery and the static client pages.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tomaslejdung/pigate/pkg/credential"
	"github.com/tomaslejdung/pigate/pkg/gate"
	"github.com/tomaslejdung/pigate/pkg/settings"
	"github.com/tomaslejdung/pigate/pkg/signal"
)

const shutdownTimeout = 5 * time.Second

// Server owns the gate's state and serves it over HTTP.
type Server struct {
	settings    settings.Settings
	credentials *credential.Service
	gate        *gate.Gate
	router      *signal.Router
	signaling   *signal.Server
}

// New wires the gate, credential and signaling components for s.
func New(s settings.Settings) *Server {
	return NewWithClock(s, gate.RealClock())
}

// NewWithClock is New with an explicit clock for the attempt store.
func NewWithClock(s settings.Settings, clock gate.Clock) *Server {
	s = settings.Validate(s)

	code := s.AccessCode
	if s.RandomCode {
		code = credential.Generate()
	}
	credentials := credential.NewService(code)

	store := gate.NewAttemptStore(gate.Limits{
		Window:      s.RateWindow,
		MaxAttempts: s.MaxAttempts,
		Lockout:     s.Lockout,
	}, clock)

	router := signal.NewRouter(signal.NewSession(s.Room), credentials)
	credentials.OnRotate(router.PushCode)

	return &Server{
		settings:    s,
		credentials: credentials,
		gate:        gate.New(store),
		router:      router,
		signaling:   signal.NewServer(router),
	}
}

// Settings returns the effective settings.
func (s *Server) Settings() settings.Settings { return s.settings }

// Credentials returns the access code service.
func (s *Server) Credentials() *credential.Service { return s.credentials }

// Gate returns the access gate.
func (s *Server) Gate() *gate.Gate { return s.gate }

// Router returns the signaling router.
func (s *Server) Router() *signal.Router { return s.router }

// Handler returns the HTTP handler for every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /validate-code", s.handleValidateCode)
	mux.HandleFunc("GET /api/current-code", s.handleCurrentCode)
	mux.HandleFunc("GET /api/network-info", s.handleNetworkInfo)
	mux.HandleFunc("GET /ws", s.signaling.HandleWebSocket)

	mux.HandleFunc("GET /{$}", redirectTo("/client/index.html"))
	mux.HandleFunc("GET /client", redirectTo("/client/index.html"))
	mux.HandleFunc("GET "+s.settings.HostPath, s.handleHostPage)
	mux.Handle("GET /", http.FileServer(http.Dir(s.settings.StaticDir)))

	return withCORS(mux)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf(":%d", s.settings.Port)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// HTTPS is used when a certificate and key are configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.settings.TLS() {
			errCh <- srv.ListenAndServeTLS(s.settings.CertFile, s.settings.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	for _, line := range s.Banner() {
		logrus.Info(line)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	}
}

// Banner describes where the server can be reached.
func (s *Server) Banner() []string {
	scheme := "http"
	if s.settings.TLS() {
		scheme = "https"
	}
	limits := s.gate.Store().Limits()
	return []string{
		fmt.Sprintf("Signaling server running on port %d (%s)", s.settings.Port, scheme),
		fmt.Sprintf("Client URL: %s://%s:%d/client/index.html", scheme, s.hostIP(), s.settings.Port),
		fmt.Sprintf("Host/Receiver URL: %s://localhost:%d%s", scheme, s.settings.Port, s.settings.HostPath),
		fmt.Sprintf("Rate limiting: %d attempts / %s, lockout %s", limits.MaxAttempts, limits.Window, limits.Lockout),
	}
}
