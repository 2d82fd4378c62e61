package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gallery/internal/auth"
	"gallery/internal/config"
	"gallery/internal/library"
	"gallery/internal/store"
)

const (
	adminTokenEnvKey       = "GALLERY_ADMIN_TOKEN"
	allowRemoteEnvKey      = "GALLERY_ALLOW_REMOTE"
	readHeaderTimeout      = 5 * time.Second
	readTimeout            = 5 * time.Minute
	writeTimeout           = 5 * time.Minute
	idleTimeout            = 60 * time.Second
	shutdownTimeout        = 10 * time.Second
	uploadConcurrencyLimit = 1
	exportConcurrencyLimit = 2
	searchConcurrencyLimit = 4
	adminMaxFailures       = 5
	adminFailureWindow     = time.Minute
	adminBlockDuration     = 5 * time.Minute
)

// InfoSource reports database-level counters for the info endpoint.
type InfoSource interface {
	StoreInfo(ctx context.Context) (*store.StoreInfo, error)
}

// Options tunes the HTTP server.
type Options struct {
	LibraryPath        string
	Credentials        auth.Credentials
	MultipartMaxMemory int64
	Logger             *slog.Logger
}

// Server wraps HTTP handlers for the gallery API.
type Server struct {
	addr            string
	lib             *library.Library
	info            InfoSource
	libraryPath     string
	logger          *slog.Logger
	credentials     auth.Credentials
	adminFailures   *adminFailures
	multipartMemory int64
	uploadLimiter   chan struct{}
	exportLimiter   chan struct{}
	searchLimiter   chan struct{}
}

// New creates a new server instance. A nil info source disables the
// database counters in /v1/info.
func New(addr string, lib *library.Library, info InfoSource, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	creds := opts.Credentials
	if strings.TrimSpace(creds.Token) == "" {
		creds.Token = strings.TrimSpace(os.Getenv(adminTokenEnvKey))
	}

	memory := opts.MultipartMaxMemory
	if memory <= 0 {
		memory = config.DefaultMultipartMaxMemory
	}

	return &Server{
		addr:            addr,
		lib:             lib,
		info:            info,
		libraryPath:     opts.LibraryPath,
		logger:          logger,
		credentials:     creds,
		adminFailures:   newAdminFailures(adminMaxFailures, adminFailureWindow, adminBlockDuration),
		multipartMemory: memory,
		uploadLimiter:   make(chan struct{}, uploadConcurrencyLimit),
		exportLimiter:   make(chan struct{}, exportConcurrencyLimit),
		searchLimiter:   make(chan struct{}, searchConcurrencyLimit),
	}
}

// Handler returns the routed handler with request logging applied.
func (s *Server) Handler() http.Handler {
	return s.withRequestLogging(s.routes())
}

// ListenAndServe starts the HTTP server and blocks until ctx is cancelled
// or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.log().Info("starting server", "addr", s.addr, "admin_gate", s.credentials.Enabled())
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	}
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}
