package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"gatehouse/internal/auth"
	"gatehouse/internal/constants"
	"gatehouse/internal/logger"
	"gatehouse/internal/storage"
)

// Server wraps the HTTP server with graceful shutdown
type Server struct {
	httpServer *http.Server
	app        *App
	logger     *logger.Logger
}

// NewServer creates a new HTTP server
func NewServer(app *App, addr string) *Server {
	mux := http.NewServeMux()

	s := &Server{
		app:    app,
		logger: app.Logger,
	}

	// Register routes
	s.registerRoutes(mux)

	// Build middleware chain: RequestID → SecurityHeaders → Authenticate → handler
	authMW := auth.NewMiddleware(app.Codec, app.Users, app.Logger)
	handler := Chain(mux, RequestID, SecurityHeaders, authMW.Authenticate)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  0, // No timeout for streaming uploads
		WriteTimeout: 0,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	return s
}

// registerRoutes sets up all API routes
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Account routes
	mux.HandleFunc("/api/users/signup", s.handleSignup)
	mux.HandleFunc("/api/users/login", s.handleLogin)
	mux.HandleFunc("/api/users/logout", s.handleLogout)
	mux.HandleFunc("/api/users/me", s.handleMe)

	// Upload and file administration routes
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/upload/multiple", s.handleUploadMultiple)
	mux.HandleFunc("/api/files/stats", s.handleFileStats)
	mux.HandleFunc("/api/files/cleanup", s.handleFileCleanup)
	mux.HandleFunc("/api/files/", s.handleFileRoutes)

	// Stored objects are served directly when the local backend is active.
	// The remote backend serves its own public URLs.
	if local, ok := s.app.Backend.(*storage.LocalBackend); ok {
		fileServer := http.FileServer(http.Dir(local.Root()))
		mux.Handle(constants.StaticURLPrefix, http.StripPrefix(constants.StaticURLPrefix, fileServer))
	}
}

// Start runs the server and blocks until shutdown signal
func (s *Server) Start() error {
	// Channel for shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, shutdownSignals...)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("Server listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or error
	select {
	case err := <-errChan:
		return err
	case sig := <-stop:
		s.logger.Info("Received signal %v, shutting down...", sig)
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(constants.ShutdownTimeoutSecs)*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("Shutdown error: %v", err)
	}

	if s.app.DB != nil {
		s.app.DB.Close()
	}

	s.logger.Info("Server stopped")
	return nil
}

// Handler returns the HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
