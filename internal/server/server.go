// Package server wires the HTTP surface together.
package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gastobot/internal/config"
	"gastobot/internal/expense"
	"gastobot/internal/googleauth"
	"gastobot/internal/http/handlers"
	"gastobot/internal/middleware"
	"gastobot/internal/parser"
	"gastobot/internal/sheets"
	"gastobot/internal/storage"
)

// Server wraps an http.Server with configured routes.
type Server struct {
	inner *http.Server
}

// New wires middleware, routes, and returns a ready server.
func New(cfg config.Config, store storage.AccountStore, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	linker := googleauth.New(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI, store, logger)
	recorder := expense.NewService(store, parser.New(), sheetFactory(cfg, logger), logger)

	handlers.NewHealthHandler().Register(mux)
	handlers.NewWebhookHandler(recorder, logger).Register(mux)
	handlers.NewSignupHandler(store, linker, logger).Register(mux)
	handlers.NewOAuthCallbackHandler(linker, logger).Register(mux)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           middleware.Logging(logger, mux),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return &Server{inner: httpServer}
}

// sheetFactory builds a per-request sheet client from the account's
// credential, so no client instance is shared across requests.
func sheetFactory(cfg config.Config, logger *zap.Logger) expense.SheetFactory {
	return func(ctx context.Context, refreshToken, spreadsheetID string) (expense.SheetAppender, error) {
		if cfg.GoogleSpreadsheetID != "" {
			// Legacy deployments mirror every account into one shared
			// sheet through a service account.
			return sheets.NewServiceAccountClient(ctx, cfg.GoogleCredentialsPath, cfg.GoogleSpreadsheetID, logger)
		}
		return sheets.NewClient(ctx, sheets.Config{
			ClientID:      cfg.GoogleClientID,
			ClientSecret:  cfg.GoogleClientSecret,
			RefreshToken:  refreshToken,
			SpreadsheetID: spreadsheetID,
		}, logger)
	}
}

// Start begins serving HTTP traffic.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
