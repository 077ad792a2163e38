// Package googleauth links chat accounts to Google credentials through the
// OAuth2 authorization-code flow.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"gastobot/internal/storage"
)

const (
	spreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"
	statePrefix      = "user_id"
)

// ErrMissingCode rejects a callback without an authorization code.
var ErrMissingCode = errors.New("missing authorization code")

// ErrInvalidState rejects a state parameter that does not decode to an
// account id.
var ErrInvalidState = errors.New("invalid state parameter")

// ErrNoRefreshToken rejects a token response without a refresh token; the
// user has to restart linking with a consent prompt.
var ErrNoRefreshToken = errors.New("token response has no refresh token")

// ExchangeError reports a failed token exchange together with the status
// the provider answered with, so the HTTP layer can forward it.
type ExchangeError struct {
	StatusCode int
	Body       string
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
}

// Linker drives the account-linking state machine: it hands out
// authorization URLs and turns callback codes into stored refresh tokens.
type Linker struct {
	cfg    *oauth2.Config
	store  storage.AccountStore
	logger *zap.Logger
}

// New builds a linker for the configured OAuth client.
func New(clientID, clientSecret, redirectURI string, store storage.AccountStore, logger *zap.Logger) *Linker {
	return &Linker{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{spreadsheetScope},
			Endpoint:     google.Endpoint,
		},
		store:  store,
		logger: logger,
	}
}

// AuthURL builds the authorization URL for the given account. The state
// parameter binds the provider round trip back to the account.
func (l *Linker) AuthURL(accountID int64) string {
	state := fmt.Sprintf("%s:%d", statePrefix, accountID)
	return l.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// CompleteLink exchanges the callback code for tokens and stores the
// refresh token on the account encoded in state. On success it returns the
// token response body for the HTTP layer to forward. This is the only path
// that sets a refresh token.
func (l *Linker) CompleteLink(ctx context.Context, code, state string) ([]byte, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	l.logger.Debug("exchanging authorization code",
		zap.String("code", loggablePrefix(code)),
		zap.String("client_id", loggablePrefix(l.cfg.ClientID)))

	tok, err := l.cfg.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			status := 0
			if rerr.Response != nil {
				status = rerr.Response.StatusCode
			}
			return nil, &ExchangeError{StatusCode: status, Body: string(rerr.Body)}
		}
		return nil, fmt.Errorf("token exchange: %w", err)
	}

	accountID, err := parseState(state)
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	if _, err := l.store.SetRefreshToken(ctx, accountID, tok.RefreshToken); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	l.logger.Info("account linked",
		zap.Int64("account_id", accountID),
		zap.String("refresh_token", loggablePrefix(tok.RefreshToken)))
	return tokenJSON(tok)
}

// parseState decodes "user_id:<id>". It requires the separator and an
// integer id.
func parseState(state string) (int64, error) {
	_, raw, ok := strings.Cut(state, ":")
	if !ok {
		return 0, ErrInvalidState
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: non-numeric account id", ErrInvalidState)
	}
	return id, nil
}

func tokenJSON(tok *oauth2.Token) ([]byte, error) {
	payload := map[string]any{
		"access_token":  tok.AccessToken,
		"token_type":    tok.TokenType,
		"refresh_token": tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		payload["expires_in"] = int64(time.Until(tok.Expiry).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
		payload["scope"] = scope
	}
	return json.Marshal(payload)
}

// loggablePrefix keeps sensitive values out of logs, exposing only a short
// prefix.
func loggablePrefix(s string) string {
	if len(s) <= 8 {
		return "***"
	}
	return s[:8] + "..."
}
