package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mikey/coach-ops/internal/core"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Authenticator loads OAuth client secrets and user tokens for one Google API
type Authenticator struct {
	provider        string
	credentialsPath string
	tokenPath       string
	scopes          []string
	logger          *zap.Logger
}

// New creates a new authenticator. provider names the API in error messages.
func New(provider, credentialsPath, tokenPath string, scopes []string, logger *zap.Logger) *Authenticator {
	return &Authenticator{
		provider:        provider,
		credentialsPath: credentialsPath,
		tokenPath:       tokenPath,
		scopes:          scopes,
		logger:          logger,
	}
}

// Config reads the OAuth client secrets file
func (a *Authenticator) Config() (*oauth2.Config, error) {
	data, err := os.ReadFile(a.credentialsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, a.authError(a.credentialsPath, errors.New("client secrets file not found"))
		}
		return nil, a.authError(a.credentialsPath, err)
	}
	cfg, err := google.ConfigFromJSON(data, a.scopes...)
	if err != nil {
		return nil, a.authError(a.credentialsPath, fmt.Errorf("invalid client secrets: %w", err))
	}
	return cfg, nil
}

// Client returns an HTTP client authorized with the stored token. Refreshed
// tokens are written back to the token file.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	tok, err := LoadToken(a.tokenPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, a.authError(a.tokenPath, errors.New("token file not found, run the authorize command first"))
		}
		return nil, a.authError(a.tokenPath, err)
	}

	src := &savingTokenSource{
		base:   cfg.TokenSource(ctx, tok),
		path:   a.tokenPath,
		last:   tok.AccessToken,
		logger: a.logger,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}

func (a *Authenticator) authError(path string, err error) *core.AuthError {
	return &core.AuthError{Provider: a.provider, Path: path, Err: err}
}

// tokenFile accepts both the oauth2.Token layout and the authorized-user layout
// with a "token" field
type tokenFile struct {
	AccessToken  string    `json:"access_token"`
	Token        string    `json:"token"`
	TokenType    string    `json:"token_type"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// LoadToken reads a token file
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("invalid token file: %w", err)
	}
	tok := &oauth2.Token{
		AccessToken:  tf.AccessToken,
		TokenType:    tf.TokenType,
		RefreshToken: tf.RefreshToken,
		Expiry:       tf.Expiry,
	}
	if tok.AccessToken == "" {
		tok.AccessToken = tf.Token
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, errors.New("token file has neither an access token nor a refresh token")
	}
	return tok, nil
}

// SaveToken writes tok to path with owner-only permissions
func SaveToken(path string, tok *oauth2.Token) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// savingTokenSource persists every newly minted access token
type savingTokenSource struct {
	mu     sync.Mutex
	base   oauth2.TokenSource
	path   string
	last   string
	logger *zap.Logger
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := SaveToken(s.path, tok); err != nil {
			s.logger.Warn("Failed to save refreshed token", zap.String("path", s.path), zap.Error(err))
		} else {
			s.logger.Debug("Saved refreshed token", zap.String("path", s.path))
		}
	}
	return tok, nil
}
