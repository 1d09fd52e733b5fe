package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Authorize runs the installed-app consent flow: it prints the consent URL to
// out, waits for Google to redirect to a loopback listener and stores the
// resulting token.
func (a *Authenticator) Authorize(ctx context.Context, out io.Writer) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to open loopback listener: %w", err)
	}
	defer listener.Close()
	cfg.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state, err := randomState()
	if err != nil {
		return err
	}
	verifier := oauth2.GenerateVerifier()

	results := make(chan result, 1)
	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") != "":
			fmt.Fprintln(w, "Authorization was denied. You can close this window.")
			deliver(results, result{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		default:
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
			deliver(results, result{code: q.Get("code")})
		}
	})}
	go srv.Serve(listener)
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce, oauth2.S256ChallengeOption(verifier))
	fmt.Fprintf(out, "Open this URL in a browser to authorize %s access:\n\n%s\n\n", a.provider, authURL)

	var res result
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return a.authError(a.credentialsPath, res.err)
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return a.authError(a.credentialsPath, fmt.Errorf("token exchange failed: %w", err))
	}
	if err := SaveToken(a.tokenPath, tok); err != nil {
		return err
	}

	a.logger.Info("Authorization stored", zap.String("provider", a.provider), zap.String("token_path", a.tokenPath))
	return nil
}

type result struct {
	code string
	err  error
}

// deliver hands over the first callback and drops any repeats
func deliver(ch chan<- result, r result) {
	select {
	case ch <- r:
	default:
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", errors.New("failed to generate oauth state")
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
