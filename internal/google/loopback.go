package google

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"
)

// RunLoopbackFlow runs the browser-mediated authorization-code flow against a
// listener on an ephemeral loopback port. It blocks until the user completes
// consent in the browser; the component itself enforces no timeout, so ctx is
// the only way to abandon the flow.
func RunLoopbackFlow(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start loopback listener: %w", err)
	}
	defer ln.Close()

	// Copy so the ephemeral redirect URL never leaks into the caller's config.
	flowConf := *conf
	flowConf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	authURL := flowConf.AuthCodeURL(state, oauth2.AccessTypeOffline)

	type callback struct {
		code string
		err  error
	}
	results := make(chan callback, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization response state mismatch")}
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusForbidden)
			results <- callback{err: fmt.Errorf("authorization denied: %s", q.Get("error"))}
		case q.Get("code") == "":
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			results <- callback{err: fmt.Errorf("authorization response missing code")}
		default:
			fmt.Fprintln(w, "Authorization complete. You can close this window.")
			results <- callback{code: q.Get("code")}
		}
	})}
	go func() { _ = srv.Serve(ln) }()
	defer srv.Close()

	slog.Info("waiting for authorization in browser", slog.String("url", authURL))
	openBrowser(authURL)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case cb := <-results:
		if cb.err != nil {
			return nil, cb.err
		}
		tok, err := flowConf.Exchange(ctx, cb.code)
		if err != nil {
			return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
		}
		return tok, nil
	}
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// openBrowser makes a best-effort attempt to open the consent URL. The URL is
// also logged, so a failure here only costs the user a copy-paste.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		slog.Debug("could not open browser automatically", slog.String("error", err.Error()))
	}
}
