package google

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"

	"github.com/driveglass/gdrive-mcp/internal/logging"
)

const (
	// DriveScope is the only scope this server ever requests. A stored
	// credential whose scope set does not cover it is discarded and
	// re-acquired.
	DriveScope = drive.DriveReadonlyScope

	// DefaultCredentialsFile is the default path of the OAuth client secret
	// downloaded from the Google Cloud console (installed-app format).
	DefaultCredentialsFile = "./credentials.json"

	// DefaultTokenFile is the default path of the persisted token. This file
	// is the only durable state the server keeps.
	DefaultTokenFile = "./token.json"
)

// AuthorizeFunc runs an interactive authorization flow and returns the
// resulting token. The default is RunLoopbackFlow; tests substitute fakes.
type AuthorizeFunc func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)

// Manager loads, refreshes and persists the OAuth credential backing every
// Drive call. It owns the credentials.json/token.json file pair.
type Manager struct {
	CredentialsFile string
	TokenFile       string

	// Authorize runs the interactive consent flow when no usable credential
	// exists. Defaults to RunLoopbackFlow when nil.
	Authorize AuthorizeFunc

	logger *slog.Logger
	mu     sync.Mutex
}

// NewManager creates a Manager for the given file pair. Empty paths fall back
// to the defaults next to the working directory, matching where users place
// the client secret.
func NewManager(credentialsFile, tokenFile string, logger *slog.Logger) *Manager {
	if credentialsFile == "" {
		credentialsFile = DefaultCredentialsFile
	}
	if tokenFile == "" {
		tokenFile = DefaultTokenFile
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		CredentialsFile: credentialsFile,
		TokenFile:       tokenFile,
		logger:          logger,
	}
}

// storedToken is the on-disk token format. The key names follow the
// authorized-user format Google client libraries write, so a token.json
// produced by one of them is readable here and vice versa.
type storedToken struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenURI     string    `json:"token_uri,omitempty"`
	ClientID     string    `json:"client_id,omitempty"`
	ClientSecret string    `json:"client_secret,omitempty"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// config parses the OAuth client secret file, restricted to DriveScope.
func (m *Manager) config() (*oauth2.Config, error) {
	b, err := os.ReadFile(m.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secret file %s: %w", m.CredentialsFile, err)
	}
	conf, err := google.ConfigFromJSON(b, DriveScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secret file %s: %w", m.CredentialsFile, err)
	}
	return conf, nil
}

// loadToken reads the persisted token. It returns nil when the file is
// missing, unparsable, or its scope set does not cover DriveScope; all three
// cases mean the credential must be re-acquired.
func (m *Manager) loadToken() *oauth2.Token {
	b, err := os.ReadFile(m.TokenFile)
	if err != nil {
		return nil
	}

	var st storedToken
	if err := json.Unmarshal(b, &st); err != nil {
		m.logger.Warn("stored token is unreadable, re-authenticating",
			logging.Err(err))
		return nil
	}
	if st.AccessToken == "" && st.RefreshToken == "" {
		return nil
	}
	if !hasScope(st.Scopes, DriveScope) {
		m.logger.Warn("stored token is missing the required scope, re-authenticating",
			slog.String("required_scope", DriveScope))
		return nil
	}

	return &oauth2.Token{
		AccessToken:  st.AccessToken,
		RefreshToken: st.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       st.Expiry,
	}
}

// saveToken persists the token, overwriting any prior contents. The file is
// created with 0600 since it holds a live refresh token.
func (m *Manager) saveToken(conf *oauth2.Config, tok *oauth2.Token) error {
	st := storedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURI:     conf.Endpoint.TokenURL,
		ClientID:     conf.ClientID,
		ClientSecret: conf.ClientSecret,
		Scopes:       conf.Scopes,
		Expiry:       tok.Expiry,
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}
	if err := os.WriteFile(m.TokenFile, b, 0600); err != nil {
		return fmt.Errorf("failed to write token file %s: %w", m.TokenFile, err)
	}
	return nil
}

// TokenSource returns a token source bound to a usable credential, acquiring
// or refreshing one first if necessary. The returned source persists every
// refreshed token back to the token file.
func (m *Manager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conf, err := m.config()
	if err != nil {
		return nil, err
	}

	tok := m.loadToken()
	if tok == nil || !tok.Valid() {
		tok, err = m.acquireToken(ctx, conf, tok)
		if err != nil {
			return nil, err
		}
		if err := m.saveToken(conf, tok); err != nil {
			return nil, err
		}
	}

	return &persistingTokenSource{
		src:  conf.TokenSource(ctx, tok),
		save: func(t *oauth2.Token) error { return m.saveToken(conf, t) },
		last: tok.AccessToken,
	}, nil
}

// acquireToken refreshes an expired token, or runs the interactive consent
// flow when no refreshable credential exists. The consent flow blocks until
// the user completes it in a browser; only ctx cancellation interrupts it.
func (m *Manager) acquireToken(ctx context.Context, conf *oauth2.Config, expired *oauth2.Token) (*oauth2.Token, error) {
	if expired != nil && expired.RefreshToken != "" {
		tok, err := conf.TokenSource(ctx, expired).Token()
		if err == nil {
			m.logger.Debug("refreshed expired token",
				logging.Operation("token_refresh"),
				slog.String("access_token", logging.SanitizeToken(tok.AccessToken)))
			return tok, nil
		}
		// A revoked grant fails here; fall through to full re-authentication.
		m.logger.Warn("token refresh failed, falling back to interactive consent",
			logging.Operation("token_refresh"), logging.Err(err))
	}

	authorize := m.Authorize
	if authorize == nil {
		authorize = RunLoopbackFlow
	}
	tok, err := authorize(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("authorization flow failed: %w", err)
	}
	return tok, nil
}

// Client returns an HTTP client bound to the credential, triggering refresh
// or interactive consent as needed.
func (m *Manager) Client(ctx context.Context) (*http.Client, error) {
	ts, err := m.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// persistingTokenSource writes the token file whenever the underlying source
// hands out a new access token, so refreshes triggered deep inside the Drive
// SDK survive process restarts.
type persistingTokenSource struct {
	src  oauth2.TokenSource
	save func(*oauth2.Token) error
	last string
	mu   sync.Mutex
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken != p.last {
		if err := p.save(tok); err != nil {
			return nil, err
		}
		p.last = tok.AccessToken
	}
	return tok, nil
}

func hasScope(scopes []string, want string) bool {
	for _, s := range scopes {
		if s == want {
			return true
		}
	}
	return false
}
