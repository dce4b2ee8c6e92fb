package google

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/oauth2"

	"github.com/teemow/calmcp/internal/logging"
	"github.com/teemow/calmcp/internal/store"
)

// CredentialStore is the slice of the token store the manager needs.
type CredentialStore interface {
	SaveTokens(ctx context.Context, userID string, token *oauth2.Token, userEmail string) error
	LoadTokens(ctx context.Context, userID string) (*oauth2.Token, store.Outcome)
	DeleteTokens(ctx context.Context, userID string)
}

// Exchanger swaps an authorization code for a token set.
// *oauth2.Config satisfies this in production; tests substitute a fake.
type Exchanger interface {
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

// Manager bridges the OAuth exchange with the credential store and
// decides whether a calendar write is currently authorized.
//
// Credentials are held per user id in an explicit map rather than a
// process-wide singleton, so concurrent users only ever race on their
// own entry.
type Manager struct {
	conf      *oauth2.Config
	exchanger Exchanger
	store     CredentialStore
	logger    *slog.Logger

	mu    sync.RWMutex
	creds map[string]*oauth2.Token
}

// ManagerOption customizes a Manager.
type ManagerOption func(*Manager)

// WithExchanger replaces the code exchanger. Used by tests to avoid
// real network calls.
func WithExchanger(e Exchanger) ManagerOption {
	return func(m *Manager) {
		m.exchanger = e
	}
}

// NewManager creates a credential lifecycle manager.
func NewManager(conf *oauth2.Config, cs CredentialStore, logger *slog.Logger, opts ...ManagerOption) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		conf:      conf,
		exchanger: conf,
		store:     cs,
		logger:    logger,
		creds:     make(map[string]*oauth2.Token),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// LoadInitialCredentials fills the in-process credential for userID
// from the store. Called once at process start; a missing or faulted
// record simply leaves the user unauthorized.
func (m *Manager) LoadInitialCredentials(ctx context.Context, userID string) {
	token, outcome := m.store.LoadTokens(ctx, userID)
	if outcome != store.Found {
		m.logger.Info("no stored credentials at startup",
			logging.Operation("load_initial_credentials"),
			logging.UserHash(userID),
			slog.String("outcome", outcome.String()))
		return
	}

	m.mu.Lock()
	m.creds[userID] = token
	m.mu.Unlock()

	m.logger.Info("credentials loaded from store",
		logging.Operation("load_initial_credentials"),
		logging.UserHash(userID))
}

// EnsureAuthorized reports whether userID currently holds usable
// credentials. When not, the returned URL starts a fresh authorization.
//
// This gates on presence only: an expired access token alongside a
// refresh token still counts as authorized, since the token source
// refreshes it transparently during the next API call.
func (m *Manager) EnsureAuthorized(ctx context.Context, userID string) (bool, string) {
	m.mu.RLock()
	token := m.creds[userID]
	m.mu.RUnlock()

	if token == nil || token.AccessToken == "" {
		return false, authCodeURL(m.conf)
	}
	return true, ""
}

// CompleteAuthorization exchanges code for a token set, persists it,
// and updates the in-process credential. On any failure stored state is
// left untouched.
func (m *Manager) CompleteAuthorization(ctx context.Context, userID, code string) error {
	if code == "" {
		return fmt.Errorf("authorization code is required")
	}

	token, err := m.exchanger.Exchange(ctx, code)
	if err != nil {
		m.logger.Error("authorization code exchange failed",
			logging.Operation("complete_authorization"),
			logging.UserHash(userID),
			logging.Err(err))
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	if err := m.store.SaveTokens(ctx, userID, token, ""); err != nil {
		return fmt.Errorf("failed to persist exchanged tokens: %w", err)
	}

	m.mu.Lock()
	m.creds[userID] = token
	m.mu.Unlock()

	m.logger.Info("authorization completed",
		logging.Operation("complete_authorization"),
		logging.UserHash(userID),
		slog.Bool("has_refresh_token", token.RefreshToken != ""))
	return nil
}

// Invalidate drops the credentials for userID, in memory and in the
// store. The user re-enters the flow via a fresh authorization.
func (m *Manager) Invalidate(ctx context.Context, userID string) {
	m.mu.Lock()
	delete(m.creds, userID)
	m.mu.Unlock()

	m.store.DeleteTokens(ctx, userID)
}

// Credentials returns the current in-process token for userID, or nil.
func (m *Manager) Credentials(userID string) *oauth2.Token {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds[userID]
}

// TokenSource returns a token source for userID that refreshes through
// the oauth2 client and writes every renewed token back to the store,
// so a restart picks up the newest access token. This is the explicit
// refresh collaborator: what "needs refreshing" means is decided by the
// oauth2 library, persistence of the result is decided here.
func (m *Manager) TokenSource(ctx context.Context, userID string) (oauth2.TokenSource, error) {
	m.mu.RLock()
	token := m.creds[userID]
	m.mu.RUnlock()

	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("no credentials for user")
	}

	return &persistingTokenSource{
		manager: m,
		userID:  userID,
		src:     m.conf.TokenSource(ctx, token),
		ctx:     ctx,
		last:    token,
	}, nil
}

// persistingTokenSource wraps the refreshing oauth2 token source and
// saves any renewed token.
type persistingTokenSource struct {
	manager *Manager
	userID  string
	src     oauth2.TokenSource
	ctx     context.Context

	mu   sync.Mutex
	last *oauth2.Token
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := p.src.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	changed := p.last == nil || token.AccessToken != p.last.AccessToken
	p.last = token
	p.mu.Unlock()

	if changed {
		// Persisting the refreshed token is best-effort: a store
		// fault must not break the in-flight calendar call.
		if err := p.manager.store.SaveTokens(p.ctx, p.userID, token, ""); err != nil {
			p.manager.logger.Error("failed to persist refreshed token",
				logging.Operation("token_refresh"),
				logging.UserHash(p.userID),
				logging.Err(err))
		}

		p.manager.mu.Lock()
		p.manager.creds[p.userID] = token
		p.manager.mu.Unlock()
	}

	return token, nil
}
