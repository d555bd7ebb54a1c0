package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// StateTTL is how long a login may take between the redirect to Dropbox and
// the callback. States not validated within this window are rejected.
const StateTTL = 10 * time.Minute

type stateEntry struct {
	SessionID string
	CreatedAt time.Time
}

func (e stateEntry) IsExpired() bool {
	return time.Since(e.CreatedAt) > StateTTL
}

func New(cfg Config, httpClient *http.Client) *Auth {
	a := &Auth{
		cfg:        cfg,
		httpClient: httpClient,
		oauth2Cfg: &oauth2.Config{
			ClientID:     cfg.AppKey,
			ClientSecret: cfg.AppSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: cfg.RedirectURL,
		},
		states: make(map[string]stateEntry),
	}

	go a.cleanupStates()

	return a
}

// Auth holds the Dropbox OAuth2 config and the cache of pending login states.
// Each state is bound to the session that started the login, so a callback is
// only accepted by the browser session that initiated it.
type Auth struct {
	cfg        Config
	httpClient *http.Client
	oauth2Cfg  *oauth2.Config
	states     map[string]stateEntry
	statesMu   sync.Mutex
}

// AuthCodeURL returns the Dropbox authorize URL carrying the given state.
func (a *Auth) AuthCodeURL(state string) string {
	return a.oauth2Cfg.AuthCodeURL(state)
}

// NewState creates a random state bound to the given session ID.
func (a *Auth) NewState(sessionID string) string {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	state := randomState()
	a.states[state] = stateEntry{
		SessionID: sessionID,
		CreatedAt: time.Now(),
	}
	return state
}

// ValidateState reports whether the state exists, has not expired and was
// issued to the given session. A state that was never issued and one that
// already expired are indistinguishable. Validation is a pure lookup, the
// entry stays until it expires.
func (a *Auth) ValidateState(state string, sessionID string) bool {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	entry, ok := a.states[state]
	if !ok || entry.IsExpired() {
		return false
	}
	return entry.SessionID == sessionID
}

func (a *Auth) cleanupStates() {
	for {
		a.doCleanupStates()
		time.Sleep(StateTTL)
	}
}

func (a *Auth) doCleanupStates() {
	a.statesMu.Lock()
	defer a.statesMu.Unlock()

	for state, entry := range a.states {
		if entry.IsExpired() {
			delete(a.states, state)
		}
	}
}

func randomState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Exchange trades the authorization code for an access token.
func (a *Auth) Exchange(ctx context.Context, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	token, err := a.oauth2Cfg.Exchange(ctx, code)
	if err != nil {
		return "", newExchangeError(err)
	}

	return token.AccessToken, nil
}
