package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Session is the server-side state bound to one browser via the session
// cookie. Token holds the Dropbox access token once the user authorized the
// app; it is empty for anonymous sessions.
type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Error wraps a session store failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("session %s failed: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Manager owns the session lifecycle. It is the only writer to the session
// store; handlers only read sessions out of the request context.
type Manager struct {
	store Store
}

// Create allocates a fresh anonymous session and persists it.
func (m *Manager) Create(ctx context.Context) (Session, error) {
	session := Session{
		ID:        newID(),
		CreatedAt: time.Now(),
	}
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, &Error{Op: "create", Err: err}
	}
	return session, nil
}

// Get loads a session by ID. A missing or expired session is not an error,
// callers fall back to creating a new one.
func (m *Manager) Get(ctx context.Context, id string) (Session, bool, error) {
	session, ok, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, false, &Error{Op: "get", Err: err}
	}
	return session, ok, nil
}

// Regenerate swaps the session ID for a fresh one while invalidating the old
// one. This closes the fixation window around login: the ID handed out before
// authorization must never identify the authorized session. The new session
// starts without a token; AttachToken follows as a separate step.
func (m *Manager) Regenerate(ctx context.Context, old Session) (Session, error) {
	session := Session{
		ID:        newID(),
		CreatedAt: time.Now(),
	}
	if err := m.store.Save(ctx, session); err != nil {
		return Session{}, &Error{Op: "regenerate", Err: err}
	}
	if err := m.store.Delete(ctx, old.ID); err != nil {
		return Session{}, &Error{Op: "regenerate", Err: err}
	}
	return session, nil
}

// AttachToken stores the access token on the session and persists it.
func (m *Manager) AttachToken(ctx context.Context, session *Session, token string) error {
	session.Token = token
	if err := m.store.Save(ctx, *session); err != nil {
		return &Error{Op: "attach token", Err: err}
	}
	return nil
}

// Destroy removes the session from the store.
func (m *Manager) Destroy(ctx context.Context, session Session) error {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		return &Error{Op: "destroy", Err: err}
	}
	return nil
}

func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
