// Package session holds the server-side session records shared between the
// HTTP layer and the socket gateway. A session is tied to a client through
// the session cookie; the socket gateway resolves the same cookie during the
// websocket handshake, so both layers observe one record.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dwalters/cardroom/internal/model"
)

// CookieName is the cookie carrying the session identifier
const CookieName = "session"

// ErrNotFound indicates a missing or expired session
var ErrNotFound = errors.New("session not found")

// ID identifies a session
type ID string

// Session is a server-side session record. User is nil until login.
type Session struct {
	ID        ID
	User      *model.User
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Config holds session behavior settings
type Config struct {
	TTL time.Duration
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		TTL: 24 * time.Hour,
	}
}

// Store is the session store consumed by both the HTTP middleware and the
// socket gateway. Get returns a private copy; readers that need the current
// payload re-resolve by ID rather than holding a Session across goroutines.
// The User pointer inside a copy is safe to share because user records are
// immutable once created. Touch refreshes the expiry without other changes,
// which is what the per-connection keep-alive uses.
type Store interface {
	Create(ctx context.Context) (*Session, error)
	Get(ctx context.Context, id ID) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Touch(ctx context.Context, id ID) error
	Delete(ctx context.Context, id ID) error
}

// newID generates a random session identifier
func newID() ID {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return ID("sess_" + base64.RawURLEncoding.EncodeToString(b))
}
