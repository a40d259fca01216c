package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dwalters/cardroom/internal/model"
	"github.com/dwalters/cardroom/internal/session"
	"github.com/dwalters/cardroom/internal/storage"
)

// ErrUsernameRequired indicates a login attempt with an empty username
var ErrUsernameRequired = errors.New("username is required")

// Service resolves usernames to user records and binds them to sessions.
// The domain is trusted/internal: presenting a known username is the whole
// of authentication here.
type Service struct {
	storage  storage.Storage
	sessions session.Store
	logger   *slog.Logger
}

// New creates a new auth Service
func New(store storage.Storage, sessions session.Store, logger *slog.Logger) *Service {
	return &Service{
		storage:  store,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

// Login binds the user with the given username to the session. A session
// that already carries a user is left untouched. Unknown usernames return
// model.ErrUserNotFound with the session unchanged.
func (s *Service) Login(ctx context.Context, sess *session.Session, username string) (*model.User, error) {
	if username == "" {
		return nil, ErrUsernameRequired
	}

	if sess.User != nil {
		return sess.User, nil
	}

	user, err := s.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	sess.User = user
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", slog.String("username", user.Username))
	return user, nil
}
