// package session gates catalog access behind the two authentication levels
//
// A [Session] is owned by one actor: the terminal process, or one browser cookie on the web front-end.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/oauth2"
)

// Level is the capability held by a session.
type Level int

const (
	Unauthenticated Level = iota // No catalog access
	AppScoped                    // Public catalog reads via application credentials
	UserScoped                   // Acting on behalf of a logged-in user
)

func (l Level) String() string {
	switch l {
	case AppScoped:
		return "app"
	case UserScoped:
		return "user"
	default:
		return "none"
	}
}

// AppFactory builds an app-scoped catalog.
type AppFactory func(ctx context.Context) (services.Catalog, error)

// UserFactory builds a user-scoped catalog from a completed authorization.
type UserFactory func(ctx context.Context, token *oauth2.Token) services.Catalog

// Session holds the catalog handles for one actor.
type Session struct {
	ID string

	mu      sync.Mutex
	newApp  AppFactory
	newUser UserFactory
	app     services.Catalog
	user    services.Catalog
	profile *models.User
	token   *oauth2.Token
	state   string
}

// New creates an unauthenticated session.
func New(id string, app AppFactory, user UserFactory) *Session {
	return &Session{ID: id, newApp: app, newUser: user}
}

// Level reports the highest capability the session currently holds.
func (s *Session) Level() Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level()
}

func (s *Session) level() Level {
	switch {
	case s.user != nil:
		return UserScoped
	case s.app != nil:
		return AppScoped
	default:
		return Unauthenticated
	}
}

// Ensure returns a catalog holding at least the required capability.
//
// AppScoped is entered lazily. UserScoped is only reached through [Session.Authorize];
// without it Ensure fails with [shared.ErrAuthRequired]. Unauthenticated returns whatever handle
// is already held and fails with [shared.ErrAuthRequired] when there is none.
func (s *Session) Ensure(ctx context.Context, required Level) (services.Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user != nil {
		return s.user, nil
	}

	switch required {
	case UserScoped:
		return nil, shared.ErrAuthRequired
	case Unauthenticated:
		if s.app == nil {
			return nil, fmt.Errorf("%w: session holds no catalog", shared.ErrAuthRequired)
		}
		return s.app, nil
	}

	if s.app != nil {
		return s.app, nil
	}
	if s.newApp == nil {
		return nil, fmt.Errorf("%w: no application credentials configured", shared.ErrMissingCredentials)
	}

	app, err := s.newApp(ctx)
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// Authorize upgrades the session to UserScoped using the token from a completed OAuth callback.
func (s *Session) Authorize(ctx context.Context, token *oauth2.Token) (*models.User, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token", shared.ErrAuthFailed)
	}
	if s.newUser == nil {
		return nil, fmt.Errorf("%w: no application credentials configured", shared.ErrMissingCredentials)
	}

	catalog := s.newUser(ctx, token)
	profile, err := catalog.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = catalog
	s.profile = profile
	s.token = token
	return profile, nil
}

// User returns the acting user's profile, or nil below UserScoped.
func (s *Session) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Token returns the user token, or nil below UserScoped.
func (s *Session) Token() *oauth2.Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Logout drops the user-scoped handle. An app-scoped handle is kept.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.profile = nil
	s.token = nil
	s.state = ""
}

// BeginLogin generates and remembers a new OAuth state token.
func (s *Session) BeginLogin() (string, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return "", fmt.Errorf("failed to generate state token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	return state, nil
}

// VerifyState reports whether state matches the pending login. The pending state is consumed.
func (s *Session) VerifyState(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok := s.state != "" && state == s.state
	s.state = ""
	return ok
}
