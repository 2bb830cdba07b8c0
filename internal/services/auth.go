package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/desertthunder/mixtape/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultScopes are requested during user login.
var DefaultScopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserReadPrivate,
}

// SpotifyAuth builds catalog clients for both authentication levels.
//
// App-scoped clients use the client credentials grant. User-scoped clients use
// the authorization code grant and refresh their token as needed.
type SpotifyAuth struct {
	config     *oauth2.Config
	app        *clientcredentials.Config
	apiBaseURL string
	onRefresh  func(*oauth2.Token)
}

// AuthOption configures a [SpotifyAuth].
type AuthOption func(*SpotifyAuth)

// WithEndpoint overrides the accounts service URLs.
func WithEndpoint(authURL, tokenURL string) AuthOption {
	return func(a *SpotifyAuth) {
		a.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
		a.app.TokenURL = tokenURL
	}
}

// WithAPIBaseURL points created catalogs at a different Web API host.
func WithAPIBaseURL(baseURL string) AuthOption {
	return func(a *SpotifyAuth) { a.apiBaseURL = baseURL }
}

// WithTokenCallback registers fn to receive user tokens whenever they change.
func WithTokenCallback(fn func(*oauth2.Token)) AuthOption {
	return func(a *SpotifyAuth) { a.onRefresh = fn }
}

// NewSpotifyAuth creates an authenticator from application credentials.
func NewSpotifyAuth(cfg shared.SpotifyConfig, opts ...AuthOption) (*SpotifyAuth, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}

	a := &SpotifyAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       DefaultScopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  spotifyauth.AuthURL,
				TokenURL: spotifyauth.TokenURL,
			},
		},
		app: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     spotifyauth.TokenURL,
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// OAuthConfig returns the authorization code configuration.
func (a *SpotifyAuth) OAuthConfig() *oauth2.Config {
	return a.config
}

// AuthURL returns the consent page URL for the given state token.
func (a *SpotifyAuth) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange trades an authorization code for a user token.
func (a *SpotifyAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// AppCatalog returns a catalog authorized with application credentials only.
//
// The first token is fetched eagerly so credential problems surface here.
func (a *SpotifyAuth) AppCatalog(ctx context.Context) (Catalog, error) {
	token, err := a.app.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: client credentials: %v", shared.ErrAuthFailed, err)
	}

	base := context.WithoutCancel(ctx)
	source := oauth2.ReuseTokenSource(token, a.app.TokenSource(base))
	return NewSpotifyService(oauth2.NewClient(base, source), a.apiBaseURL), nil
}

// UserCatalog returns a catalog acting on behalf of the token's owner.
func (a *SpotifyAuth) UserCatalog(ctx context.Context, token *oauth2.Token) Catalog {
	base := context.WithoutCancel(ctx)
	source := &refreshableTokenSource{
		source:   a.config.TokenSource(base, token),
		callback: a.onRefresh,
	}
	return NewSpotifyService(oauth2.NewClient(base, source), a.apiBaseURL)
}

// refreshableTokenSource reports every new access token to callback.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.callback(token)
	}
	return token, nil
}
