package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthRequired = fmt.Errorf("please authenticate with Spotify first")
	ErrAuthFailed   = fmt.Errorf("authentication failed")
	ErrTokenExpired = fmt.Errorf("access token expired")
	ErrTimeout      = fmt.Errorf("operation timed out")

	// Catalog and provider errors
	ErrAPIRequest          = fmt.Errorf("API request failed")
	ErrProviderUnavailable = fmt.Errorf("rankings provider unavailable")
	ErrRateLimited         = fmt.Errorf("rankings provider rate limited")
	ErrCatalog             = fmt.Errorf("catalog lookup failed")
	ErrPlaylistNotFound    = fmt.Errorf("playlist not found")

	// Generation errors
	ErrEmptySource = fmt.Errorf("no tracks found in selected playlists")

	// Input validation errors
	ErrInvalidRequest  = fmt.Errorf("invalid request")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
