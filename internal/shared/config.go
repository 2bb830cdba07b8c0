package shared

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Generator   GeneratorConfig   `toml:"generator"`
	Rankings    RankingsConfig    `toml:"rankings"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify  SpotifyConfig            `toml:"spotify"`
	Rankings RankingsCredentialConfig `toml:"rankings"`
}

// SpotifyConfig contains Spotify API credentials and the cached user token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token"`
	RefreshToken string    `toml:"refresh_token"`
	TokenType    string    `toml:"token_type"`
	Expiry       time.Time `toml:"expiry"`
}

// RankingsCredentialConfig contains the rankings provider endpoint and bearer key.
type RankingsCredentialConfig struct {
	APIKey  string        `toml:"api_key"`
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// GeneratorConfig contains defaults for generation runs.
type GeneratorConfig struct {
	Public            bool `toml:"public"`
	NumPlaylists      int  `toml:"num_playlists"`
	TracksPerPlaylist int  `toml:"tracks_per_playlist"`
	AvoidDuplicates   bool `toml:"avoid_duplicates"`
}

// RankingsConfig tunes the batch ranking operations.
type RankingsConfig struct {
	Delay                time.Duration `toml:"delay"`
	Keywords             []string      `toml:"keywords"`
	PopularKeywordCount  int           `toml:"popular_keyword_count"`
	PopularPerCountry    int           `toml:"popular_per_country"`
	PopularLimit         int           `toml:"popular_limit"`
	CountryKeywordCount  int           `toml:"country_keyword_count"`
	FallbackKeywordCount int           `toml:"fallback_keyword_count"`
	FallbackLimit        int           `toml:"fallback_limit"`
	CountryLimit         int           `toml:"country_limit"`
	SearchLimit          int           `toml:"search_limit"`
	SearchCandidates     int           `toml:"search_candidates"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Valid reports whether application credentials are present.
func (s SpotifyConfig) Valid() bool {
	return s.ClientID != "" && s.ClientSecret != ""
}

// Map returns the credentials as a string map.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
	}
}

// Token returns the cached user token, or nil if none is stored.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores token in the config, keeping the previous refresh token when the new one omits it.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidArgument)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}

// Clear removes the cached user token.
func (s *SpotifyConfig) Clear() {
	s.AccessToken = ""
	s.RefreshToken = ""
	s.TokenType = ""
	s.Expiry = time.Time{}
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig encodes config as TOML and writes it to path.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolveConfig loads the config at path (or defaults when absent), then applies .env files and the environment.
func ResolveConfig(path string, envFiles ...string) (*Config, error) {
	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		config = DefaultConfig()
	} else if err != nil {
		return nil, err
	}

	if err := LoadEnv(envFiles...); err != nil {
		return nil, err
	}

	config.ApplyEnv(os.LookupEnv)
	return config, nil
}

// LoadEnv loads .env files into the process environment without overriding existing variables.
//
// Missing files are ignored. With no arguments, ".env" is tried.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("SPOTIFY_CLIENT_ID"); ok && v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v, ok := lookup("SPOTIFY_CLIENT_SECRET"); ok && v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v, ok := lookup("REDIRECT_URI"); ok && v != "" {
		c.Credentials.Spotify.RedirectURI = v
	}
	if v, ok := lookup("PLAYLIST_RANKINGS_API_KEY"); ok && v != "" {
		c.Credentials.Rankings.APIKey = v
	}
	if v, ok := lookup("PORT"); ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v, ok := lookup("PUBLIC"); ok && v != "" {
		c.Generator.Public = strings.EqualFold(strings.TrimSpace(v), "true")
	}
}
