package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// loginTimeout bounds how long the callback server waits for the browser.
var loginTimeout = 2 * time.Minute

// AuthLogin runs the OAuth2 authorization code flow and stores the user token in the config file.
//
// Starts a local HTTP server on the redirect URI, opens the browser for consent, and exchanges the code.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.auth == nil {
		return r.missingSpotify()
	}

	token, err := r.doOAuth(ctx, !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	user, err := r.session.Authorize(ctx, token)
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.logger.Info("logged in", "user_id", user.ID)
	r.writePlainln("✓ Logged in as %s (%s)", displayName(user.DisplayName, user.ID), user.ID)
	if r.configPath != "" {
		r.writePlain("✓ Tokens saved to %s\n", r.configPath)
	}
	r.writePlain("\nYou can now use: mixtape generate --interactive\n")
	return nil
}

// AuthStatus reports configured credentials and whether the stored token still works.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	status := struct {
		Authenticated bool    `json:"authenticated"`
		UserID        *string `json:"user_id"`
		UserName      *string `json:"user_name"`
		Credentials   bool    `json:"credentials"`
		Rankings      bool    `json:"rankings"`
	}{
		Credentials: r.auth != nil,
		Rankings:    r.merger.HasProvider(),
	}

	var reason error
	if _, err := r.userCatalog(ctx); err != nil {
		reason = err
	} else if user := r.session.User(); user != nil {
		status.Authenticated = true
		status.UserID = &user.ID
		status.UserName = &user.DisplayName
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	r.writePlain("Spotify credentials: %s\n", mark(status.Credentials))
	r.writePlain("Rankings provider:   %s\n", mark(status.Rankings))
	if status.Authenticated {
		r.writePlain("Logged in:           ✓ %s (%s)\n", displayName(*status.UserName, *status.UserID), *status.UserID)
		return nil
	}

	r.writePlain("Logged in:           ✗\n")
	if reason != nil {
		r.logger.Debug("not authenticated", "reason", reason)
	}
	return nil
}

// AuthLogout drops the stored user token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	r.config.Credentials.Spotify.Clear()

	if r.configPath != "" {
		if err := shared.SaveConfig(r.configPath, r.config); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
	}
	return r.writePlain("✓ Logged out\n")
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, openBrowser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	addr, path := r.callbackAddr()
	authURL := r.auth.AuthURL(state)
	oauthHandler := server.NewOAuthHandler(r.auth, state, path, r.logger)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	callback := server.Start(listener, server.NewRouter(r.logger, oauthHandler), r.logger)
	r.logger.Infof("starting OAuth callback server at %v", callback.Addr())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := callback.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if openBrowser {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			r.writePlainln("⚠ Could not open browser automatically.")
			openBrowser = false
		}
	}
	if !openBrowser {
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", loginTimeout)

	timeout := time.NewTimer(loginTimeout)
	defer timeout.Stop()

	var result server.OAuthResult
	select {
	case result = <-oauthHandler.Result():
	case err := <-callback.Err():
		if err == nil {
			err = errors.New("callback server stopped")
		}
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, loginTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}
	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}

// callbackAddr derives the listen address and callback path from the redirect URI,
// falling back to the [server] section.
func (r *Runner) callbackAddr() (string, string) {
	addr := r.config.Server.Addr()
	path := "/callback"

	u, err := url.Parse(r.config.Credentials.Spotify.RedirectURI)
	if err != nil || u.Host == "" {
		return addr, path
	}
	if u.Path != "" {
		path = u.Path
	}
	if _, _, err := net.SplitHostPort(u.Host); err == nil {
		addr = u.Host
	}
	return addr, path
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return name
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
