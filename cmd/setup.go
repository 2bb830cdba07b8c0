package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/mixtape/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes the example configuration to the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if path == "" {
		path = r.configName()
	}

	if cmd.Bool("force") {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to replace config file: %w", err)
		}
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w (use --force to overwrite)", err)
	}
	r.logger.Info("config file created", "path", path)

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Create an app at https://developer.spotify.com/dashboard\n")
	r.writePlain("2. Add %s as a redirect URI\n", shared.DefaultConfig().Credentials.Spotify.RedirectURI)
	r.writePlain("3. Set client_id and client_secret in %s (or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET in .env)\n", path)
	r.writePlain("4. Optionally set PLAYLIST_RANKINGS_API_KEY for country rankings\n")
	r.writePlain("5. Run 'mixtape auth login'\n")
	return nil
}
