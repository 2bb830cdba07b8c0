// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// outputFlags are shared by every command that prints a listing.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: text, csv or markdown",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write formatted output to a file instead of stdout",
		},
	}
}

func withOutput(flags ...cli.Flag) []cli.Flag {
	return append(flags, outputFlags()...)
}

// setupCommand writes a starter configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter config file",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing config file",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authorize mixtape with your Spotify account",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "no-browser",
						Usage: "Print the authorization URL instead of opening a browser",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show configured credentials and the logged-in user",
				Flags:  outputFlags()[:2],
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the stored user token",
				Action: r.AuthLogout,
			},
		},
	}
}

// searchCommand searches playlists, optionally through country rankings.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search playlists by genre, mood or keyword",
		ArgsUsage: "<query>",
		Flags: withOutput(
			&cli.StringFlag{
				Name:  "country",
				Usage: "Rank results for a country code (requires a rankings API key)",
			},
		),
		Action: r.Search,
	}
}

// rankingsCommand exposes the rankings provider lookups.
func rankingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "rankings",
		Usage: "Playlist rankings by keyword, country or playlist",
		Commands: []*cli.Command{
			{
				Name:      "keyword",
				Usage:     "Ranked playlists per country for a keyword",
				Arguments: []cli.Argument{&cli.StringArg{Name: "keyword"}},
				Flags:     outputFlags(),
				Action:    r.RankingsKeyword,
			},
			{
				Name:      "playlist",
				Usage:     "Raw ranking data for one playlist",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     outputFlags()[:2],
				Action:    r.RankingsPlaylist,
			},
			{
				Name:   "popular",
				Usage:  "Best-ranked playlists across the configured keywords",
				Flags:  outputFlags(),
				Action: r.RankingsPopular,
			},
			{
				Name:      "country",
				Usage:     "Top playlists for a country",
				Arguments: []cli.Argument{&cli.StringArg{Name: "code"}},
				Flags:     outputFlags(),
				Action:    r.RankingsCountry,
			},
			{
				Name:   "countries",
				Usage:  "List supported country codes",
				Flags:  outputFlags()[:2],
				Action: r.RankingsCountries,
			},
		},
	}
}

// playlistsCommand lists the logged-in user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlists",
		Usage: "List your Spotify playlists",
		Flags: withOutput(
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of playlists to return",
				Value: 50,
			},
		),
		Action: r.Playlists,
	}
}

// tracksCommand lists the tracks of a playlist.
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tracks",
		Usage:     "List the tracks in a playlist",
		Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
		Flags:     outputFlags(),
		Action:    r.Tracks,
	}
}

// recommendCommand passes seed tracks to the recommender.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Usage:     "Recommend tracks from up to 5 seed track IDs",
		ArgsUsage: "<track-id>...",
		Flags: withOutput(
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Number of recommendations",
				Value: 20,
			},
		),
		Action: r.Recommend,
	}
}

// generateCommand remixes source playlists into new ones.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen", "mix"},
		Usage:   "Create remixed playlists from source playlists",
		Flags: withOutput(
			&cli.StringSliceFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Source playlist ID or URL (repeatable)",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of playlists to create (default from config)",
			},
			&cli.IntFlag{
				Name:    "tracks",
				Aliases: []string{"t"},
				Usage:   "Tracks per playlist (default from config)",
			},
			&cli.BoolFlag{
				Name:  "no-dedup",
				Usage: "Keep duplicate tracks in the pool",
			},
			&cli.StringSliceFlag{
				Name:  "name",
				Usage: "Name for the i-th created playlist (repeatable)",
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Description for every created playlist",
			},
			&cli.BoolFlag{
				Name:  "public",
				Usage: "Create public playlists",
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   "Choose sources and settings with prompts",
			},
		),
		Action: r.Generate,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist remixing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist remixing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI runs",
				Value: "./tmp/mixtape-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand runs the web front-end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default from config server.host/server.port)",
			},
			&cli.StringSliceFlag{
				Name:  "origin",
				Usage: "Allowed CORS origin (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "secure-cookies",
				Usage: "Mark the session cookie Secure (behind TLS)",
			},
		},
		Action: r.Serve,
	}
}
