package main

import (
	"context"

	"github.com/desertthunder/mixtape/internal/server"
	"github.com/desertthunder/mixtape/internal/session"
	"github.com/desertthunder/mixtape/internal/web"
	"github.com/urfave/cli/v3"
)

// Serve runs the web front-end until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	r.logger.Info("starting web server", "addr", addr, "rankings", r.merger.HasProvider())
	return server.Run(ctx, addr, r.webApp(cmd.StringSlice("origin"), cmd.Bool("secure-cookies")), r.logger)
}

// webApp wires the runner's collaborators into the web front-end.
//
// Visitors never share the CLI's stored token: sessions are built on webAuth.
func (r *Runner) webApp(origins []string, secure bool) *web.App {
	var app session.AppFactory
	var user session.UserFactory
	opts := web.Options{
		Merger:         r.merger,
		Generator:      r.generator,
		Defaults:       r.config.Generator,
		Logger:         r.logger,
		AllowedOrigins: origins,
		SecureCookies:  secure,
	}

	if r.webAuth != nil {
		opts.Auth = r.webAuth
		app = r.webAuth.AppCatalog
		user = r.webAuth.UserCatalog
	} else {
		r.logger.Warn("spotify credentials not configured, catalog routes will fail")
	}

	opts.Sessions = session.NewStore(app, user)
	return web.New(opts)
}
