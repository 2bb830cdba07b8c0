// Package server provides HTTP routing, middleware, and the OAuth callback handler.
//
// # Router Infrastructure
//
// [NewRouter] builds the chi router used by both the login callback server and the web app:
// request IDs, [Logging] and [Recover] come first, and any [Handler] passed in is mounted on
// its own routes.
//
// [Start] runs a handler on a listener in the background; [Run] listens, serves, and shuts
// down gracefully when its context is cancelled.
//
// # OAuth Callback Handler
//
// [OAuthHandler] completes one authorization code flow for `mixtape auth login`. It checks
// the state parameter, exchanges the code through an [Exchanger], publishes the token on
// a single-shot channel, and rejects any further callback.
package server
