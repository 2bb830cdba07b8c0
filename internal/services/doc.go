// Package services defines the [Catalog] and [RankingsProvider] collaborators and implements them for Spotify and PlaylistRankings.
//
// # Catalog
//
// [SpotifyService] implements [Catalog] on top of github.com/zmb3/spotify/v2.
// Playlist tracks are paged transparently, track additions are batched in groups of 100,
// and recommendation seeds are capped at five.
//
// # Authentication
//
// [SpotifyAuth] builds catalog handles at two capability levels:
//   - App scope: client credentials grant, enough for search and public reads
//   - User scope: authorization code grant via [SpotifyAuth.AuthURL] and [SpotifyAuth.Exchange]
//
// User-scoped handles refresh their token automatically and report refreshed tokens through an optional callback
// so the CLI can persist them.
//
// # Rankings
//
// [RankingsService] calls the PlaylistRankings API with a bearer key.
//
// Errors are classified rather than swallowed:
//   - [shared.ErrRateLimited] : HTTP 419 or 429
//   - [shared.ErrProviderUnavailable] : transport failure, other non-2xx status, or a body that is not a JSON object
//
// An empty body is not an error and yields an empty map.
// Callers decide whether to degrade; see tasks.RankingsMerger.
//
// # Error Handling
//
// Catalog failures wrap sentinels from the shared package:
//   - [shared.ErrTokenExpired] : HTTP 401 from the catalog
//   - [shared.ErrPlaylistNotFound] : HTTP 404 from the catalog
//   - [shared.ErrAPIRequest] : any other request failure
package services
