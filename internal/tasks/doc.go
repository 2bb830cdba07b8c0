// Package tasks builds remixed playlists and ranked playlist listings with real-time progress reporting.
//
// # Core Operations
//
//  1. [Generator.Generate] : Remix source playlists into new playlists
//     - Requires a user-scoped session before fetching anything
//     - Fetches tracks per source playlist in request order, skipping failures
//     - Optionally deduplicates the [TrackPool] by track ID
//     - For each output, reshuffles the whole pool and takes the first N tracks
//     - Names each output via [Assembler] and creates it in the catalog
//
//  2. [RankingsMerger] : Ranked playlist discovery
//     - [RankingsMerger.RankingsForKeyword] never fails; provider errors are carried in [RankingsLookup]
//     - [RankingsMerger.TopPlaylistsForKeywordAndCountry] resolves ranked refs through catalog detail
//     - [RankingsMerger.PopularAcrossKeywords] merges refs by lowest position
//     - [RankingsMerger.CatalogSearchFallback] stands in for missing provider data, tagged as search provenance
//
// # Progress Reporting
//
// # All operations use non-blocking channels for progress updates
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Throttling
//
// Provider calls share one [rate.Limiter] per merger so that successive calls are spaced
// by the configured delay. Catalog detail lookups run on a small worker pool with their own limiter.
package tasks
