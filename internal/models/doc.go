// Package models defines the domain entities shared by the catalog adapters, the ranking merge and the playlist generator.
//
// The package contains two categories of types:
//
// 1. Catalog data: immutable values built from provider responses
//   - [Track] : Song metadata with a playable URI
//   - [PlaylistSummary] : Playlist metadata with derived keyword tags
//   - [User] : The acting user's profile
//
// 2. Ranking and generation data
//   - [RankedPlaylistRef] : A playlist position within one country/keyword pair
//   - [RankedPlaylist] : A flattened ref carrying its country, keyword and [Provenance]
//   - [GenerationRequest] : Parameters for one remix run
//   - [GeneratedPlaylist] : The outcome of one created playlist
//
// Nothing in this package is persisted. Values live for one request or one CLI run.
package models
