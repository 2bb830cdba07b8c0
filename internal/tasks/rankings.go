package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mixtape/internal/models"
	"github.com/desertthunder/mixtape/internal/services"
	"github.com/desertthunder/mixtape/internal/shared"
	"golang.org/x/time/rate"
)

const defaultProviderDelay = time.Second

// RankingsLookup is the outcome of one provider call.
//
// Countries is never nil. Err records why it is empty when the provider failed.
type RankingsLookup struct {
	Keyword   string
	Countries models.KeywordRankings
	Err       error
}

// RateLimited reports whether the provider throttled the lookup.
func (l RankingsLookup) RateLimited() bool {
	return errors.Is(l.Err, shared.ErrRateLimited)
}

// RankingsMerger combines provider rankings with catalog detail and search fallbacks.
type RankingsMerger struct {
	provider services.RankingsProvider
	cfg      shared.RankingsConfig
	limiter  *rate.Limiter
	resolve  ResolveOpts
	logger   *log.Logger
}

// MergerOption configures a [RankingsMerger].
type MergerOption func(*RankingsMerger)

// WithResolveOpts sets the worker pool used for catalog detail lookups.
func WithResolveOpts(opts ResolveOpts) MergerOption {
	return func(m *RankingsMerger) { m.resolve = opts }
}

// NewRankingsMerger creates a merger. provider may be nil, in which case every lookup is empty.
//
// Successive provider calls are spaced by cfg.Delay (default 1s).
func NewRankingsMerger(provider services.RankingsProvider, cfg shared.RankingsConfig, logger *log.Logger, opts ...MergerOption) *RankingsMerger {
	delay := cfg.Delay
	if delay <= 0 {
		delay = defaultProviderDelay
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	m := &RankingsMerger{
		provider: provider,
		cfg:      withRankingDefaults(cfg),
		limiter:  rate.NewLimiter(rate.Every(delay), 1),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Config returns the effective ranking settings.
func (m *RankingsMerger) Config() shared.RankingsConfig {
	return m.cfg
}

// HasProvider reports whether a rankings provider is configured.
func (m *RankingsMerger) HasProvider() bool {
	return m.provider != nil
}

// RankingsForKeyword performs one throttled provider call. It never fails.
func (m *RankingsMerger) RankingsForKeyword(ctx context.Context, keyword string) RankingsLookup {
	lookup := RankingsLookup{Keyword: keyword, Countries: models.KeywordRankings{}}

	if m.provider == nil {
		lookup.Err = fmt.Errorf("%w: rankings provider not configured", shared.ErrProviderUnavailable)
		return lookup
	}

	if err := m.limiter.Wait(ctx); err != nil {
		lookup.Err = fmt.Errorf("%w: %v", shared.ErrProviderUnavailable, err)
		return lookup
	}

	countries, err := m.provider.KeywordRankings(ctx, keyword)
	if err != nil {
		m.logger.Warn("rankings lookup failed", "keyword", keyword, "error", err)
		lookup.Err = err
		return lookup
	}
	if countries != nil {
		lookup.Countries = countries
	}

	m.logger.Debug("rankings lookup", "keyword", keyword, "countries", len(lookup.Countries))
	return lookup
}

// TopPlaylistsForKeywordAndCountry resolves the provider's ranked refs for country into summaries.
//
// Refs whose detail lookup fails or whose follower count is zero are dropped. Provider order is kept.
// An absent country yields an empty list; no catalog fallback is attempted.
func (m *RankingsMerger) TopPlaylistsForKeywordAndCountry(
	ctx context.Context,
	catalog services.Catalog,
	keyword, country string,
	limit int,
) []models.PlaylistSummary {
	summaries := []models.PlaylistSummary{}

	lookup := m.RankingsForKeyword(ctx, keyword)
	refs, ok := lookup.Countries[country]
	if !ok || len(refs) == 0 {
		return summaries
	}
	if len(refs) > m.cfg.SearchCandidates {
		refs = refs[:m.cfg.SearchCandidates]
	}

	for i, res := range m.resolveRefs(ctx, catalog, refs) {
		if res.err != nil {
			m.logger.Warn("dropping ranked playlist", "playlist_id", res.id, "error", res.err)
			continue
		}
		if res.summary.Followers <= 0 {
			continue
		}

		summary := *res.summary
		summary.Rank = &models.Ranking{
			Position:   refs[i].Position,
			Country:    country,
			Keyword:    keyword,
			Provenance: models.ProvenanceRankings,
		}
		summaries = append(summaries, summary)
	}

	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return Enrich(summaries)
}

// PopularAcrossKeywords merges the top perCountryTop refs of every country for each keyword.
//
// Each ID keeps its lowest position (the first seen wins a tie). Results are sorted
// ascending by position and truncated to totalLimit.
func (m *RankingsMerger) PopularAcrossKeywords(ctx context.Context, keywords []string, perCountryTop, totalLimit int) []models.RankedPlaylist {
	var candidates []models.RankedPlaylist

	for _, keyword := range keywords {
		lookup := m.RankingsForKeyword(ctx, keyword)
		for _, country := range lookup.Countries.Countries() {
			refs := lookup.Countries[country]
			if perCountryTop > 0 && len(refs) > perCountryTop {
				refs = refs[:perCountryTop]
			}
			for _, ref := range refs {
				candidates = append(candidates, models.RankedPlaylist{
					ID:         ref.ID,
					Name:       ref.Name,
					Position:   ref.Position,
					Country:    country,
					Keyword:    keyword,
					Provenance: models.ProvenanceRankings,
				})
			}
		}
	}

	return mergeLowest(candidates,
		func(r models.RankedPlaylist) string { return r.ID },
		func(r models.RankedPlaylist) int { return r.Position },
		totalLimit,
	)
}

// Popular runs [RankingsMerger.PopularAcrossKeywords] with the configured keywords and limits.
func (m *RankingsMerger) Popular(ctx context.Context) []models.RankedPlaylist {
	return m.PopularAcrossKeywords(ctx,
		firstN(m.cfg.Keywords, m.cfg.PopularKeywordCount),
		m.cfg.PopularPerCountry,
		m.cfg.PopularLimit,
	)
}

// CatalogSearchFallback searches "{keyword} popular {countryName}" and ranks results by search order.
//
// Results carry [models.ProvenanceSearch] so callers can tell them from provider rankings.
func (m *RankingsMerger) CatalogSearchFallback(
	ctx context.Context,
	catalog services.Catalog,
	keyword, countryName string,
	limit int,
) []models.PlaylistSummary {
	summaries := []models.PlaylistSummary{}
	query := fmt.Sprintf("%s popular %s", keyword, countryName)

	results, err := catalog.SearchPlaylists(ctx, query, limit)
	if err != nil {
		m.logger.Warn("fallback search failed", "query", query, "error", err)
		return summaries
	}

	for _, p := range results {
		if p.ID == "" {
			continue
		}
		if limit > 0 && len(summaries) >= limit {
			break
		}
		p.Rank = &models.Ranking{
			Position:   len(summaries) + 1,
			Keyword:    keyword,
			Provenance: models.ProvenanceSearch,
		}
		summaries = append(summaries, p)
	}
	return Enrich(summaries)
}

// CountryRankings builds the top playlists for one country.
//
// Provider rankings for the configured keywords are tried first. When no keyword has an
// entry for the country, search fallbacks are used instead. Results are merged by lowest position.
func (m *RankingsMerger) CountryRankings(ctx context.Context, catalog services.Catalog, code string) []models.PlaylistSummary {
	var candidates []models.PlaylistSummary
	found := false

	if m.provider != nil {
		for _, keyword := range firstN(m.cfg.Keywords, m.cfg.CountryKeywordCount) {
			lookup := m.RankingsForKeyword(ctx, keyword)
			refs, ok := lookup.Countries[code]
			if !ok {
				continue
			}
			found = true

			for i, res := range m.resolveRefs(ctx, catalog, refs) {
				if res.err != nil {
					m.logger.Warn("dropping ranked playlist", "playlist_id", res.id, "country", code, "error", res.err)
					continue
				}
				summary := *res.summary
				summary.Rank = &models.Ranking{
					Position:   refs[i].Position,
					Country:    code,
					Keyword:    keyword,
					Provenance: models.ProvenanceRankings,
				}
				candidates = append(candidates, summary)
			}
		}
	}

	if !found {
		m.logger.Info("no provider rankings for country, using search fallback", "country", code)
		name := models.CountryName(code)
		for _, keyword := range firstN(m.cfg.Keywords, m.cfg.FallbackKeywordCount) {
			for _, s := range m.CatalogSearchFallback(ctx, catalog, keyword, name, m.cfg.FallbackLimit) {
				s.Rank.Country = code
				candidates = append(candidates, s)
			}
		}
	}

	merged := mergeLowest(candidates,
		func(s models.PlaylistSummary) string { return s.ID },
		func(s models.PlaylistSummary) int { return s.Rank.Position },
		m.cfg.CountryLimit,
	)
	return Enrich(merged)
}

// SearchWithCountry searches for playlists. With a country the ranked path is used
// and an absent country yields no results; without one a detailed catalog search runs.
func (m *RankingsMerger) SearchWithCountry(ctx context.Context, catalog services.Catalog, query, country string) ([]models.PlaylistSummary, error) {
	if country == "" {
		return m.SearchDetailed(ctx, catalog, query, m.cfg.SearchLimit)
	}
	return m.TopPlaylistsForKeywordAndCountry(ctx, catalog, query, country, m.cfg.SearchLimit), nil
}

// SearchDetailed runs a catalog search and refreshes each result with its full detail.
//
// A failed detail lookup keeps the search result as returned.
func (m *RankingsMerger) SearchDetailed(ctx context.Context, catalog services.Catalog, query string, limit int) ([]models.PlaylistSummary, error) {
	results, err := catalog.SearchPlaylists(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(results))
	for i, p := range results {
		ids[i] = p.ID
	}

	summaries := make([]models.PlaylistSummary, 0, len(results))
	for i, res := range resolveDetails(ctx, catalog, ids, m.resolve) {
		if res.err != nil {
			m.logger.Debug("using search result without detail", "playlist_id", res.id, "error", res.err)
			summaries = append(summaries, results[i])
			continue
		}
		summaries = append(summaries, *res.summary)
	}
	return Enrich(summaries), nil
}

// KeywordRankings flattens one keyword's rankings for display, countries in sorted order.
func (m *RankingsMerger) KeywordRankings(ctx context.Context, keyword string) ([]models.RankedPlaylist, RankingsLookup) {
	lookup := m.RankingsForKeyword(ctx, keyword)
	flat := []models.RankedPlaylist{}

	for _, country := range lookup.Countries.Countries() {
		for _, ref := range lookup.Countries[country] {
			flat = append(flat, models.RankedPlaylist{
				ID:         ref.ID,
				Name:       ref.Name,
				Position:   ref.Position,
				Country:    country,
				Keyword:    keyword,
				Provenance: models.ProvenanceRankings,
			})
		}
	}
	return flat, lookup
}

// PlaylistRankings returns the provider's raw rankings for one playlist, or an empty JSON array.
func (m *RankingsMerger) PlaylistRankings(ctx context.Context, playlistID string) json.RawMessage {
	empty := json.RawMessage("[]")
	if m.provider == nil {
		return empty
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return empty
	}

	raw, err := m.provider.PlaylistRankings(ctx, playlistID)
	if err != nil {
		m.logger.Warn("playlist rankings lookup failed", "playlist_id", playlistID, "error", err)
		return empty
	}
	if len(raw) == 0 {
		return empty
	}
	return raw
}

func (m *RankingsMerger) resolveRefs(ctx context.Context, catalog services.Catalog, refs []models.RankedPlaylistRef) []resolveResult {
	ids := make([]string, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	return resolveDetails(ctx, catalog, ids, m.resolve)
}

// Enrich fills missing keyword tags from each description.
func Enrich(summaries []models.PlaylistSummary) []models.PlaylistSummary {
	for i := range summaries {
		if summaries[i].Keywords == nil {
			summaries[i].Keywords = models.KeywordTags(summaries[i].Description)
		}
	}
	return summaries
}

// mergeLowest keeps one item per id with the strictly lowest position, sorts ascending
// by position (stable, so earlier items win ties), and truncates to limit.
func mergeLowest[T any](items []T, id func(T) string, position func(T) int, limit int) []T {
	best := make(map[string]int, len(items))
	merged := make([]T, 0, len(items))

	for _, item := range items {
		key := id(item)
		if idx, ok := best[key]; ok {
			if position(item) < position(merged[idx]) {
				merged[idx] = item
			}
			continue
		}
		best[key] = len(merged)
		merged = append(merged, item)
	}

	slices.SortStableFunc(merged, func(a, b T) int {
		return position(a) - position(b)
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func firstN(items []string, n int) []string {
	if n <= 0 || n >= len(items) {
		return items
	}
	return items[:n]
}

func withRankingDefaults(cfg shared.RankingsConfig) shared.RankingsConfig {
	defaults := shared.DefaultConfig().Rankings
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = defaults.Keywords
	}
	setDefault(&cfg.PopularKeywordCount, defaults.PopularKeywordCount)
	setDefault(&cfg.PopularPerCountry, defaults.PopularPerCountry)
	setDefault(&cfg.PopularLimit, defaults.PopularLimit)
	setDefault(&cfg.CountryKeywordCount, defaults.CountryKeywordCount)
	setDefault(&cfg.FallbackKeywordCount, defaults.FallbackKeywordCount)
	setDefault(&cfg.FallbackLimit, defaults.FallbackLimit)
	setDefault(&cfg.CountryLimit, defaults.CountryLimit)
	setDefault(&cfg.SearchLimit, defaults.SearchLimit)
	setDefault(&cfg.SearchCandidates, defaults.SearchCandidates)
	return cfg
}

func setDefault(v *int, d int) {
	if *v <= 0 {
		*v = d
	}
}
