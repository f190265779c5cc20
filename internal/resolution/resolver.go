package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gfnpresence/internal/history"
	"gfnpresence/internal/logging"
	"gfnpresence/internal/services"
	"gfnpresence/internal/steam"
)

// Source names where a resolution came from.
type Source string

const (
	SourceOverride Source = "override"
	SourceCache    Source = "cache"
	SourceSearch   Source = "search"
)

// Store is the cache capability the resolver needs.
type Store interface {
	Get(title string) (string, bool)
	Put(title, id string)
}

// OverrideSource supplies manual title to id mappings.
type OverrideSource interface {
	Lookup(title string) (string, bool)
}

// ArtworkFetcher downloads artwork for a resolved app id.
type ArtworkFetcher interface {
	Fetch(ctx context.Context, appID string) error
}

// Recorder journals network-backed lookups.
type Recorder interface {
	Record(ctx context.Context, lookup history.Lookup) error
}

// Resolution describes a successful lookup.
type Resolution struct {
	ID            string
	Source        Source
	Query         string
	MatchedTitle  string
	Score         float64
	CorrelationID string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithOverrides sets the manual override source.
func WithOverrides(src OverrideSource) Option {
	return func(r *Resolver) { r.overrides = src }
}

// WithArtwork enables the artwork job for accepted search matches.
func WithArtwork(fetcher ArtworkFetcher) Option {
	return func(r *Resolver) { r.artwork = fetcher }
}

// WithRecorder journals every network-backed resolution.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) { r.recorder = rec }
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

// WithClock overrides time.Now, used for journal durations.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// Resolver turns display titles into Steam app ids: override, then cache,
// then search with degrading queries.
type Resolver struct {
	cache     Store
	searcher  steam.Searcher
	overrides OverrideSource
	artwork   ArtworkFetcher
	recorder  Recorder
	logger    *slog.Logger
	now       func() time.Time
	jobs      sync.WaitGroup
}

// NewResolver wires a resolver around a cache and a search client.
func NewResolver(cache Store, searcher steam.Searcher, opts ...Option) (*Resolver, error) {
	if cache == nil {
		return nil, errors.New("resolver requires a cache")
	}
	if searcher == nil {
		return nil, errors.New("resolver requires a searcher")
	}
	r := &Resolver{
		cache:    cache,
		searcher: searcher,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")
	return r, nil
}

// ResolveID returns the app id for title or "" when nothing matched.
func (r *Resolver) ResolveID(ctx context.Context, title string) string {
	res, ok := r.Resolve(ctx, title)
	if !ok {
		return ""
	}
	return res.ID
}

// Resolve looks title up. Not-found is reported through the bool; failures
// along the way are logged rather than returned.
func (r *Resolver) Resolve(ctx context.Context, title string) (res Resolution, ok bool) {
	if strings.TrimSpace(title) == "" {
		return Resolution{}, false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	correlationID := uuid.NewString()
	ctx = services.WithRequestID(ctx, correlationID)
	ctx = services.WithTitle(ctx, title)
	logger := logging.WithContext(ctx, r.logger)

	defer func() {
		if rec := recover(); rec != nil {
			logging.ErrorWithContext(logger, "resolution panicked", "resolution_panic",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this title so the failing step can be fixed"),
				logging.String(logging.FieldImpact, "title shown without artwork"),
			)
			res, ok = Resolution{}, false
		}
	}()

	if r.overrides != nil {
		if id, found := r.overrides.Lookup(title); found {
			r.cache.Put(title, id)
			logger.Debug("resolved from override", logging.String(logging.FieldAppID, id))
			return Resolution{ID: id, Source: SourceOverride, CorrelationID: correlationID}, true
		}
	}

	if id, found := r.cache.Get(title); found {
		logger.Debug("resolved from cache", logging.String(logging.FieldAppID, id))
		return Resolution{ID: id, Source: SourceCache, CorrelationID: correlationID}, true
	}

	return r.search(ctx, logger, title, correlationID)
}

func (r *Resolver) search(ctx context.Context, logger *slog.Logger, title, correlationID string) (Resolution, bool) {
	started := r.now()
	lookup := history.Lookup{
		CorrelationID: correlationID,
		Title:         title,
		Source:        string(SourceSearch),
		Outcome:       history.OutcomeNoResults,
	}

	var (
		results []steam.Result
		query   string
		lastErr error
	)
	for _, candidate := range BuildQueryCandidates(title) {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		found, err := r.searcher.Search(ctx, candidate)
		if err != nil {
			lastErr = err
			logging.WarnWithContext(logger, "steam search failed; trying next query", "steam_search_failed",
				logging.String("query", candidate),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check network connectivity to store.steampowered.com"),
				logging.String(logging.FieldImpact, "query treated as having no results"),
			)
			continue
		}
		if len(found) > 0 {
			results, query = found, candidate
			break
		}
		logger.Debug("steam search returned no results", logging.String("query", candidate))
	}

	lookup.Query = query
	if len(results) == 0 {
		if lastErr != nil {
			lookup.Outcome = history.OutcomeFailed
			lookup.Error = lastErr.Error()
		}
		r.record(ctx, logger, lookup, started)
		logger.Info("no steam results for title")
		return Resolution{}, false
	}

	match, accepted := SelectBest(results, title)
	lookup.MatchedTitle = match.Result.Title
	lookup.Score = match.Score
	if !accepted {
		lookup.Outcome = history.OutcomeRejected
		r.record(ctx, logger, lookup, started)
		logger.Info("best steam match below threshold",
			logging.String("query", query),
			logging.String("matched_title", match.Result.Title),
			logging.Float64("score", match.Score))
		return Resolution{}, false
	}

	id := match.Result.AppID
	lookup.AppID = id
	lookup.Outcome = history.OutcomeMatched
	r.cache.Put(title, id)
	r.record(ctx, logger, lookup, started)
	r.startArtwork(ctx, logger, id)

	logger.Info("resolved steam id",
		logging.String(logging.FieldAppID, id),
		logging.String("query", query),
		logging.String("matched_title", match.Result.Title),
		logging.Float64("score", match.Score))

	return Resolution{
		ID:            id,
		Source:        SourceSearch,
		Query:         query,
		MatchedTitle:  match.Result.Title,
		Score:         match.Score,
		CorrelationID: correlationID,
	}, true
}

func (r *Resolver) record(ctx context.Context, logger *slog.Logger, lookup history.Lookup, started time.Time) {
	if r.recorder == nil {
		return
	}
	lookup.CreatedAt = r.now()
	lookup.Duration = lookup.CreatedAt.Sub(started)
	if err := r.recorder.Record(context.WithoutCancel(ctx), lookup); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the history database path and permissions"),
			logging.String(logging.FieldImpact, "lookup missing from history"),
		)
	}
}

func (r *Resolver) startArtwork(ctx context.Context, logger *slog.Logger, appID string) {
	if r.artwork == nil {
		return
	}
	jobCtx := context.WithoutCancel(ctx)
	r.jobs.Add(1)
	go func() {
		defer r.jobs.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logging.ErrorWithContext(logger, "artwork job panicked", "artwork_panic",
					logging.String(logging.FieldAppID, appID),
					logging.String("panic", fmt.Sprint(rec)),
					logging.String(logging.FieldErrorHint, "report the app id so the download can be fixed"),
					logging.String(logging.FieldImpact, "artwork not cached for this game"),
				)
			}
		}()
		if err := r.artwork.Fetch(jobCtx, appID); err != nil {
			logging.WarnWithContext(logger, "artwork download failed", "artwork_failed",
				logging.String(logging.FieldAppID, appID),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check network access to the Steam CDN"),
				logging.String(logging.FieldImpact, "presence falls back to the default image"),
			)
		}
	}()
}

// Wait blocks until pending artwork jobs finish.
func (r *Resolver) Wait() {
	r.jobs.Wait()
}
