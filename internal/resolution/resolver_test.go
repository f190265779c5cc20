package resolution

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gfnpresence/internal/fetch"
	"gfnpresence/internal/history"
	"gfnpresence/internal/steam"
)

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]string
	puts    int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: map[string]string{}}
}

func (s *memoryStore) Get(title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entries[title]
	return id, ok
}

func (s *memoryStore) Put(title, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[title] = id
	s.puts++
}

type stubSearcher struct {
	mu      sync.Mutex
	results map[string][]steam.Result
	errs    map[string]error
	panicOn string
	queries []string
}

func (s *stubSearcher) Search(_ context.Context, query string) ([]steam.Result, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()
	if query == s.panicOn {
		panic("parser exploded")
	}
	if err := s.errs[query]; err != nil {
		return nil, err
	}
	return s.results[query], nil
}

func (s *stubSearcher) calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type mapOverrides map[string]string

func (m mapOverrides) Lookup(title string) (string, bool) {
	id, ok := m[title]
	return id, ok
}

type recordingArtwork struct {
	mu  sync.Mutex
	ids []string
	err error
}

func (a *recordingArtwork) Fetch(_ context.Context, appID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.ids = append(a.ids, appID)
	return a.err
}

type recordingJournal struct {
	mu      sync.Mutex
	lookups []history.Lookup
}

func (j *recordingJournal) Record(_ context.Context, lookup history.Lookup) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lookups = append(j.lookups, lookup)
	return nil
}

func newTestResolver(t *testing.T, store Store, searcher steam.Searcher, opts ...Option) *Resolver {
	t.Helper()
	r, err := NewResolver(store, searcher, opts...)
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return r
}

func TestResolveOverrideSkipsNetwork(t *testing.T) {
	store := newMemoryStore()
	searcher := &stubSearcher{}
	r := newTestResolver(t, store, searcher, WithOverrides(mapOverrides{"Halo Infinite": "1240440"}))

	res, ok := r.Resolve(context.Background(), "Halo Infinite")
	if !ok || res.ID != "1240440" || res.Source != SourceOverride {
		t.Fatalf("unexpected resolution %+v ok=%v", res, ok)
	}
	if res.CorrelationID == "" {
		t.Fatal("expected correlation id")
	}
	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("override must not search, got %q", calls)
	}
	if id, _ := store.Get("Halo Infinite"); id != "1240440" {
		t.Fatalf("override should be cached, got %q", id)
	}
}

func TestResolveCacheHitSkipsNetwork(t *testing.T) {
	store := newMemoryStore()
	store.Put("Dota 2", "570")
	searcher := &stubSearcher{}
	r := newTestResolver(t, store, searcher)

	if id := r.ResolveID(context.Background(), "Dota 2"); id != "570" {
		t.Fatalf("ResolveID = %q, want 570", id)
	}
	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("cache hit must not search, got %q", calls)
	}
}

func TestResolveDegradesQueriesAndCaches(t *testing.T) {
	store := newMemoryStore()
	searcher := &stubSearcher{
		results: map[string][]steam.Result{
			"ARC Raiders": {
				{AppID: "999", Title: "Raiders of the Lost Ark"},
				{AppID: "1808500", Title: "ARC Raiders"},
			},
		},
		errs: map[string]error{
			"ARC Raiders Playtest": &fetch.NetworkError{URL: "u", Attempts: 4, Err: errors.New("timeout")},
		},
	}
	artwork := &recordingArtwork{}
	journal := &recordingJournal{}
	r := newTestResolver(t, store, searcher, WithArtwork(artwork), WithRecorder(journal))

	res, ok := r.Resolve(context.Background(), "ARC Raiders Playtest")
	r.Wait()
	if !ok {
		t.Fatal("expected a match")
	}
	if res.ID != "1808500" || res.Source != SourceSearch || res.Query != "ARC Raiders" {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Score != 70 {
		t.Fatalf("expected score 70, got %v", res.Score)
	}
	if calls := searcher.calls(); len(calls) != 2 {
		t.Fatalf("expected search to stop after first non-empty query, got %q", calls)
	}
	if id, _ := store.Get("ARC Raiders Playtest"); id != "1808500" {
		t.Fatalf("expected cached id, got %q", id)
	}
	if len(artwork.ids) != 1 || artwork.ids[0] != "1808500" {
		t.Fatalf("expected artwork job for 1808500, got %v", artwork.ids)
	}
	if len(journal.lookups) != 1 || journal.lookups[0].Outcome != history.OutcomeMatched {
		t.Fatalf("expected matched journal entry, got %+v", journal.lookups)
	}
}

func TestResolveRejectionIsNotCached(t *testing.T) {
	store := newMemoryStore()
	searcher := &stubSearcher{
		results: map[string][]steam.Result{
			"Obscure Indie Thing": {{AppID: "1", Title: "Completely Different"}},
		},
	}
	journal := &recordingJournal{}
	artwork := &recordingArtwork{}
	r := newTestResolver(t, store, searcher, WithRecorder(journal), WithArtwork(artwork))

	if _, ok := r.Resolve(context.Background(), "Obscure Indie Thing"); ok {
		t.Fatal("expected no match")
	}
	r.Wait()
	if store.puts != 0 {
		t.Fatalf("rejections must not be cached, got %d puts", store.puts)
	}
	if len(artwork.ids) != 0 {
		t.Fatalf("rejections must not fetch artwork, got %v", artwork.ids)
	}
	if len(journal.lookups) != 1 || journal.lookups[0].Outcome != history.OutcomeRejected {
		t.Fatalf("expected rejected journal entry, got %+v", journal.lookups)
	}
}

func TestResolveExhaustionReportsFailure(t *testing.T) {
	searcher := &stubSearcher{errs: map[string]error{
		"Halo Infinite": errors.New("offline"),
		"Halo":          errors.New("offline"),
	}}
	journal := &recordingJournal{}
	r := newTestResolver(t, newMemoryStore(), searcher, WithRecorder(journal))

	if id := r.ResolveID(context.Background(), "Halo Infinite"); id != "" {
		t.Fatalf("expected not found, got %q", id)
	}
	if calls := searcher.calls(); len(calls) != 2 {
		t.Fatalf("expected every candidate to be tried, got %q", calls)
	}
	if len(journal.lookups) != 1 || journal.lookups[0].Outcome != history.OutcomeFailed || journal.lookups[0].Error != "offline" {
		t.Fatalf("expected failed journal entry, got %+v", journal.lookups)
	}
}

func TestResolveRecoversPanics(t *testing.T) {
	searcher := &stubSearcher{panicOn: "Halo"}
	r := newTestResolver(t, newMemoryStore(), searcher)
	if _, ok := r.Resolve(context.Background(), "Halo"); ok {
		t.Fatal("panic should resolve to not found")
	}
}

func TestResolveBlankTitle(t *testing.T) {
	searcher := &stubSearcher{}
	r := newTestResolver(t, newMemoryStore(), searcher)
	if _, ok := r.Resolve(context.Background(), "   "); ok {
		t.Fatal("blank title should not resolve")
	}
	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("blank title must not search, got %q", calls)
	}
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	searcher := &stubSearcher{}
	r := newTestResolver(t, newMemoryStore(), searcher)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, ok := r.Resolve(ctx, "Halo Infinite"); ok {
		t.Fatal("cancelled context should not resolve")
	}
	if calls := searcher.calls(); len(calls) != 0 {
		t.Fatalf("cancelled context must not search, got %q", calls)
	}
}

func TestResolveJournalDuration(t *testing.T) {
	base := time.Unix(1_760_000_000, 0)
	ticks := 0
	clock := func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}
	searcher := &stubSearcher{results: map[string][]steam.Result{"Portal 2": {{AppID: "620", Title: "Portal 2"}}}}
	journal := &recordingJournal{}
	r := newTestResolver(t, newMemoryStore(), searcher, WithRecorder(journal), WithClock(clock))

	if id := r.ResolveID(context.Background(), "Portal 2"); id != "620" {
		t.Fatalf("ResolveID = %q", id)
	}
	if got := journal.lookups[0].Duration; got != time.Second {
		t.Fatalf("expected 1s duration, got %v", got)
	}
}

func TestNewResolverRequiresCollaborators(t *testing.T) {
	if _, err := NewResolver(nil, &stubSearcher{}); err == nil {
		t.Fatal("expected error without cache")
	}
	if _, err := NewResolver(newMemoryStore(), nil); err == nil {
		t.Fatal("expected error without searcher")
	}
}
