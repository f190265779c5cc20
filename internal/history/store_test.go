package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	base := time.UnixMilli(1_760_000_000_000)

	lookups := []Lookup{
		{Title: "Halo Infinite", Query: "Halo Infinite", AppID: "1240440", MatchedTitle: "Halo Infinite", Score: 100, Source: "search", Outcome: OutcomeMatched, Duration: 120 * time.Millisecond, CreatedAt: base},
		{Title: "Unknown Thing", Query: "Unknown", Source: "search", Outcome: OutcomeNoResults, CreatedAt: base.Add(time.Second)},
		{Title: "Almost", Query: "Almost", Score: 12.5, Source: "search", Outcome: OutcomeRejected, CreatedAt: base.Add(2 * time.Second)},
	}
	for _, lookup := range lookups {
		if err := store.Record(ctx, lookup); err != nil {
			t.Fatalf("Record returned error: %v", err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 lookups, got %d", len(recent))
	}
	if recent[0].Title != "Almost" || recent[0].Outcome != OutcomeRejected || recent[0].Score != 12.5 {
		t.Fatalf("unexpected newest lookup %+v", recent[0])
	}
	if recent[1].Title != "Unknown Thing" {
		t.Fatalf("unexpected second lookup %+v", recent[1])
	}

	all, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	oldest := all[len(all)-1]
	if oldest.AppID != "1240440" || oldest.Duration != 120*time.Millisecond || !oldest.CreatedAt.Equal(base) {
		t.Fatalf("unexpected oldest lookup %+v", oldest)
	}
}

func TestReopenKeepsJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := store.Record(context.Background(), Lookup{Title: "Dota 2", Source: "search", Outcome: OutcomeMatched}); err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(recent) != 1 || recent[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected journal after reopen %+v", recent)
	}
}

func TestPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	now := time.Now()
	_ = store.Record(ctx, Lookup{Title: "old", Source: "search", Outcome: OutcomeFailed, CreatedAt: now.Add(-48 * time.Hour)})
	_ = store.Record(ctx, Lookup{Title: "new", Source: "search", Outcome: OutcomeMatched, CreatedAt: now})

	removed, err := store.Prune(ctx, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 row removed, got %d", removed)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(" "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestRetryOnBusyStopsOnOtherErrors(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := retryOnBusy(context.Background(), func() error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected single call returning boom, got %v after %d calls", err, calls)
	}
}
