package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/moimsport/matchfeed/internal/platform/logging"
)

func TestSyncService_RunPass_SequentialAndIsolated(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{
		results: map[string][]ExternalMatch{
			"PL": {{ID: 1, UTCDate: "2026-09-01T15:00:00Z"}},
			"SA": {{ID: 2, UTCDate: "2026-09-02T15:00:00Z"}, {ID: 3, UTCDate: "2026-09-03T15:00:00Z"}},
		},
		errs: map[string]error{"CL": errors.New("upstream down")},
	}
	saver := &stubSaver{}
	svc := NewSyncService(fetcher, saver, []string{"pl", "CL", "sa"}, 10, time.UTC, logging.NewNop())

	result := svc.RunPass(context.Background())
	if !result.Started {
		t.Fatal("expected pass to start")
	}
	if result.TotalInserted != 3 {
		t.Fatalf("expected 3 inserted, got=%d", result.TotalInserted)
	}
	if len(result.FailedCodes) != 1 || result.FailedCodes[0] != "CL" {
		t.Fatalf("unexpected failed codes: %v", result.FailedCodes)
	}
	wantOrder := []string{"PL", "CL", "SA"}
	if len(fetcher.calls) != len(wantOrder) {
		t.Fatalf("expected %d fetch calls, got=%d", len(wantOrder), len(fetcher.calls))
	}
	for i, code := range wantOrder {
		if fetcher.calls[i] != code {
			t.Fatalf("fetch order %v, want %v", fetcher.calls, wantOrder)
		}
	}
	// CL failed at fetch, so only PL and SA reached the saver.
	if len(saver.calls) != 2 {
		t.Fatalf("expected 2 save calls, got=%d", len(saver.calls))
	}
}

func TestSyncService_RunPass_WindowRecomputedEachPass(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{}
	svc := NewSyncService(fetcher, &stubSaver{}, []string{"PL"}, 10, time.UTC, logging.NewNop())

	day1 := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }
	svc.RunPass(context.Background())

	day2 := day1.AddDate(0, 0, 1)
	svc.now = func() time.Time { return day2 }
	svc.RunPass(context.Background())

	if len(fetcher.windows) != 2 {
		t.Fatalf("expected 2 fetch windows, got=%d", len(fetcher.windows))
	}
	first, second := fetcher.windows[0], fetcher.windows[1]
	if !first.from.Equal(time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first window start: %v", first.from)
	}
	if !first.to.Equal(first.from.AddDate(0, 0, 10)) {
		t.Fatalf("unexpected first window end: %v", first.to)
	}
	if !second.from.Equal(first.from.AddDate(0, 0, 1)) {
		t.Fatalf("window was not recomputed: %v", second.from)
	}
}

func TestSyncService_RunPass_ReentrancyGuard(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{})
	fetcher := &stubFetcher{block: release, onCall: started}
	svc := NewSyncService(fetcher, &stubSaver{}, []string{"PL"}, 10, time.UTC, logging.NewNop())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.RunPass(context.Background())
	}()

	<-started
	overlapping := svc.RunPass(context.Background())
	if overlapping.Started {
		t.Fatal("expected overlapping pass to be rejected")
	}
	close(release)
	wg.Wait()

	// The guard resets once the first pass finishes.
	fetcher.block = nil
	if result := svc.RunPass(context.Background()); !result.Started {
		t.Fatal("expected pass to start after previous one finished")
	}
}

func TestSyncService_RunPass_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{panicOn: "PL"}
	svc := NewSyncService(fetcher, &stubSaver{}, []string{"PL"}, 10, time.UTC, logging.NewNop())

	svc.RunPass(context.Background())

	// A panicking pass must not leave the guard stuck.
	fetcher.panicOn = ""
	if result := svc.RunPass(context.Background()); !result.Started {
		t.Fatal("expected pass to start after a panicked pass")
	}
}

type fetchWindow struct {
	from time.Time
	to   time.Time
}

type stubFetcher struct {
	results map[string][]ExternalMatch
	errs    map[string]error
	panicOn string

	block  chan struct{}
	onCall chan struct{}

	calls   []string
	windows []fetchWindow
}

func (f *stubFetcher) FetchMatches(_ context.Context, code string, from, to time.Time) ([]ExternalMatch, error) {
	f.calls = append(f.calls, code)
	f.windows = append(f.windows, fetchWindow{from: from, to: to})
	if f.onCall != nil {
		close(f.onCall)
		f.onCall = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.panicOn == code {
		panic("boom")
	}
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	return f.results[code], nil
}

type stubSaver struct {
	calls []string
}

func (s *stubSaver) SaveMatches(_ context.Context, code string, items []ExternalMatch) (int, error) {
	s.calls = append(s.calls, code)
	return len(items), nil
}
