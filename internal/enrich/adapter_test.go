package enrich

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
)

// fakeSource serves canned pages and counts calls per id.
type fakeSource struct {
	mu    sync.Mutex
	pages map[string]map[string]string
	fail  map[string]error
	calls map[string]int
	gate  chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages: map[string]map[string]string{
			"0499549": {"Director": "James Cameron", "Budget": "$237,000,000 (estimated)", "Runtime": "2 hours 42 minutes"},
			"0114709": {"Director": "John Lasseter", "Runtime": "1 hour 21 minutes"},
		},
		fail:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeSource) Fetch(ctx context.Context, id string) (map[string]string, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if err := f.fail[id]; err != nil {
		return nil, err
	}
	return f.pages[id], nil
}

func (f *fakeSource) callsFor(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func TestFetchFields_ProjectsRequestedNames(t *testing.T) {
	t.Parallel()

	a := New(newFakeSource())
	got, err := a.FetchFields(context.Background(), "0499549", "Director", "Gross worldwide")
	if err != nil {
		t.Fatalf("FetchFields: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d fields, want 2: %v", len(got), got)
	}
	if f := got.Get("Director"); !f.Present || f.Text != "James Cameron" {
		t.Fatalf("Director = %#v", f)
	}
	if f := got.Get("Gross worldwide"); f.Present {
		t.Fatalf("Gross worldwide should be absent, got %#v", f)
	}
	if f := got.Get("Budget"); f != Absent {
		t.Fatalf("unrequested field leaked: %#v", f)
	}
}

func TestFetchFields_OneRequestPerID(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	a := New(src)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := a.FetchFields(ctx, "0499549", "Budget"); err != nil {
			t.Fatalf("FetchFields: %v", err)
		}
		if _, err := a.FetchFields(ctx, "0499549", "Runtime", "Director"); err != nil {
			t.Fatalf("FetchFields: %v", err)
		}
	}
	if got := src.callsFor("0499549"); got != 1 {
		t.Fatalf("source called %d times, want 1", got)
	}
	if a.Requests() != 1 || a.Len() != 1 || !a.Cached("0499549") {
		t.Fatalf("Requests=%d Len=%d", a.Requests(), a.Len())
	}
}

func TestFetchFields_ConcurrentCallersShareOneRequest(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.gate = make(chan struct{})
	a := New(src)

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.FetchFields(context.Background(), "0114709", "Director"); err != nil {
				failures.Add(1)
			}
		}()
	}
	close(src.gate)
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d callers failed", failures.Load())
	}
	if got := src.callsFor("0114709"); got != 1 {
		t.Fatalf("source called %d times, want 1", got)
	}
}

func TestFetchFields_FailureNotCached(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	boom := errors.New("boom")
	src.fail["0499549"] = boom
	a := New(src)

	if _, err := a.FetchFields(context.Background(), "0499549", "Budget"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if a.Cached("0499549") {
		t.Fatal("failed fetch must not be cached")
	}

	delete(src.fail, "0499549")
	if _, err := a.FetchFields(context.Background(), "0499549", "Budget"); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := src.callsFor("0499549"); got != 2 {
		t.Fatalf("source called %d times, want 2", got)
	}
}

func TestFetchFields_UnknownIDIsCachedEmpty(t *testing.T) {
	t.Parallel()

	a := New(newFakeSource())
	got, err := a.FetchFields(context.Background(), "9999999", "Director")
	if err != nil {
		t.Fatalf("FetchFields: %v", err)
	}
	if got.Get("Director").Present {
		t.Fatalf("expected absent Director, got %#v", got)
	}
	if !a.Cached("9999999") {
		t.Fatal("empty page should still be cached")
	}
}

func TestWarm(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	a := New(src)

	var mu sync.Mutex
	done := map[string]error{}
	ids := []string{"0499549", "0114709", "0499549"}
	err := a.Warm(context.Background(), ids, 4, func(id string, err error) {
		mu.Lock()
		defer mu.Unlock()
		done[id] = err
	})
	if err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if len(done) != 2 {
		t.Fatalf("onDone saw %d ids, want 2", len(done))
	}
	if a.Requests() != 2 {
		t.Fatalf("Requests = %d, want 2", a.Requests())
	}

	// Warm again: everything is cached.
	if err := a.Warm(context.Background(), ids, 1, nil); err != nil {
		t.Fatalf("Warm: %v", err)
	}
	if a.Requests() != 2 {
		t.Fatalf("Requests after second warm = %d, want 2", a.Requests())
	}
}

func TestWarm_ReturnsFirstError(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	src.fail["0114709"] = fmt.Errorf("status 503")
	a := New(src)

	err := a.Warm(context.Background(), []string{"0114709"}, 0, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestNew_SourceLabel(t *testing.T) {
	t.Parallel()

	if got := New(newFakeSource()).label; got != "remote" {
		t.Fatalf("label = %q, want remote", got)
	}
	if got := New(NewIMDB(nil, "")).label; got != "imdb" {
		t.Fatalf("label = %q, want imdb", got)
	}
}
