package datadog

import (
	"errors"
	"reflect"
	"testing"

	"movielens/internal/metrics"
)

type call struct {
	kind  string
	name  string
	value float64
	tags  []string
}

type spyClient struct {
	calls    []call
	closed   int
	closeErr error
}

func (s *spyClient) Count(name string, value int64, tags []string, rate float64) error {
	s.calls = append(s.calls, call{"count", name, float64(value), tags})
	return nil
}

func (s *spyClient) Histogram(name string, value float64, tags []string, rate float64) error {
	s.calls = append(s.calls, call{"histogram", name, value, tags})
	return nil
}

func (s *spyClient) Close() error {
	s.closed++
	return s.closeErr
}

func TestNewBackend_RequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatal("expected error for empty Addr")
	}
}

func TestBackend_ForwardsWithSortedTags(t *testing.T) {
	t.Parallel()

	spy := &spyClient{}
	b := &Backend{client: spy}

	b.IncCounter(metrics.SectionTotal, 2.9, metrics.Labels{"status": "success", "section": "tags.longest"})
	b.ObserveHistogram(metrics.FetchDuration, 0.25, metrics.Labels{"source": "imdb"})

	want := []call{
		{"count", metrics.SectionTotal, 2, []string{"section:tags.longest", "status:success"}},
		{"histogram", metrics.FetchDuration, 0.25, []string{"source:imdb"}},
	}
	if !reflect.DeepEqual(spy.calls, want) {
		t.Fatalf("calls = %#v\nwant %#v", spy.calls, want)
	}
}

func TestBackend_FlushClosesClient(t *testing.T) {
	t.Parallel()

	spy := &spyClient{closeErr: errors.New("closed")}
	b := &Backend{client: spy}

	if err := b.Flush(); err == nil {
		t.Fatal("expected close error to surface")
	}
	if spy.closed != 1 {
		t.Fatalf("closed = %d, want 1", spy.closed)
	}
}

func TestBackend_NilClientIsNoop(t *testing.T) {
	t.Parallel()

	b := &Backend{}
	b.IncCounter("x", 1, nil)
	b.ObserveHistogram("x", 1, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if labelsToTags(nil) != nil {
		t.Fatal("labelsToTags(nil) should be nil")
	}
}
