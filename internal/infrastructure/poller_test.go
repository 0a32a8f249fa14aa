package infrastructure

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type pollStep struct {
	updates []tgbotapi.Update
	err     error
}

// scriptedSource replays steps and cancels the loop once they run out
type scriptedSource struct {
	mu      sync.Mutex
	steps   []pollStep
	offsets []int
	cancel  context.CancelFunc
}

func (s *scriptedSource) GetUpdates(ctx context.Context, offset int) ([]tgbotapi.Update, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.offsets = append(s.offsets, offset)
	if len(s.steps) == 0 {
		s.cancel()
		return nil, ctx.Err()
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	return step.updates, step.err
}

func runPoller(t *testing.T, steps []pollStep, handler UpdateHandler) (*Poller, *scriptedSource, *sleepRecorder) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := &scriptedSource{steps: steps, cancel: cancel}
	if handler == nil {
		handler = func(context.Context, tgbotapi.Update) {}
	}
	rec := &sleepRecorder{}
	p := NewPoller(src, handler, zerolog.Nop())
	p.Sleep = rec.sleep

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("poller did not stop")
	}
	return p, src, rec
}

func TestPoller_RecoversFromFailures(t *testing.T) {
	_, _, rec := runPoller(t, []pollStep{
		{err: &RateLimitError{RetryAfter: 7 * time.Second}},
		{err: errors.New("connection refused")},
		{err: &RateLimitError{}},
		{updates: nil},
	}, nil)

	want := []time.Duration{7 * time.Second, DefaultPollFallbackDelay, DefaultPollFallbackDelay}
	if len(rec.calls) != len(want) {
		t.Fatalf("sleeps = %v, want %v", rec.calls, want)
	}
	for i := range want {
		if rec.calls[i] != want[i] {
			t.Errorf("sleep %d = %v, want %v", i, rec.calls[i], want[i])
		}
	}
}

func TestPoller_AdvancesOffsetAndDispatchesAll(t *testing.T) {
	var mu sync.Mutex
	var seen []int

	p, src, _ := runPoller(t, []pollStep{
		{updates: []tgbotapi.Update{{UpdateID: 10}, {UpdateID: 11}}},
		{updates: []tgbotapi.Update{{UpdateID: 12}}},
	}, func(_ context.Context, u tgbotapi.Update) {
		mu.Lock()
		seen = append(seen, u.UpdateID)
		mu.Unlock()
	})

	if p.Offset() != 13 {
		t.Errorf("offset = %d, want 13", p.Offset())
	}
	wantOffsets := []int{0, 12, 13}
	if len(src.offsets) != len(wantOffsets) {
		t.Fatalf("offsets = %v, want %v", src.offsets, wantOffsets)
	}
	for i := range wantOffsets {
		if src.offsets[i] != wantOffsets[i] {
			t.Errorf("offsets = %v, want %v", src.offsets, wantOffsets)
			break
		}
	}

	sort.Ints(seen)
	if len(seen) != 3 || seen[0] != 10 || seen[2] != 12 {
		t.Errorf("dispatched %v", seen)
	}
}

func TestPoller_SurvivesHandlerPanic(t *testing.T) {
	var mu sync.Mutex
	handled := 0

	runPoller(t, []pollStep{
		{updates: []tgbotapi.Update{{UpdateID: 1}}},
		{updates: []tgbotapi.Update{{UpdateID: 2}}},
	}, func(_ context.Context, u tgbotapi.Update) {
		mu.Lock()
		handled++
		mu.Unlock()
		if u.UpdateID == 1 {
			panic("handler bug")
		}
	})

	if handled != 2 {
		t.Errorf("handled = %d, want 2", handled)
	}
}
