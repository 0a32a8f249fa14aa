package usecases

import (
	"context"
	"errors"
	"notdienst_bot/internal/entities"
	"sync"
	"time"
)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []entities.OutboundMessage
	answered []string
	status   string
	err      error
	sendErr  error
}

func (f *fakeMessenger) SendMessage(ctx context.Context, msg entities.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMessenger) AnswerAction(ctx context.Context, callbackID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, callbackID)
	return nil
}

func (f *fakeMessenger) ChatMemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	return f.status, f.err
}

type fakeGeocoder struct {
	calls  []string
	coords entities.Coordinates
	ok     bool
}

func (f *fakeGeocoder) Coordinates(ctx context.Context, postalCode string) (entities.Coordinates, bool) {
	f.calls = append(f.calls, postalCode)
	return f.coords, f.ok
}

type fakeDirectory struct {
	calls      int
	lastCoords entities.Coordinates
	lastAt     time.Time
	pharmacies []entities.Pharmacy
	ok         bool
}

func (f *fakeDirectory) OnDuty(ctx context.Context, coords entities.Coordinates, at time.Time) ([]entities.Pharmacy, bool) {
	f.calls++
	f.lastCoords = coords
	f.lastAt = at
	return f.pharmacies, f.ok
}

type fakeUsage struct {
	recorded []entities.LookupOutcome
	fail     bool
}

func (f *fakeUsage) Record(ctx context.Context, outcome entities.LookupOutcome) error {
	if f.fail {
		return errors.New("store down")
	}
	f.recorded = append(f.recorded, outcome)
	return nil
}

func (f *fakeUsage) Daily(ctx context.Context, days int) ([]entities.DailyUsage, error) {
	return nil, nil
}

func (f *fakeUsage) Close() error { return nil }

type denyAll struct{}

func (denyAll) Allow(string) bool { return false }

func (denyAll) WaitTime(string) time.Duration { return time.Second }
