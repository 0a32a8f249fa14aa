package interfaces

import (
	"context"
	"notdienst_bot/internal/entities"
	"time"
)

// Messenger is the chat transport the handlers talk to
type Messenger interface {
	SendMessage(ctx context.Context, msg entities.OutboundMessage) error
	AnswerAction(ctx context.Context, callbackID string) error
	ChatMemberStatus(ctx context.Context, channel string, userID int64) (string, error)
}

// Geocoder resolves a postal code. ok is false when nothing usable came back.
type Geocoder interface {
	Coordinates(ctx context.Context, postalCode string) (coords entities.Coordinates, ok bool)
}

// PharmacyDirectory lists on-duty pharmacies. ok is false on failure, which is
// distinct from an empty list.
type PharmacyDirectory interface {
	OnDuty(ctx context.Context, coords entities.Coordinates, at time.Time) (pharmacies []entities.Pharmacy, ok bool)
}

// UsageStore keeps aggregated search outcomes
type UsageStore interface {
	Record(ctx context.Context, outcome entities.LookupOutcome) error
	Daily(ctx context.Context, days int) ([]entities.DailyUsage, error)
	Close() error
}
