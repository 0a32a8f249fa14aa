package usecases

import (
	"context"
	"notdienst_bot/internal/interfaces"

	"github.com/rs/zerolog"
)

// SubscriptionChecker gates the bot behind membership in a channel
type SubscriptionChecker struct {
	messenger interfaces.Messenger
	channel   string
	logger    zerolog.Logger
}

func NewSubscriptionChecker(messenger interfaces.Messenger, channel string, logger zerolog.Logger) *SubscriptionChecker {
	return &SubscriptionChecker{
		messenger: messenger,
		channel:   channel,
		logger:    logger.With().Str("component", "subscription").Logger(),
	}
}

// IsSubscribed is true unless the user left or was kicked. Errors fail
// closed.
func (s *SubscriptionChecker) IsSubscribed(ctx context.Context, userID int64) bool {
	status, err := s.messenger.ChatMemberStatus(ctx, s.channel, userID)
	if err != nil {
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("an error occurred while checking channel subscription")
		return false
	}
	switch status {
	case "left", "kicked":
		return false
	}
	return true
}
