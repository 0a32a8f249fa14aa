package usecases

import (
	"context"
	"fmt"
	"notdienst_bot/internal/config"
	"notdienst_bot/internal/entities"
	"notdienst_bot/internal/infrastructure"
	"notdienst_bot/internal/interfaces"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ActionNewSearch is the callback tag of the "start new search" button
const ActionNewSearch = "start_new_search"

// ThrottleNoticeInterval is the least time between two "too many requests"
// replies to the same chat
const ThrottleNoticeInterval = 30 * time.Second

// InboundLimiter throttles events per chat. A nil limiter answers everything.
type InboundLimiter interface {
	Allow(key string) bool
	WaitTime(key string) time.Duration
}

type eventHandler func(ctx context.Context, ev entities.InboundEvent) error

// PharmacyBot turns inbound chat events into replies. It keeps no state
// between events.
type PharmacyBot struct {
	Messenger     interfaces.Messenger
	Geocoder      interfaces.Geocoder
	Directory     interfaces.PharmacyDirectory
	Usage         interfaces.UsageStore
	Subscriptions *SubscriptionChecker
	Limiter       InboundLimiter
	Messages      config.Messages
	GateSearch    bool
	Now           func() time.Time

	logger   zerolog.Logger
	handlers map[entities.EventKind]eventHandler

	noticeMu sync.Mutex
	noticed  map[int64]time.Time
}

// BotDeps groups the collaborators of a PharmacyBot
type BotDeps struct {
	Messenger  interfaces.Messenger
	Geocoder   interfaces.Geocoder
	Directory  interfaces.PharmacyDirectory
	Usage      interfaces.UsageStore
	Limiter    InboundLimiter
	Messages   config.Messages
	Channel    string
	GateSearch bool
}

func NewPharmacyBot(deps BotDeps, logger zerolog.Logger) *PharmacyBot {
	b := &PharmacyBot{
		Messenger:     deps.Messenger,
		Geocoder:      deps.Geocoder,
		Directory:     deps.Directory,
		Usage:         deps.Usage,
		Subscriptions: NewSubscriptionChecker(deps.Messenger, deps.Channel, logger),
		Limiter:       deps.Limiter,
		Messages:      deps.Messages,
		GateSearch:    deps.GateSearch,
		Now:           time.Now,
		logger:        logger.With().Str("component", "bot").Logger(),
		noticed:       make(map[int64]time.Time),
	}
	b.handlers = map[entities.EventKind]eventHandler{
		entities.EventCommand: b.handleCommand,
		entities.EventText:    b.handleText,
		entities.EventAction:  b.handleAction,
	}
	return b
}

// HandleUpdate is the poll loop entry point
func (b *PharmacyBot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	ev, ok := infrastructure.ToInboundEvent(u)
	if !ok {
		return
	}

	log := b.logger.With().
		Str("event_id", uuid.NewString()).
		Int("update_id", u.UpdateID).
		Logger()
	ctx = log.WithContext(ctx)

	if err := b.Handle(ctx, ev); err != nil {
		log.Error().Err(err).Str("kind", string(ev.Kind)).Int64("chat_id", ev.ChatID).Msg("failed to handle event")
	}
}

// Handle dispatches one event. Events from anything but a private chat are
// dropped without a reply. A throttled chat gets one "too many requests"
// reply per ThrottleNoticeInterval instead of an answer.
func (b *PharmacyBot) Handle(ctx context.Context, ev entities.InboundEvent) error {
	if !ev.IsPrivate() {
		return nil
	}

	log := zerolog.Ctx(ctx)
	if b.Limiter != nil {
		key := strconv.FormatInt(ev.ChatID, 10)
		if !b.Limiter.Allow(key) {
			log.Warn().
				Int64("chat_id", ev.ChatID).
				Dur("retry_in", b.Limiter.WaitTime(key)).
				Msg("inbound rate limit exceeded")
			return b.throttled(ctx, ev)
		}
	}

	h, ok := b.handlers[ev.Kind]
	if !ok {
		return fmt.Errorf("no handler for event kind %q", ev.Kind)
	}
	log.Debug().Str("kind", string(ev.Kind)).Int64("chat_id", ev.ChatID).Msg("dispatching event")
	return h(ctx, ev)
}

func (b *PharmacyBot) handleCommand(ctx context.Context, ev entities.InboundEvent) error {
	if ev.Command != "start" {
		// any other command is just text that is not a postal code
		return b.handleText(ctx, ev)
	}

	if b.Subscriptions.IsSubscribed(ctx, ev.SenderID) {
		return b.reply(ctx, ev.ChatID, fmt.Sprintf(b.Messages.Greeting, ev.SenderName))
	}
	return b.reply(ctx, ev.ChatID, b.Messages.NotSubscribed)
}

func (b *PharmacyBot) handleText(ctx context.Context, ev entities.InboundEvent) error {
	postalCode := strings.TrimSpace(ev.Text)
	if !IsPostalCode(postalCode) {
		b.record(ctx, entities.OutcomeInvalidInput)
		return b.reply(ctx, ev.ChatID, b.Messages.InvalidPostal)
	}

	if b.GateSearch && !b.Subscriptions.IsSubscribed(ctx, ev.SenderID) {
		return b.reply(ctx, ev.ChatID, b.Messages.NotSubscribed)
	}

	coords, ok := b.Geocoder.Coordinates(ctx, postalCode)
	if !ok {
		b.record(ctx, entities.OutcomeNotGeocoded)
		return b.reply(ctx, ev.ChatID, b.Messages.NotGeocoded)
	}

	pharmacies, ok := b.Directory.OnDuty(ctx, coords, b.Now())
	switch {
	case !ok:
		b.record(ctx, entities.OutcomeUpstreamError)
	case len(pharmacies) == 0:
		b.record(ctx, entities.OutcomeEmpty)
	default:
		b.record(ctx, entities.OutcomeFound)
	}

	chunks := splitMessage(FormatPharmacies(b.Messages, pharmacies), maxMessageRunes)
	for i, text := range chunks {
		msg := entities.OutboundMessage{ChatID: ev.ChatID, Text: text}
		if i == len(chunks)-1 {
			msg.Actions = []entities.Action{{Label: b.Messages.NewSearchButton, Tag: ActionNewSearch}}
		}
		if err := b.Messenger.SendMessage(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *PharmacyBot) handleAction(ctx context.Context, ev entities.InboundEvent) error {
	if err := b.Messenger.AnswerAction(ctx, ev.CallbackID); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to acknowledge callback")
	}

	if ev.ActionTag != ActionNewSearch {
		zerolog.Ctx(ctx).Debug().Str("tag", ev.ActionTag).Msg("ignoring unknown action")
		return nil
	}
	return b.reply(ctx, ev.ChatID, b.Messages.NewSearchPrompt)
}

func (b *PharmacyBot) throttled(ctx context.Context, ev entities.InboundEvent) error {
	if ev.Kind == entities.EventAction {
		if err := b.Messenger.AnswerAction(ctx, ev.CallbackID); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to acknowledge callback")
		}
	}
	if !b.claimNotice(ev.ChatID) {
		return nil
	}
	return b.reply(ctx, ev.ChatID, b.Messages.RateLimited)
}

// claimNotice reports whether chatID may be told it is throttled now and
// forgets notices older than ThrottleNoticeInterval
func (b *PharmacyBot) claimNotice(chatID int64) bool {
	now := b.Now()

	b.noticeMu.Lock()
	defer b.noticeMu.Unlock()

	for id, at := range b.noticed {
		if now.Sub(at) >= ThrottleNoticeInterval {
			delete(b.noticed, id)
		}
	}
	if _, ok := b.noticed[chatID]; ok {
		return false
	}
	b.noticed[chatID] = now
	return true
}

func (b *PharmacyBot) reply(ctx context.Context, chatID int64, text string) error {
	return b.Messenger.SendMessage(ctx, entities.OutboundMessage{ChatID: chatID, Text: text})
}

func (b *PharmacyBot) record(ctx context.Context, outcome entities.LookupOutcome) {
	if b.Usage == nil {
		return
	}
	if err := b.Usage.Record(ctx, outcome); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("outcome", string(outcome)).Msg("failed to record usage")
	}
}

// IsPostalCode reports whether s is a non-empty run of digits
func IsPostalCode(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
