package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"notdienst_bot/internal/entities"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// LongPollTimeout is how long Telegram may hold a getUpdates call open, in seconds
const LongPollTimeout = 60

// telegramHTTPTimeout must outlast a long-poll read
const telegramHTTPTimeout = (LongPollTimeout + 15) * time.Second

// TelegramClient is the single bot handle shared by the poll loop and the
// handlers. Every call goes through the retry policy.
type TelegramClient struct {
	Bot    *tgbotapi.BotAPI
	Retry  RetryPolicy
	logger zerolog.Logger
}

// NewTelegramClient connects to the public Bot API
func NewTelegramClient(token string, retry RetryPolicy, logger zerolog.Logger) (*TelegramClient, error) {
	return NewTelegramClientWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{Timeout: telegramHTTPTimeout}, retry, logger)
}

// NewTelegramClientWithEndpoint connects to a custom Bot API endpoint
// (format "https://host/bot%s/%s"), e.g. a local Bot API server.
func NewTelegramClientWithEndpoint(token, endpoint string, client *http.Client, retry RetryPolicy, logger zerolog.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("connect telegram bot: %w", classifyTelegramError(err))
	}
	return &TelegramClient{
		Bot:    bot,
		Retry:  retry,
		logger: logger.With().Str("component", "telegram").Logger(),
	}, nil
}

// Username returns the bot's @username without the at sign
func (t *TelegramClient) Username() string {
	return t.Bot.Self.UserName
}

// SendMessage sends text with optional inline action buttons
func (t *TelegramClient) SendMessage(ctx context.Context, msg entities.OutboundMessage) error {
	cfg := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	if len(msg.Actions) > 0 {
		cfg.ReplyMarkup = ActionKeyboard(msg.Actions)
	}

	_, err := Retry(ctx, t.Retry, func(context.Context) (tgbotapi.Message, error) {
		m, err := t.Bot.Send(cfg)
		return m, classifyTelegramError(err)
	})
	if err != nil {
		return fmt.Errorf("send message to chat %d: %w", msg.ChatID, err)
	}
	return nil
}

// AnswerAction acknowledges a callback query so the client stops its spinner
func (t *TelegramClient) AnswerAction(ctx context.Context, callbackID string) error {
	_, err := Retry(ctx, t.Retry, func(context.Context) (*tgbotapi.APIResponse, error) {
		resp, err := t.Bot.Request(tgbotapi.NewCallback(callbackID, ""))
		return resp, classifyTelegramError(err)
	})
	if err != nil {
		return fmt.Errorf("answer callback %s: %w", callbackID, err)
	}
	return nil
}

// ChatMemberStatus returns the member status ("member", "left", "kicked", ...)
// of userID in channel. channel is either "@username" or a numeric chat id.
func (t *TelegramClient) ChatMemberStatus(ctx context.Context, channel string, userID int64) (string, error) {
	chat, err := channelConfig(channel, userID)
	if err != nil {
		return "", err
	}

	member, err := Retry(ctx, t.Retry, func(context.Context) (tgbotapi.ChatMember, error) {
		m, err := t.Bot.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
		return m, classifyTelegramError(err)
	})
	if err != nil {
		return "", fmt.Errorf("get chat member %d in %s: %w", userID, channel, err)
	}
	return member.Status, nil
}

type updatesResult struct {
	updates []tgbotapi.Update
	err     error
}

// GetUpdates performs one long-poll read starting at offset. It is not
// retried here; the poll loop owns recovery. Cancelling ctx returns at once;
// updates from an abandoned read are not acknowledged, so Telegram delivers
// them again on the next read.
func (t *TelegramClient) GetUpdates(ctx context.Context, offset int) ([]tgbotapi.Update, error) {
	done := make(chan updatesResult, 1)
	go func() {
		updates, err := t.Bot.GetUpdates(tgbotapi.UpdateConfig{
			Offset:  offset,
			Timeout: LongPollTimeout,
			AllowedUpdates: []string{
				"message",
				"callback_query",
			},
		})
		done <- updatesResult{updates: updates, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, classifyTelegramError(r.err)
		}
		return r.updates, nil
	}
}

func channelConfig(channel string, userID int64) (tgbotapi.ChatConfigWithUser, error) {
	channel = strings.TrimSpace(channel)
	if strings.HasPrefix(channel, "@") {
		return tgbotapi.ChatConfigWithUser{SuperGroupUsername: channel, UserID: userID}, nil
	}
	id, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return tgbotapi.ChatConfigWithUser{}, fmt.Errorf("invalid channel identifier %q", channel)
	}
	return tgbotapi.ChatConfigWithUser{ChatID: id, UserID: userID}, nil
}

// classifyTelegramError turns Bot API flood-control replies into a
// RateLimitError carrying the server's retry_after.
func classifyTelegramError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return &RateLimitError{
			RetryAfter: time.Duration(apiErr.RetryAfter) * time.Second,
			Err:        err,
		}
	}
	return err
}
