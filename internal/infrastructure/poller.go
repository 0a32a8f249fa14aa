package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// DefaultPollFallbackDelay is the pause after a poll failure that carries no
// server-suggested wait
const DefaultPollFallbackDelay = 15 * time.Second

// UpdateSource performs one long-poll read
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int) ([]tgbotapi.Update, error)
}

// UpdateHandler processes a single update
type UpdateHandler func(ctx context.Context, update tgbotapi.Update)

// Poller keeps the long-poll connection alive and hands every update to
// Handler on its own goroutine.
type Poller struct {
	Source        UpdateSource
	Handler       UpdateHandler
	FallbackDelay time.Duration
	Sleep         SleepFunc

	logger zerolog.Logger
	offset int
	wg     sync.WaitGroup
}

func NewPoller(source UpdateSource, handler UpdateHandler, logger zerolog.Logger) *Poller {
	return &Poller{
		Source:        source,
		Handler:       handler,
		FallbackDelay: DefaultPollFallbackDelay,
		Sleep:         SleepContext,
		logger:        logger.With().Str("component", "poller").Logger(),
	}
}

// Run polls until ctx is cancelled and then waits for in-flight handlers.
// Failures never end the loop: a rate limit waits the server's retry_after,
// anything else waits FallbackDelay.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()

	p.logger.Info().Msg("started polling")
	for {
		if err := ctx.Err(); err != nil {
			p.logger.Info().Msg("stopped polling")
			return err
		}

		updates, err := p.Source.GetUpdates(ctx, p.offset)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			// a cancelled sleep is picked up by the ctx check above
			_ = p.Sleep(ctx, p.recoveryDelay(err))
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= p.offset {
				p.offset = u.UpdateID + 1
			}
			p.dispatch(ctx, u)
		}
	}
}

// Offset is the next update id the loop will ask for
func (p *Poller) Offset() int {
	return p.offset
}

func (p *Poller) recoveryDelay(err error) time.Duration {
	if rl, ok := AsRateLimit(err); ok && rl.RetryAfter > 0 {
		p.logger.Warn().Err(err).Dur("sleep", rl.RetryAfter).Msg("rate limit exceeded")
		return rl.RetryAfter
	}
	p.logger.Error().Err(err).Dur("sleep", p.FallbackDelay).Msg("polling failed")
	return p.FallbackDelay
}

func (p *Poller) dispatch(ctx context.Context, u tgbotapi.Update) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error().
					Err(fmt.Errorf("panic: %v", r)).
					Int("update_id", u.UpdateID).
					Msg("update handler panicked")
			}
		}()
		p.Handler(ctx, u)
	}()
}
