package infrastructure

import (
	"notdienst_bot/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ToInboundEvent maps a Telegram update onto the bot's event variants.
// Updates the bot does not react to (stickers, edits, inline queries,
// callbacks without a chat) report ok == false.
func ToInboundEvent(u tgbotapi.Update) (entities.InboundEvent, bool) {
	switch {
	case u.Message != nil:
		m := u.Message
		if m.Chat == nil || m.Text == "" {
			return entities.InboundEvent{}, false
		}
		ev := entities.InboundEvent{
			Kind:     entities.EventText,
			ChatID:   m.Chat.ID,
			ChatKind: entities.ChatKind(m.Chat.Type),
			Text:     m.Text,
		}
		if m.From != nil {
			ev.SenderID = m.From.ID
			ev.SenderName = m.From.FirstName
		}
		if m.IsCommand() {
			ev.Kind = entities.EventCommand
			ev.Command = m.Command()
		}
		return ev, true

	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if cb.Message == nil || cb.Message.Chat == nil {
			return entities.InboundEvent{}, false
		}
		ev := entities.InboundEvent{
			Kind:       entities.EventAction,
			ChatID:     cb.Message.Chat.ID,
			ChatKind:   entities.ChatKind(cb.Message.Chat.Type),
			ActionTag:  cb.Data,
			CallbackID: cb.ID,
		}
		if cb.From != nil {
			ev.SenderID = cb.From.ID
			ev.SenderName = cb.From.FirstName
		}
		return ev, true
	}

	return entities.InboundEvent{}, false
}
