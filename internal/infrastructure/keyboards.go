package infrastructure

import (
	"notdienst_bot/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ActionKeyboard lays out one inline button per row
func ActionKeyboard(actions []entities.Action) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(a.Label, a.Tag),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
