package infrastructure

import (
	"notdienst_bot/internal/entities"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func textUpdate(chatType, text string) tgbotapi.Update {
	return tgbotapi.Update{
		Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 7, FirstName: "Ann"},
			Chat: &tgbotapi.Chat{ID: 99, Type: chatType},
			Text: text,
		},
	}
}

func TestToInboundEvent_Text(t *testing.T) {
	ev, ok := ToInboundEvent(textUpdate("private", "10115"))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != entities.EventText || ev.Text != "10115" || ev.ChatID != 99 || ev.SenderID != 7 || ev.SenderName != "Ann" {
		t.Errorf("unexpected event %+v", ev)
	}
	if !ev.IsPrivate() {
		t.Error("expected private chat")
	}
}

func TestToInboundEvent_Command(t *testing.T) {
	u := textUpdate("private", "/start@notdienst_bot")
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len("/start@notdienst_bot")}}

	ev, ok := ToInboundEvent(u)
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != entities.EventCommand || ev.Command != "start" {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestToInboundEvent_Group(t *testing.T) {
	ev, ok := ToInboundEvent(textUpdate("group", "10115"))
	if !ok {
		t.Fatal("expected event")
	}
	if ev.IsPrivate() {
		t.Error("group chat reported as private")
	}
}

func TestToInboundEvent_Callback(t *testing.T) {
	ev, ok := ToInboundEvent(tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb1",
			From:    &tgbotapi.User{ID: 7},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 99, Type: "private"}},
			Data:    "start_new_search",
		},
	})
	if !ok {
		t.Fatal("expected event")
	}
	if ev.Kind != entities.EventAction || ev.ActionTag != "start_new_search" || ev.CallbackID != "cb1" || ev.ChatID != 99 {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestToInboundEvent_Ignored(t *testing.T) {
	cases := []tgbotapi.Update{
		{},
		{Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 1, Type: "private"}}},
		{CallbackQuery: &tgbotapi.CallbackQuery{ID: "x", Data: "start_new_search"}},
	}
	for i, u := range cases {
		if _, ok := ToInboundEvent(u); ok {
			t.Errorf("case %d: expected update to be ignored", i)
		}
	}
}
