package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Messages holds every text the bot sends. Greeting is a format string with
// one %s for the user's first name.
type Messages struct {
	Greeting        string `yaml:"greeting"`
	NotSubscribed   string `yaml:"not_subscribed"`
	InvalidPostal   string `yaml:"invalid_postal_code"`
	NotGeocoded     string `yaml:"not_geocoded"`
	NewSearchPrompt string `yaml:"new_search_prompt"`
	NewSearchButton string `yaml:"new_search_button"`
	ResultsHeader   string `yaml:"results_header"`
	NotFound        string `yaml:"not_found"`
	NameLabel       string `yaml:"name_label"`
	AddressLabel    string `yaml:"address_label"`
	PhoneLabel      string `yaml:"phone_label"`
	ServiceLabel    string `yaml:"service_time_label"`
	RateLimited     string `yaml:"rate_limited"`
}

// DefaultMessages returns the built-in bilingual texts for channel
func DefaultMessages(channel string) Messages {
	return Messages{
		Greeting:        "Привет, %s, Круто, что ты с нами! Введите индекс города, чтобы начать.",
		NotSubscribed:   "Для доступа к нашему боту, подпишитесь на наш чат " + channel,
		InvalidPostal:   "Пожалуйста, введите корректный индекс города.",
		NotGeocoded:     "Не удалось получить координаты для указанного индекса.",
		NewSearchPrompt: "Введите индекс города, чтобы начать новый поиск.",
		NewSearchButton: "Начать новый поиск",
		ResultsHeader:   "Дежурные аптеки:/Pharmacies on duty:",
		NotFound:        "Информация о дежурных аптеках не найдена./Information about pharmacies on duty was not found.",
		NameLabel:       "Название/ Title",
		AddressLabel:    "Адрес:/ Address",
		PhoneLabel:      "Телефон/ phone number",
		ServiceLabel:    "Время обслуживания/ Service time",
		RateLimited:     "Слишком много запросов, попробуйте чуть позже./Too many requests, please try again shortly.",
	}
}

// LoadMessages overlays the YAML file at path onto the defaults. Keys absent
// from the file keep their default text. An empty path returns the defaults.
func LoadMessages(path, channel string) (Messages, error) {
	m := DefaultMessages(channel)
	if path == "" {
		return m, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return m, fmt.Errorf("read messages file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return m, fmt.Errorf("parse messages file %s: %w", path, err)
	}
	if err := checkGreeting(m.Greeting); err != nil {
		return m, fmt.Errorf("messages file %s: %w", path, err)
	}
	return m, nil
}

// checkGreeting requires exactly one %s and no other verbs, since the
// greeting is formatted with the sender's first name
func checkGreeting(g string) error {
	verbs := strings.ReplaceAll(g, "%%", "")
	if strings.Count(verbs, "%") != 1 || strings.Count(verbs, "%s") != 1 {
		return fmt.Errorf("greeting must contain exactly one %%s placeholder, got %q", g)
	}
	return nil
}
