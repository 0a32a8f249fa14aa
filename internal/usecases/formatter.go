package usecases

import (
	"notdienst_bot/internal/config"
	"notdienst_bot/internal/entities"
	"strings"
	"unicode/utf8"
)

const googleMapsSearchURL = "https://www.google.com/maps/search/?api=1&query="

// maxMessageRunes stays below Telegram's 4096 character limit
const maxMessageRunes = 4000

// FormatPharmacies renders the reply for a lookup. A nil list (lookup failed)
// and an empty list (nothing on duty) produce the same text.
func FormatPharmacies(m config.Messages, pharmacies []entities.Pharmacy) string {
	if len(pharmacies) == 0 {
		return m.NotFound
	}

	var sb strings.Builder
	sb.WriteString(m.ResultsHeader)
	sb.WriteString("\n\n")
	for _, p := range pharmacies {
		address := p.Address()
		sb.WriteString(m.NameLabel + ": " + p.Name + "\n")
		sb.WriteString(m.AddressLabel + ": " + address + "\n")
		sb.WriteString(m.PhoneLabel + ": " + p.Phone + "\n")
		sb.WriteString(m.ServiceLabel + ": " + p.ServiceTime + "\n")
		sb.WriteString("Google Maps: " + MapsLink(address) + "\n\n")
	}
	return sb.String()
}

// MapsLink builds a Google Maps search link with spaces replaced by '+'
func MapsLink(address string) string {
	return googleMapsSearchURL + strings.ReplaceAll(address, " ", "+")
}

// splitMessage cuts text into chunks of at most limit runes, preferring
// blank-line boundaries so a pharmacy block is never torn apart
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, block := range strings.SplitAfter(text, "\n\n") {
		if block == "" {
			continue
		}
		n := utf8.RuneCountInString(block)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			// a single oversized block is hard-cut on rune boundaries
			runes := []rune(block)
			chunks = append(chunks, string(runes[:limit]))
			block = string(runes[limit:])
			n -= limit
		}
		cur.WriteString(block)
		curLen += n
	}
	flush()
	return chunks
}
