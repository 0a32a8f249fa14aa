package http

import (
	"notdienst_bot/internal/usecases"
	"regexp"
	"strconv"
	"unicode/utf8"
)

const (
	MaxUsernameLength = 64
	MaxPasswordLength = 72 // bcrypt ignores anything longer
	DefaultQRSize     = 256
	MinQRSize         = 64
	MaxQRSize         = 1024
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidUsername checks a login name is short and plain
func ValidUsername(s string) bool {
	if s == "" || len(s) > MaxUsernameLength {
		return false
	}
	return usernamePattern.MatchString(s)
}

func ValidPassword(s string) bool {
	return s != "" && len(s) <= MaxPasswordLength && utf8.ValidString(s)
}

// ParseDays reads the stats window. Empty means the default; values above the
// maximum are clamped later by the stats use case.
func ParseDays(raw string) (int, bool) {
	if raw == "" {
		return usecases.DefaultStatsDays, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// ParseQRSize reads the requested image edge in pixels
func ParseQRSize(raw string) (int, bool) {
	if raw == "" {
		return DefaultQRSize, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < MinQRSize || n > MaxQRSize {
		return 0, false
	}
	return n, true
}

// BotLink is the deep link that opens a chat with the bot
func BotLink(username string) string {
	return "https://t.me/" + username
}
