package game

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxChatRunes bounds a single chat line.
const MaxChatRunes = 280

// ChatEntry is one line in a room's feed.
type ChatEntry struct {
	PlayerID PlayerID  `json:"playerId"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

func cleanChat(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if utf8.RuneCountInString(text) > MaxChatRunes {
		text = string([]rune(text)[:MaxChatRunes])
	}
	return text, true
}
