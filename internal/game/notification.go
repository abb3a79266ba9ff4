package game

import "fmt"

// NoticeKind classifies a notification.
type NoticeKind string

const (
	NoticeWin      NoticeKind = "win"
	NoticeLoss     NoticeKind = "loss"
	NoticeTie      NoticeKind = "tie"
	NoticeBankrupt NoticeKind = "bankrupt"
)

// Notification is the single-slot message a player sees after a round.
type Notification struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Round   int        `json:"round"`
}

func newNotice(kind NoticeKind, format string, args ...any) Notification {
	return Notification{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
