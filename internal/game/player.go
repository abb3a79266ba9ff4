package game

import "time"

// PlayerID is the opaque identity minted on join.
type PlayerID string

// Record tallies duel results.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

func (r *Record) add(res Result) {
	switch res {
	case ResultWin:
		r.Wins++
	case ResultLoss:
		r.Losses++
	case ResultTie:
		r.Ties++
	}
}

// Player is a member's mutable record. It is owned by its room and only
// touched under the room lock.
type Player struct {
	ID       PlayerID
	Name     string
	Balance  int
	Pending  Action
	Record   Record
	JoinedAt time.Time

	notification *Notification
}

// notify fills the notification slot, replacing anything undelivered.
func (p *Player) notify(n Notification) {
	p.notification = &n
}

// peek returns the undelivered notification without clearing it.
func (p *Player) peek() (Notification, bool) {
	if p.notification == nil {
		return Notification{}, false
	}
	return *p.notification, true
}

// drain returns and clears the undelivered notification.
func (p *Player) drain() (Notification, bool) {
	n, ok := p.peek()
	p.notification = nil
	return n, ok
}
