package game

// Snapshot is a consistent, copied view of a room for one observer.
type Snapshot struct {
	RoomID           string        `json:"roomId"`
	Kind             Kind          `json:"kind"`
	Phase            Phase         `json:"phase"`
	Round            int           `json:"round"`
	SecondsRemaining *int          `json:"secondsRemaining,omitempty"`
	Members          []MemberView  `json:"members"`
	History          []RoundResult `json:"history"`
	Feed             []ChatEntry   `json:"feed"`
	Self             *SelfView     `json:"self,omitempty"`
}

// MemberView is what every observer may see about a member.
type MemberView struct {
	ID      PlayerID `json:"id"`
	Name    string   `json:"name"`
	Balance int      `json:"balance"`
	Ready   bool     `json:"ready"`
	Record  Record   `json:"record"`
}

// SelfView adds the observer's private state.
type SelfView struct {
	ID           PlayerID      `json:"id"`
	Name         string        `json:"name"`
	Balance      int           `json:"balance"`
	Pending      Action        `json:"pending,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
	Record       Record        `json:"record"`
}

// Summary is the lobby listing for a room.
type Summary struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"kind"`
	Phase    Phase  `json:"phase"`
	Members  int    `json:"members"`
	Capacity int    `json:"capacity"`
	Round    int    `json:"round"`
}

// Joinable reports whether the room has a free seat.
func (s Summary) Joinable() bool {
	return s.Capacity == 0 || s.Members < s.Capacity
}
