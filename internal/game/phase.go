package game

// Phase is where a room is in its round loop.
type Phase string

const (
	PhaseWaiting   Phase = "waiting_for_players"
	PhaseOpen      Phase = "open_for_actions"
	PhaseResolving Phase = "resolving"
	PhaseSettled   Phase = "settled"
)

func (p Phase) String() string { return string(p) }
