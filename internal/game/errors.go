package game

import "errors"

var (
	// ErrCapacity is returned when a room has no free seat or the display
	// name is already taken in a seated room.
	ErrCapacity = errors.New("game: room is full")

	// ErrAlreadyExists is returned when a room ID is already registered.
	ErrAlreadyExists = errors.New("game: room already exists")

	// ErrNotFound is returned for unknown rooms or players.
	ErrNotFound = errors.New("game: not found")

	// ErrInvalidAction is returned when an action does not fit the room it
	// was submitted to.
	ErrInvalidAction = errors.New("game: invalid action")

	// ErrEmptyMessage is returned for blank chat messages.
	ErrEmptyMessage = errors.New("game: empty message")
)
