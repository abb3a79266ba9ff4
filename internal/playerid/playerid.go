// Package playerid mints the opaque identities handed to players on join.
//
// IDs are UUIDv7 values rendered as 26 lowercase Crockford base32
// characters, so they sort by creation time and stay URL safe.
package playerid

import (
	"encoding/base32"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of every generated ID.
const Length = 26

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator produces player IDs. The zero value is not usable; use New.
type Generator struct {
	rand io.Reader
}

// New returns a generator reading randomness from r. A nil reader uses
// crypto/rand via the uuid package.
func New(r io.Reader) *Generator {
	return &Generator{rand: r}
}

// Generate returns a fresh ID.
func (g *Generator) Generate() (string, error) {
	var (
		id  uuid.UUID
		err error
	)
	if g.rand != nil {
		id, err = uuid.NewV7FromReader(g.rand)
	} else {
		id, err = uuid.NewV7()
	}
	if err != nil {
		return "", fmt.Errorf("playerid: generate: %w", err)
	}
	return encoding.EncodeToString(id[:]), nil
}

// Validate checks that id has the generated shape.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("playerid: must be exactly %d characters, got %d", Length, len(id))
	}
	for i, c := range id {
		if !strings.ContainsRune(alphabet, c) {
			return fmt.Errorf("playerid: invalid character %q at position %d", c, i)
		}
	}
	return nil
}
