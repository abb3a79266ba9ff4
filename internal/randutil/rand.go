package randutil

import (
	"encoding/binary"
	"io"
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so every caller gets the same
// reproducible sequence for the same seed.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Resolve returns the seed to use: the given one when set, otherwise a
// time-derived seed. The chosen seed is returned so it can be logged and
// replayed.
func Resolve(seed *int64) int64 {
	if seed != nil {
		return *seed
	}
	return time.Now().UnixNano()
}

// Derive returns an independent generator for a named stream, so each room
// gets its own sequence while the whole process stays replayable from one
// seed.
func Derive(seed int64, stream string) *rand.Rand {
	h := uint64(seed)
	for i := 0; i < len(stream); i++ {
		h ^= uint64(stream[i])
		h *= 0x100000001b3
	}
	return New(int64(mix(h)))
}

// Reader returns a seeded byte stream for a named stream, for consumers that
// take an io.Reader rather than a *rand.Rand.
func Reader(seed int64, stream string) io.Reader {
	r := Derive(seed, stream)
	var key [32]byte
	for i := 0; i < len(key); i += 8 {
		binary.LittleEndian.PutUint64(key[i:], r.Uint64())
	}
	return rand.NewChaCha8(key)
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
