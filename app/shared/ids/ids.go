package ids

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers for new games, players, rounds and scores.
type Generator interface {
	NewID() uuid.UUID
}

// UUIDGenerator issues random (v4) identifiers.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() uuid.UUID { return uuid.New() }

// SequenceGenerator issues predictable identifiers 1, 2, 3, ... encoded in the
// low bytes of a UUID. Each test should build its own instance.
type SequenceGenerator struct {
	mu   sync.Mutex
	next uint64
}

// NewSequenceGenerator returns a generator whose first identifier encodes 1.
func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{next: 1}
}

func (g *SequenceGenerator) NewID() uuid.UUID {
	g.mu.Lock()
	n := g.next
	g.next++
	g.mu.Unlock()
	return Sequential(n)
}

// Sequential returns the identifier a SequenceGenerator issues for n.
func Sequential(n uint64) uuid.UUID {
	var id uuid.UUID
	binary.BigEndian.PutUint64(id[8:], n)
	return id
}
