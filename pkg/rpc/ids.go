package rpc

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// IDPolicy chooses the correlation id of each non-notification request. A nil
// id means the response id is not checked.
type IDPolicy interface {
	NextID() *uint64
}

type fixedID uint64

// FixedID uses the same id for every request, typically the configured user
// id. Concurrent calls through one adapter cannot be told apart by id.
func FixedID(id uint64) IDPolicy {
	return fixedID(id)
}

func (f fixedID) NextID() *uint64 {
	id := uint64(f)
	return &id
}

type noID struct{}

// NoID sends a null id and skips the response id check.
func NoID() IDPolicy {
	return noID{}
}

func (noID) NextID() *uint64 {
	return nil
}

// CounterIDs hands out 1, 2, 3, ...
type CounterIDs struct {
	last atomic.Uint64
}

func NewCounterIDs() *CounterIDs {
	return &CounterIDs{}
}

func (c *CounterIDs) NextID() *uint64 {
	id := c.last.Add(1)
	return &id
}

type randomIDs struct{}

// RandomIDs derives each id from a fresh random UUID.
func RandomIDs() IDPolicy {
	return randomIDs{}
}

func (randomIDs) NextID() *uint64 {
	id := uint64(uuid.New().ID())
	return &id
}
