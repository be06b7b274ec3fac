package events

import "time"

type Kind string

type Event interface {
	Kind() Kind
	Timestamp() time.Time
	// Generation is the session generation the event belongs to. Zero means
	// the event is not tied to a live session.
	Generation() uint64
}

type Base struct {
	kind       Kind
	timestamp  time.Time
	generation uint64
}

func NewBase(kind Kind, generation uint64) Base {
	return Base{kind: kind, timestamp: time.Now(), generation: generation}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}

func (b Base) Generation() uint64 {
	return b.generation
}
