package orchestration

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one finalized utterance. Turns are never modified after they are
// appended to history.
type Turn struct {
	ID        uuid.UUID
	Speaker   Speaker
	Text      string
	CreatedAt time.Time
}

type history struct {
	mu    sync.RWMutex
	turns []Turn
}

func newHistory(turns []Turn) *history {
	h := &history{}
	if len(turns) > 0 {
		h.turns = h.copyTurns(turns)
	}
	return h
}

func newTurn(speaker Speaker, text string) Turn {
	return Turn{
		ID:        uuid.New(),
		Speaker:   speaker,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

func (h *history) Append(turn Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turn)
}

// Snapshot returns a copy that the caller may modify freely.
func (h *history) Snapshot() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.copyTurns(h.turns)
}

func (h *history) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}

func (h *history) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

func (h *history) copyTurns(turns []Turn) []Turn {
	out := make([]Turn, 0, len(turns))
	if err := copier.Copy(&out, turns); err != nil {
		logger.Warn("failed to copy history", "error", err)
		out = append(out[:0], turns...)
	}
	return out
}
