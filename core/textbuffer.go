package orchestration

import (
	"strings"
)

// transcriptBuffer accumulates transcript deltas for the turn in progress.
// It is not safe for concurrent use; the controller guards it.
type transcriptBuffer struct {
	user      strings.Builder
	assistant strings.Builder
}

type pendingTurn struct {
	Speaker Speaker
	Text    string
}

func (b *transcriptBuffer) AppendUser(delta string)      { b.user.WriteString(delta) }
func (b *transcriptBuffer) AppendAssistant(delta string) { b.assistant.WriteString(delta) }

// Live returns the display form of the turn in progress.
func (b *transcriptBuffer) Live() string {
	return "You: " + b.user.String() + "\nAI: " + b.assistant.String()
}

// Complete returns one turn per speaker whose text is non-empty after
// trimming, user first, and clears both buffers.
func (b *transcriptBuffer) Complete() []pendingTurn {
	var turns []pendingTurn
	if text := strings.TrimSpace(b.user.String()); text != "" {
		turns = append(turns, pendingTurn{Speaker: SpeakerUser, Text: text})
	}
	if text := strings.TrimSpace(b.assistant.String()); text != "" {
		turns = append(turns, pendingTurn{Speaker: SpeakerAssistant, Text: text})
	}
	b.Clear()
	return turns
}

func (b *transcriptBuffer) Clear() {
	b.user.Reset()
	b.assistant.Reset()
}

func (b *transcriptBuffer) IsEmpty() bool {
	return b.user.Len() == 0 && b.assistant.Len() == 0
}
