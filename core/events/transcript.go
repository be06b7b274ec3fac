package events

const (
	// KindUserTranscriptSegment identifies an append-only user transcript delta.
	KindUserTranscriptSegment Kind = "transcript.user_segment"
	// KindAssistantTranscriptSegment identifies an append-only assistant
	// transcript delta.
	KindAssistantTranscriptSegment Kind = "transcript.assistant_segment"
	// KindLiveTranscriptUpdated identifies the mutable live display snapshot.
	KindLiveTranscriptUpdated Kind = "transcript.live_updated"
	// KindTurnFinal identifies a finalized history turn.
	KindTurnFinal Kind = "transcript.turn_final"
	// KindTurnCompleted identifies the end of a turn on the live channel.
	KindTurnCompleted Kind = "transcript.turn_completed"
	// KindHistoryCleared identifies the history being wiped.
	KindHistoryCleared Kind = "transcript.history_cleared"
)

// UserTranscriptSegment carries a user transcript delta.
type UserTranscriptSegment struct {
	Base
	Segment string
}

// NewUserTranscriptSegment creates a user transcript segment event.
func NewUserTranscriptSegment(generation uint64, segment string) UserTranscriptSegment {
	return UserTranscriptSegment{Base: NewBase(KindUserTranscriptSegment, generation), Segment: segment}
}

// AssistantTranscriptSegment carries an assistant transcript delta.
type AssistantTranscriptSegment struct {
	Base
	Segment string
}

// NewAssistantTranscriptSegment creates an assistant transcript segment event.
func NewAssistantTranscriptSegment(generation uint64, segment string) AssistantTranscriptSegment {
	return AssistantTranscriptSegment{Base: NewBase(KindAssistantTranscriptSegment, generation), Segment: segment}
}

// LiveTranscriptUpdated carries the current live display text.
type LiveTranscriptUpdated struct {
	Base
	Transcript string
}

// NewLiveTranscriptUpdated creates a live transcript snapshot event.
func NewLiveTranscriptUpdated(generation uint64, transcript string) LiveTranscriptUpdated {
	return LiveTranscriptUpdated{Base: NewBase(KindLiveTranscriptUpdated, generation), Transcript: transcript}
}

// TurnFinal carries one finalized history entry.
type TurnFinal struct {
	Base
	TurnID  string
	Speaker string
	Text    string
}

// NewTurnFinal creates a turn final event.
func NewTurnFinal(generation uint64, turnID, speaker, text string) TurnFinal {
	return TurnFinal{Base: NewBase(KindTurnFinal, generation), TurnID: turnID, Speaker: speaker, Text: text}
}

// TurnCompleted marks the live channel closing a conversational turn.
type TurnCompleted struct{ Base }

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(generation uint64) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted, generation)}
}

// HistoryCleared marks the conversation history being wiped.
type HistoryCleared struct{ Base }

// NewHistoryCleared creates a history cleared event.
func NewHistoryCleared() HistoryCleared {
	return HistoryCleared{Base: NewBase(KindHistoryCleared, 0)}
}
