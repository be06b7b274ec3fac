package events

const (
	// KindAssistantSpeechStarted identifies one-shot speech starting to play.
	KindAssistantSpeechStarted Kind = "assistant_speech.started"
	// KindAssistantSpeechEnded identifies one-shot speech ending, naturally or
	// not.
	KindAssistantSpeechEnded Kind = "assistant_speech.ended"
	// KindAssistantSpeechFailed identifies a failed synthesis or playback.
	KindAssistantSpeechFailed Kind = "assistant_speech.failed"
)

// AssistantSpeechStarted carries the text being spoken.
type AssistantSpeechStarted struct {
	Base
	Text string
}

// NewAssistantSpeechStarted creates a speech started event.
func NewAssistantSpeechStarted(text string) AssistantSpeechStarted {
	return AssistantSpeechStarted{Base: NewBase(KindAssistantSpeechStarted, 0), Text: text}
}

// AssistantSpeechEnded marks the end of one-shot speech.
type AssistantSpeechEnded struct {
	Base
	Interrupted bool
}

// NewAssistantSpeechEnded creates a speech ended event.
func NewAssistantSpeechEnded(interrupted bool) AssistantSpeechEnded {
	return AssistantSpeechEnded{Base: NewBase(KindAssistantSpeechEnded, 0), Interrupted: interrupted}
}

// AssistantSpeechFailed carries the error that stopped one-shot speech.
type AssistantSpeechFailed struct {
	Base
	Err error
}

// NewAssistantSpeechFailed creates a speech failed event.
func NewAssistantSpeechFailed(err error) AssistantSpeechFailed {
	return AssistantSpeechFailed{Base: NewBase(KindAssistantSpeechFailed, 0), Err: err}
}
