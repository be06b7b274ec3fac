package live

// ServerMessage is one inbound message. Any combination of fields may be set.
type ServerMessage struct {
	OutputTranscription *Transcription `json:"outputTranscription,omitempty"`
	InputTranscription  *Transcription `json:"inputTranscription,omitempty"`
	TurnComplete        bool           `json:"turnComplete,omitempty"`
	ModelTurn           *ModelTurn     `json:"modelTurn,omitempty"`
	Interrupted         bool           `json:"interrupted,omitempty"`
}

type Transcription struct {
	Text string `json:"text"`
}

type ModelTurn struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	InlineData *Blob `json:"inlineData,omitempty"`
}

// Event is one typed piece of a [ServerMessage].
type Event interface {
	isEvent()
}

// UserTranscriptDelta is text transcribed from the user's speech.
type UserTranscriptDelta struct{ Text string }

// AssistantTranscriptDelta is text transcribed from the model's speech.
type AssistantTranscriptDelta struct{ Text string }

// TurnComplete marks the end of a conversational turn.
type TurnComplete struct{}

// AudioChunk is base64 PCM16 audio from the model.
type AudioChunk struct{ Data string }

// Interrupted reports that the user started talking over the model.
type Interrupted struct{}

func (UserTranscriptDelta) isEvent()      {}
func (AssistantTranscriptDelta) isEvent() {}
func (TurnComplete) isEvent()             {}
func (AudioChunk) isEvent()               {}
func (Interrupted) isEvent()              {}

// Events flattens the message into the order it must be applied in:
// transcript deltas, turn completion, audio, then interruption. Empty
// transcription text and parts without inline data are skipped.
func (m ServerMessage) Events() []Event {
	var out []Event

	if m.InputTranscription != nil && m.InputTranscription.Text != "" {
		out = append(out, UserTranscriptDelta{Text: m.InputTranscription.Text})
	}
	if m.OutputTranscription != nil && m.OutputTranscription.Text != "" {
		out = append(out, AssistantTranscriptDelta{Text: m.OutputTranscription.Text})
	}
	if m.TurnComplete {
		out = append(out, TurnComplete{})
	}
	if m.ModelTurn != nil {
		for _, part := range m.ModelTurn.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			out = append(out, AudioChunk{Data: part.InlineData.Data})
		}
	}
	if m.Interrupted {
		out = append(out, Interrupted{})
	}

	return out
}

// IsEmpty reports whether the message carries nothing actionable.
func (m ServerMessage) IsEmpty() bool {
	return len(m.Events()) == 0
}
