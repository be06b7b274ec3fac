package live

import (
	"encoding/json"
	"testing"
)

func TestEventsAreOrderedTranscriptsTurnAudioInterrupted(t *testing.T) {
	msg := ServerMessage{
		Interrupted:         true,
		ModelTurn:           &ModelTurn{Parts: []Part{{InlineData: &Blob{Data: "AAA="}}, {}, {InlineData: &Blob{Data: "BBB="}}}},
		TurnComplete:        true,
		OutputTranscription: &Transcription{Text: "hello"},
		InputTranscription:  &Transcription{Text: "hi"},
	}

	got := msg.Events()
	if len(got) != 6 {
		t.Fatalf("expected 6 events, got %d: %#v", len(got), got)
	}
	if ev, ok := got[0].(UserTranscriptDelta); !ok || ev.Text != "hi" {
		t.Fatalf("expected user delta first, got %#v", got[0])
	}
	if ev, ok := got[1].(AssistantTranscriptDelta); !ok || ev.Text != "hello" {
		t.Fatalf("expected assistant delta second, got %#v", got[1])
	}
	if _, ok := got[2].(TurnComplete); !ok {
		t.Fatalf("expected turn complete third, got %#v", got[2])
	}
	if ev, ok := got[3].(AudioChunk); !ok || ev.Data != "AAA=" {
		t.Fatalf("expected first audio part, got %#v", got[3])
	}
	if ev, ok := got[4].(AudioChunk); !ok || ev.Data != "BBB=" {
		t.Fatalf("expected second audio part, got %#v", got[4])
	}
	if _, ok := got[5].(Interrupted); !ok {
		t.Fatalf("expected interrupted last, got %#v", got[5])
	}
}

func TestEventsSkipEmptyTranscription(t *testing.T) {
	msg := ServerMessage{InputTranscription: &Transcription{}}
	if !msg.IsEmpty() {
		t.Fatalf("expected message with empty transcription to be empty, got %#v", msg.Events())
	}
}

func TestServerMessageDecodesWireShape(t *testing.T) {
	raw := `{"outputTranscription":{"text":"ok"},"modelTurn":{"parts":[{"inlineData":{"data":"AAA=","mimeType":"audio/pcm;rate=24000"}}]},"turnComplete":true}`

	var msg ServerMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("expected wire message to decode, got %v", err)
	}
	if msg.OutputTranscription.Text != "ok" || !msg.TurnComplete {
		t.Fatalf("expected transcription and turn complete, got %#v", msg)
	}
	if msg.ModelTurn.Parts[0].InlineData.MIMEType != "audio/pcm;rate=24000" {
		t.Fatalf("expected mime type to decode, got %#v", msg.ModelTurn.Parts[0].InlineData)
	}
}

func TestBlobEncodesMediaShape(t *testing.T) {
	body, err := json.Marshal(struct {
		Media Blob `json:"media"`
	}{Media: Blob{Data: "AAA=", MIMEType: "audio/pcm;rate=16000"}})
	if err != nil {
		t.Fatalf("expected marshal to succeed, got %v", err)
	}
	if want := `{"media":{"data":"AAA=","mimeType":"audio/pcm;rate=16000"}}`; string(body) != want {
		t.Fatalf("expected %s, got %s", want, body)
	}
}
