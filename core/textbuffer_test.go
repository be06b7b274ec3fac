package orchestration

import "testing"

func TestTranscriptBufferLiveFormat(t *testing.T) {
	var buffer transcriptBuffer
	if got := buffer.Live(); got != "You: \nAI: " {
		t.Fatalf("expected empty live form, got %q", got)
	}

	buffer.AppendUser("Hel")
	buffer.AppendUser("lo")
	buffer.AppendAssistant("Hi there")

	if got := buffer.Live(); got != "You: Hello\nAI: Hi there" {
		t.Fatalf("expected %q, got %q", "You: Hello\nAI: Hi there", got)
	}
}

func TestTranscriptBufferCompleteTrimsOrdersAndClears(t *testing.T) {
	var buffer transcriptBuffer
	buffer.AppendAssistant("  answer ")
	buffer.AppendUser(" question\n")

	turns := buffer.Complete()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != SpeakerUser || turns[0].Text != "question" {
		t.Fatalf("expected user turn first with trimmed text, got %+v", turns[0])
	}
	if turns[1].Speaker != SpeakerAssistant || turns[1].Text != "answer" {
		t.Fatalf("expected assistant turn second with trimmed text, got %+v", turns[1])
	}
	if !buffer.IsEmpty() {
		t.Fatalf("expected buffer to be empty after complete")
	}
}

func TestTranscriptBufferCompleteSkipsBlankSpeakers(t *testing.T) {
	var buffer transcriptBuffer
	buffer.AppendUser("   ")
	buffer.AppendAssistant("only me")

	turns := buffer.Complete()
	if len(turns) != 1 || turns[0].Speaker != SpeakerAssistant {
		t.Fatalf("expected only the assistant turn, got %+v", turns)
	}
	if turns := buffer.Complete(); len(turns) != 0 {
		t.Fatalf("expected second complete to yield nothing, got %+v", turns)
	}
}
