package events

import (
	"errors"
	"testing"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "session state changed", event: NewSessionStateChanged(1, "idle", "connecting"), expected: KindSessionStateChanged},
		{name: "session failed", event: NewSessionFailed(1, "msg", errors.New("boom")), expected: KindSessionFailed},
		{name: "session reset guard", event: NewSessionResetGuard(true), expected: KindSessionResetGuard},
		{name: "user audio frame", event: NewUserAudioFrame(1, 4096), expected: KindUserAudioFrame},
		{name: "user audio frame dropped", event: NewUserAudioFrameDropped(1, "reset"), expected: KindUserAudioFrameDropped},
		{name: "user transcript segment", event: NewUserTranscriptSegment(1, "seg"), expected: KindUserTranscriptSegment},
		{name: "assistant transcript segment", event: NewAssistantTranscriptSegment(1, "seg"), expected: KindAssistantTranscriptSegment},
		{name: "live transcript updated", event: NewLiveTranscriptUpdated(1, "text"), expected: KindLiveTranscriptUpdated},
		{name: "turn final", event: NewTurnFinal(1, "id", "user", "text"), expected: KindTurnFinal},
		{name: "turn completed", event: NewTurnCompleted(1), expected: KindTurnCompleted},
		{name: "history cleared", event: NewHistoryCleared(), expected: KindHistoryCleared},
		{name: "assistant playback scheduled", event: NewAssistantPlaybackScheduled(1, 0, 2), expected: KindAssistantPlaybackScheduled},
		{name: "assistant playback dropped", event: NewAssistantPlaybackDropped(1, "muted"), expected: KindAssistantPlaybackDropped},
		{name: "assistant playback interrupted", event: NewAssistantPlaybackInterrupted(1, 3), expected: KindAssistantPlaybackInterrupted},
		{name: "assistant speech started", event: NewAssistantSpeechStarted("hi"), expected: KindAssistantSpeechStarted},
		{name: "assistant speech ended", event: NewAssistantSpeechEnded(false), expected: KindAssistantSpeechEnded},
		{name: "assistant speech failed", event: NewAssistantSpeechFailed(errors.New("boom")), expected: KindAssistantSpeechFailed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
		})
	}
}

func TestSessionEventsCarryGeneration(t *testing.T) {
	event := NewUserTranscriptSegment(7, "hi")
	if got := event.Generation(); got != 7 {
		t.Fatalf("expected generation 7, got %d", got)
	}

	if got := NewHistoryCleared().Generation(); got != 0 {
		t.Fatalf("expected unbound event to have generation 0, got %d", got)
	}
}
