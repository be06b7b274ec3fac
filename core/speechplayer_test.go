package orchestration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/audio/virtual"
	"github.com/koscakluka/equiptalk-voice/core/events"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

// lazySink opens one sink from speaker on first use and reuses it.
func lazySink(speaker *virtual.Speaker) func() (audio.Sink, error) {
	var sink audio.Sink
	return func() (audio.Sink, error) {
		if sink == nil {
			opened, err := speaker.NewSink(audio.GetOutputEncodingInfo())
			if err != nil {
				return nil, err
			}
			sink = opened
		}
		return sink, nil
	}
}

func speechOf(seconds float64) texttospeech.SynthesizerFunc {
	return func(context.Context, string) (texttospeech.Speech, error) {
		return texttospeech.Speech{Audio: pcmPayload(seconds), EncodingInfo: audio.GetOutputEncodingInfo()}, nil
	}
}

type speakingRecorder struct {
	mu     sync.Mutex
	states []bool
}

func (r *speakingRecorder) emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch event.(type) {
	case events.AssistantSpeechStarted:
		r.states = append(r.states, true)
	case events.AssistantSpeechEnded:
		r.states = append(r.states, false)
	}
}

func (r *speakingRecorder) snapshot() []bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]bool(nil), r.states...)
}

func TestSpeechPlayerPlaysUntilEnded(t *testing.T) {
	speaker := virtual.NewSpeaker()
	recorder := &speakingRecorder{}
	player := newSpeechPlayer(lazySink(speaker), speechOf(1), recorder.emit)

	if err := player.Speak(context.Background(), "hello", nil, nil); err != nil {
		t.Fatalf("expected speak to succeed, got %v", err)
	}
	if !player.IsSpeaking() {
		t.Fatalf("expected player to be speaking")
	}

	sink := speaker.Sinks()[0]
	sink.Advance(2 * time.Second)

	if player.IsSpeaking() {
		t.Fatalf("expected speaking to end with the source")
	}
	if got := recorder.snapshot(); len(got) != 2 || !got[0] || got[1] {
		t.Fatalf("expected started then ended, got %v", got)
	}
}

func TestSpeechPlayerStopCutsOffSource(t *testing.T) {
	speaker := virtual.NewSpeaker()
	player := newSpeechPlayer(lazySink(speaker), speechOf(3), nil)

	_ = player.Speak(context.Background(), "hello", nil, nil)
	if !player.Stop() {
		t.Fatalf("expected stop to report audible speech")
	}
	if player.Stop() {
		t.Fatalf("expected second stop to be a no-op")
	}

	sink := speaker.Sinks()[0]
	if sink.Playing() != 0 || !sink.Scheduled()[0].Stopped {
		t.Fatalf("expected speech source to be stopped")
	}
}

func TestSpeechPlayerSecondUtteranceReplacesFirst(t *testing.T) {
	speaker := virtual.NewSpeaker()
	player := newSpeechPlayer(lazySink(speaker), speechOf(3), nil)

	_ = player.Speak(context.Background(), "one", nil, nil)
	_ = player.Speak(context.Background(), "two", nil, nil)

	sink := speaker.Sinks()[0]
	if len(speaker.Sinks()) != 1 {
		t.Fatalf("expected the speech sink to be reused, got %d sinks", len(speaker.Sinks()))
	}
	if sink.Playing() != 1 {
		t.Fatalf("expected exactly one audible utterance, got %d", sink.Playing())
	}
}

func TestSpeechPlayerDiscardsSupersededSynthesis(t *testing.T) {
	speaker := virtual.NewSpeaker()
	release := make(chan struct{})
	started := make(chan struct{})
	synthesizer := texttospeech.SynthesizerFunc(func(context.Context, string) (texttospeech.Speech, error) {
		close(started)
		<-release
		return texttospeech.Speech{Audio: pcmPayload(1)}, nil
	})
	player := newSpeechPlayer(lazySink(speaker), synthesizer, nil)

	done := make(chan error, 1)
	go func() { done <- player.Speak(context.Background(), "slow", nil, nil) }()

	<-started
	player.Stop()
	close(release)

	if err := <-done; err != nil {
		t.Fatalf("expected superseded speak to return quietly, got %v", err)
	}
	if player.IsSpeaking() {
		t.Fatalf("expected superseded speech not to play")
	}
	if len(speaker.Sinks()) != 0 {
		t.Fatalf("expected no sink to be opened for discarded speech")
	}
}

func TestSpeechPlayerStopsOthersBeforePlaying(t *testing.T) {
	player := newSpeechPlayer(lazySink(virtual.NewSpeaker()), speechOf(1), nil)

	calls := 0
	_ = player.Speak(context.Background(), "hello", func() { calls++ }, nil)

	if calls != 2 {
		t.Fatalf("expected others to be stopped before synthesis and before playback, got %d calls", calls)
	}
}

func TestSpeechPlayerRespectsAllowed(t *testing.T) {
	player := newSpeechPlayer(lazySink(virtual.NewSpeaker()), speechOf(1), nil)

	if err := player.Speak(context.Background(), "hello", nil, func() bool { return false }); err != nil {
		t.Fatalf("expected disallowed speak to return quietly, got %v", err)
	}
	if player.IsSpeaking() {
		t.Fatalf("expected disallowed speech not to play")
	}
}

func TestSpeechPlayerSurfacesSynthesisFailure(t *testing.T) {
	var failed error
	player := newSpeechPlayer(lazySink(virtual.NewSpeaker()), texttospeech.SynthesizerFunc(func(context.Context, string) (texttospeech.Speech, error) {
		return texttospeech.Speech{}, texttospeech.ErrNoAudio
	}), func(event events.Event) {
		if event, ok := event.(events.AssistantSpeechFailed); ok {
			failed = event.Err
		}
	})

	err := player.Speak(context.Background(), "hello", nil, nil)
	if !errors.Is(err, texttospeech.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
	if !errors.Is(failed, texttospeech.ErrNoAudio) {
		t.Fatalf("expected failure event with ErrNoAudio, got %v", failed)
	}
}

func TestSpeechPlayerWithoutSynthesizerIsNotConfigured(t *testing.T) {
	player := newSpeechPlayer(lazySink(virtual.NewSpeaker()), nil, nil)

	if err := player.Speak(context.Background(), "hello", nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestSpeechPlayerCloseStopsSpeech(t *testing.T) {
	speaker := virtual.NewSpeaker()
	player := newSpeechPlayer(lazySink(speaker), speechOf(1), nil)
	_ = player.Speak(context.Background(), "hello", nil, nil)

	player.Close()
	if player.IsSpeaking() || speaker.Sinks()[0].Playing() != 0 {
		t.Fatalf("expected close to stop speech")
	}
	if speaker.Sinks()[0].IsClosed() {
		t.Fatalf("expected the provided sink to be left open")
	}
	if err := player.Speak(context.Background(), "again", nil, nil); err == nil {
		t.Fatalf("expected speak after close to fail")
	}
}
