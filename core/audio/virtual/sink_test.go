package virtual

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/koscakluka/equiptalk-voice/core/audio"
)

func secondsOfAudio(t *testing.T, sink *Sink, seconds float64) audio.Buffer {
	t.Helper()
	buffer, err := sink.Decode(context.Background(), make([]byte, audio.Samples(seconds, sink.EncodingInfo().SampleRate)*2))
	if err != nil {
		t.Fatalf("expected decode to succeed, got %v", err)
	}
	return buffer
}

func TestSinkSchedulesInThePastAtCurrentTime(t *testing.T) {
	sink := NewSink(audio.GetOutputEncodingInfo())
	sink.Advance(time.Second)

	if _, err := sink.Schedule(secondsOfAudio(t, sink, 0.5), 0, nil); err != nil {
		t.Fatalf("expected schedule to succeed, got %v", err)
	}

	scheduled := sink.Scheduled()
	if scheduled[0].StartAt != 1 {
		t.Fatalf("expected start at current time 1, got %f", scheduled[0].StartAt)
	}
}

func TestSinkAdvanceFiresEndedOnce(t *testing.T) {
	sink := NewSink(audio.GetOutputEncodingInfo())

	var ended []audio.Handle
	handle, _ := sink.Schedule(secondsOfAudio(t, sink, 1), 0, func(h audio.Handle) { ended = append(ended, h) })

	sink.Advance(500 * time.Millisecond)
	if len(ended) != 0 {
		t.Fatalf("expected no ended callback mid-source, got %d", len(ended))
	}

	sink.Advance(time.Second)
	sink.Advance(time.Second)
	if len(ended) != 1 || ended[0] != handle {
		t.Fatalf("expected one ended callback for %d, got %v", handle, ended)
	}
}

func TestSinkStopIsIdempotentAndSilencesEnded(t *testing.T) {
	sink := NewSink(audio.GetOutputEncodingInfo())

	called := false
	handle, _ := sink.Schedule(secondsOfAudio(t, sink, 1), 0, func(audio.Handle) { called = true })
	sink.Stop(handle)
	sink.Stop(handle)
	sink.Advance(2 * time.Second)

	if called {
		t.Fatalf("expected ended callback to be suppressed after stop")
	}
	if !sink.Scheduled()[0].Stopped {
		t.Fatalf("expected source to be marked stopped")
	}
	if sink.Playing() != 0 {
		t.Fatalf("expected nothing playing, got %d", sink.Playing())
	}
}

func TestSinkDecodeErrorOption(t *testing.T) {
	wantErr := errors.New("boom")
	sink := NewSink(audio.GetOutputEncodingInfo(), WithDecodeError(wantErr))

	if _, err := sink.Decode(context.Background(), []byte{0, 0}); !errors.Is(err, wantErr) {
		t.Fatalf("expected decode error %v, got %v", wantErr, err)
	}
}

func TestSinkRejectsScheduleAfterClose(t *testing.T) {
	sink := NewSink(audio.GetOutputEncodingInfo())
	_ = sink.Close()

	if _, err := sink.Schedule(audio.Buffer{SampleRate: 24000}, 0, nil); err == nil {
		t.Fatalf("expected schedule on closed sink to fail")
	}
}

func TestMicrophoneDenyReturnsPermissionDenied(t *testing.T) {
	mic := NewMicrophone()
	mic.Deny()

	if _, err := mic.Open(context.Background(), audio.GetInputEncodingInfo()); !errors.Is(err, audio.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestCaptureDeviceFeedOnlyWhileCapturing(t *testing.T) {
	mic := NewMicrophone()
	device, err := mic.Open(context.Background(), audio.GetInputEncodingInfo())
	if err != nil {
		t.Fatalf("expected open to succeed, got %v", err)
	}
	captured := mic.Last()

	if captured.Feed(make([]float32, 4)) {
		t.Fatalf("expected feed before start to be dropped")
	}

	frames := 0
	_ = device.StartCapture(context.Background(), func([]float32) { frames++ })
	captured.Feed(make([]float32, 4))
	_ = device.StopCapture()
	captured.Feed(make([]float32, 4))

	if frames != 1 {
		t.Fatalf("expected exactly one delivered frame, got %d", frames)
	}
}
