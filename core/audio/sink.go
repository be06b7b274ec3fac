package audio

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned by a [Microphone] when access to the capture
// device was refused.
var ErrPermissionDenied = errors.New("microphone permission denied")

// Handle identifies one scheduled playback source on a [Sink].
type Handle uint64

// Sink owns playback timing for a single output device.
//
// Times are seconds on the sink's own timeline, which starts at 0 when the
// sink is created and never goes backwards.
type Sink interface {
	EncodingInfo() EncodingInfo
	// Decode turns raw PCM bytes into a playable buffer at the sink rate.
	Decode(ctx context.Context, pcm []byte) (Buffer, error)
	// CurrentTime returns the current playback position.
	CurrentTime() float64
	// Schedule starts buffer at startAt. A startAt in the past starts
	// immediately. onEnded is called once when the source finishes on its own;
	// it is never called from inside Schedule or Stop and never after Stop.
	Schedule(buffer Buffer, startAt float64, onEnded func(Handle)) (Handle, error)
	// Stop cuts a source off. Stopping an unknown or finished source is a
	// no-op.
	Stop(handle Handle)
	Close() error
}

// Speaker hands out fresh sinks, one per playback path.
type Speaker interface {
	NewSink(encodingInfo EncodingInfo) (Sink, error)
}

// CaptureDevice delivers fixed-size frames of mono float samples.
type CaptureDevice interface {
	EncodingInfo() EncodingInfo
	// StartCapture begins delivering frames of [FrameSize] samples. The frame
	// slice is only valid for the duration of the callback.
	StartCapture(ctx context.Context, onFrame func(frame []float32)) error
	StopCapture() error
	Close() error
}

// Microphone requests access to a capture device. Implementations return an
// error wrapping [ErrPermissionDenied] when access is refused.
type Microphone interface {
	Open(ctx context.Context, encodingInfo EncodingInfo) (CaptureDevice, error)
}
