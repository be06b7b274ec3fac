package orchestration

import (
	"context"
	"sync/atomic"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/events"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

const captureQueueSize = 32

// captureBridge forwards captured frames to the live channel. Frames are
// handed over from the device callback through a bounded queue so a slow
// network never stalls the capture device.
type captureBridge struct {
	channel    live.Channel
	mimeType   string
	generation uint64

	// dropping reports whether frames must be discarded instead of sent.
	dropping func() bool
	emit     eventEmitter
	counters *counters

	queue   chan []float32
	stopped atomic.Bool
}

func newCaptureBridge(channel live.Channel, encodingInfo audio.EncodingInfo, generation uint64, dropping func() bool, emit eventEmitter, counters *counters) *captureBridge {
	if dropping == nil {
		dropping = func() bool { return false }
	}
	if emit == nil {
		emit = noopEventEmitter
	}
	return &captureBridge{
		channel:    channel,
		mimeType:   encodingInfo.MimeType(),
		generation: generation,
		dropping:   dropping,
		emit:       emit,
		counters:   counters,
		queue:      make(chan []float32, captureQueueSize),
	}
}

// OnFrame is the capture device callback.
func (b *captureBridge) OnFrame(frame []float32) {
	if b.stopped.Load() {
		return
	}
	if b.dropping() {
		b.drop("reset in progress")
		return
	}

	owned := make([]float32, len(frame))
	copy(owned, frame)
	select {
	case b.queue <- owned:
	default:
		b.drop("send queue full")
	}
}

// Run sends queued frames until ctx is done or the bridge is stopped.
func (b *captureBridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame := <-b.queue:
			if b.stopped.Load() {
				return nil
			}
			// The guard may have gone up while the frame sat in the queue.
			if b.dropping() {
				b.drop("reset in progress")
				continue
			}

			blob := live.Blob{Data: audio.EncodeFrame(frame), MIMEType: b.mimeType}
			if err := b.channel.Send(ctx, blob); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("failed to send audio frame", "error", err)
				continue
			}

			if b.counters != nil {
				b.counters.framesSent.Add(ctx, 1)
			}
			b.emit(events.NewUserAudioFrame(b.generation, len(frame)))
		}
	}
}

// Stop makes every later frame a no-op. It does not wait for an in-flight
// send.
func (b *captureBridge) Stop() {
	b.stopped.Store(true)
}

func (b *captureBridge) drop(reason string) {
	if b.counters != nil {
		b.counters.framesDropped.Add(context.Background(), 1)
	}
	b.emit(events.NewUserAudioFrameDropped(b.generation, reason))
}
