package orchestration

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

// session owns everything opened for one generation. Resources are attached
// under Controller.mu while the session is still current and are released by
// teardown exactly once.
type session struct {
	id         uuid.UUID
	generation uint64

	ctx    context.Context
	cancel context.CancelFunc

	// stopped is read from device callbacks, so it is not behind a lock.
	stopped atomic.Bool

	device    audio.CaptureDevice
	channel   live.Channel
	scheduler *playbackScheduler
	bridge    *captureBridge
}

func newSession(generation uint64) *session {
	ctx, cancel := context.WithCancel(context.Background())
	return &session{
		id:         uuid.New(),
		generation: generation,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (s *session) goWorker(name string, run func(context.Context) error, onFailure func(error)) {
	worker := panicSafeNamedWorker(name, run)
	go func() {
		if err := worker(s.ctx); err != nil && !s.stopped.Load() {
			logger.Error("session worker failed", "session", s.id, "worker", name, "error", err)
			if onFailure != nil {
				onFailure(err)
			}
		}
	}()
}

// teardown stops playback, capture and the channel, then releases the capture
// device. The output sink outlives the session. It returns how many playing
// sources were cut off.
func (s *session) teardown() int {
	s.stopped.Store(true)

	stopped := 0
	if s.scheduler != nil {
		stopped = s.scheduler.Close()
	}
	if s.bridge != nil {
		s.bridge.Stop()
	}
	if s.device != nil {
		if err := s.device.StopCapture(); err != nil {
			logger.Warn("failed to stop capture", "session", s.id, "error", err)
		}
	}
	closeQuietly("live channel", s.channel)
	s.cancel()
	closeQuietly("capture device", s.device)
	return stopped
}
