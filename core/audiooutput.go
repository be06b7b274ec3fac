package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/equiptalk-voice/core/audio"
)

// playbackScheduler lays incoming chunks back to back on one sink timeline.
//
// cursor is the next free slot. It only moves forward, except on Interrupt
// where it is set to exactly 0. Every decode happens outside the lock; the
// epoch taken before decoding tells whether an interrupt happened meanwhile.
type playbackScheduler struct {
	sink audio.Sink

	mu     sync.Mutex
	cursor float64
	active map[audio.Handle]struct{}
	epoch  uint64
	closed bool
}

// scheduledChunk is where a chunk landed on the timeline.
type scheduledChunk struct {
	Handle   audio.Handle
	StartAt  float64
	Duration float64
}

func newPlaybackScheduler(sink audio.Sink) *playbackScheduler {
	return &playbackScheduler{sink: sink, active: map[audio.Handle]struct{}{}}
}

// Enqueue decodes payload and schedules it right after whatever is already
// queued. accept is consulted once more after decoding; if it returns false,
// or an interrupt happened in between, the chunk is discarded and ok is false.
func (p *playbackScheduler) Enqueue(ctx context.Context, payload string, accept func() bool) (chunk scheduledChunk, ok bool, err error) {
	pcm, err := audio.DecodeBase64(payload)
	if err != nil {
		return scheduledChunk{}, false, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return scheduledChunk{}, false, nil
	}
	epoch := p.epoch
	p.mu.Unlock()

	buffer, err := p.sink.Decode(ctx, pcm)
	if err != nil {
		return scheduledChunk{}, false, fmt.Errorf("failed to decode audio chunk: %w", err)
	}

	if accept != nil && !accept() {
		return scheduledChunk{}, false, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.epoch != epoch {
		return scheduledChunk{}, false, nil
	}

	startAt := max(p.cursor, p.sink.CurrentTime())
	handle, err := p.sink.Schedule(buffer, startAt, p.ended)
	if err != nil {
		return scheduledChunk{}, false, fmt.Errorf("failed to schedule audio chunk: %w", err)
	}
	p.active[handle] = struct{}{}
	p.cursor = startAt + buffer.Duration()

	return scheduledChunk{Handle: handle, StartAt: startAt, Duration: buffer.Duration()}, true, nil
}

func (p *playbackScheduler) ended(handle audio.Handle) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, handle)
}

// Interrupt hard-stops every active source and rewinds the cursor to 0. It
// returns how many sources were cut off.
func (p *playbackScheduler) Interrupt() int {
	p.mu.Lock()
	handles := make([]audio.Handle, 0, len(p.active))
	for handle := range p.active {
		handles = append(handles, handle)
	}
	clear(p.active)
	p.cursor = 0
	p.epoch++
	p.mu.Unlock()

	for _, handle := range handles {
		p.sink.Stop(handle)
	}
	return len(handles)
}

// Close interrupts and refuses all later chunks. The sink itself is owned by
// the session and released there.
func (p *playbackScheduler) Close() int {
	stopped := p.Interrupt()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return stopped
}

func (p *playbackScheduler) Cursor() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *playbackScheduler) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

func (p *playbackScheduler) IsPlaying() bool {
	return p.ActiveCount() > 0
}
