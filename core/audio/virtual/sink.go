// Package virtual provides device-free implementations of the audio
// interfaces. The sink runs on either a manually advanced clock, for
// deterministic tests, or the wall clock, for headless runs without a speaker.
package virtual

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/koscakluka/equiptalk-voice/core/audio"
)

// Scheduled records one call to [Sink.Schedule].
type Scheduled struct {
	Handle   audio.Handle
	StartAt  float64
	Duration float64
	Stopped  bool
	Ended    bool
}

// End returns the time the source stops playing if left alone.
func (s Scheduled) End() float64 { return s.StartAt + s.Duration }

type voice struct {
	Scheduled
	onEnded func(audio.Handle)
	timer   *time.Timer
}

type Sink struct {
	encodingInfo audio.EncodingInfo

	mu         sync.Mutex
	now        float64
	wallClock  bool
	startedAt  time.Time
	nextHandle audio.Handle
	voices     map[audio.Handle]*voice
	history    []*voice
	closed     bool
	decodeErr  error
}

type SinkOption func(*Sink)

// WithWallClock drives the sink clock from real time and fires ended
// callbacks from timers.
func WithWallClock() SinkOption {
	return func(s *Sink) {
		s.wallClock = true
		s.startedAt = time.Now()
	}
}

// WithDecodeError makes every Decode call fail with err.
func WithDecodeError(err error) SinkOption {
	return func(s *Sink) { s.decodeErr = err }
}

func NewSink(encodingInfo audio.EncodingInfo, opts ...SinkOption) *Sink {
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetOutputEncodingInfo()
	}
	s := &Sink{encodingInfo: encodingInfo, voices: map[audio.Handle]*voice{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sink) EncodingInfo() audio.EncodingInfo { return s.encodingInfo }

func (s *Sink) Decode(ctx context.Context, pcm []byte) (audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return audio.Buffer{}, err
	}
	if s.decodeErr != nil {
		return audio.Buffer{}, s.decodeErr
	}
	return audio.DecodePCM16(pcm, s.encodingInfo.SampleRate)
}

func (s *Sink) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTimeLocked()
}

func (s *Sink) currentTimeLocked() float64 {
	if s.wallClock {
		return time.Since(s.startedAt).Seconds()
	}
	return s.now
}

func (s *Sink) Schedule(buffer audio.Buffer, startAt float64, onEnded func(audio.Handle)) (audio.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("sink closed")
	}

	now := s.currentTimeLocked()
	if startAt < now {
		startAt = now
	}

	s.nextHandle++
	v := &voice{
		Scheduled: Scheduled{Handle: s.nextHandle, StartAt: startAt, Duration: buffer.Duration()},
		onEnded:   onEnded,
	}
	s.voices[v.Handle] = v
	s.history = append(s.history, v)

	if s.wallClock {
		handle := v.Handle
		v.timer = time.AfterFunc(time.Duration((v.End()-now)*float64(time.Second)), func() {
			s.finish(handle)
		})
	}

	return v.Handle, nil
}

func (s *Sink) Stop(handle audio.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.voices[handle]
	if !ok {
		return
	}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.Stopped = true
	delete(s.voices, handle)
}

// Advance moves a manual clock forward and fires ended callbacks, in end time
// order, for every source that finished by the new time.
func (s *Sink) Advance(d time.Duration) {
	s.mu.Lock()
	if s.wallClock {
		s.mu.Unlock()
		return
	}
	s.now += d.Seconds()
	now := s.now
	var finished []*voice
	for _, v := range s.voices {
		if v.End() <= now {
			finished = append(finished, v)
		}
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i].End() < finished[j].End() })
	s.mu.Unlock()

	for _, v := range finished {
		s.finish(v.Handle)
	}
}

func (s *Sink) finish(handle audio.Handle) {
	s.mu.Lock()
	v, ok := s.voices[handle]
	if ok {
		v.Ended = true
		delete(s.voices, handle)
	}
	s.mu.Unlock()

	if ok && v.onEnded != nil {
		v.onEnded(handle)
	}
}

// Scheduled returns every source ever scheduled, in scheduling order.
func (s *Sink) Scheduled() []Scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Scheduled, len(s.history))
	for i, v := range s.history {
		out[i] = v.Scheduled
	}
	return out
}

// Playing returns the number of sources that are scheduled or playing.
func (s *Sink) Playing() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.voices)
}

func (s *Sink) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	for handle, v := range s.voices {
		if v.timer != nil {
			v.timer.Stop()
		}
		v.Stopped = true
		delete(s.voices, handle)
	}
	s.closed = true
	return nil
}

// Speaker hands out virtual sinks and remembers them for inspection.
type Speaker struct {
	opts []SinkOption

	mu    sync.Mutex
	sinks []*Sink
	err   error
}

func NewSpeaker(opts ...SinkOption) *Speaker {
	return &Speaker{opts: opts}
}

// FailWith makes subsequent NewSink calls fail.
func (sp *Speaker) FailWith(err error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	sp.err = err
}

func (sp *Speaker) NewSink(encodingInfo audio.EncodingInfo) (audio.Sink, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if sp.err != nil {
		return nil, sp.err
	}
	sink := NewSink(encodingInfo, sp.opts...)
	sp.sinks = append(sp.sinks, sink)
	return sink, nil
}

// Sinks returns every sink handed out so far.
func (sp *Speaker) Sinks() []*Sink {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	return append([]*Sink(nil), sp.sinks...)
}
