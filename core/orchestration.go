package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/events"
	"github.com/koscakluka/equiptalk-voice/core/live"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

const (
	liveTranscriptConnecting = "Connecting..."
	liveTranscriptListening  = "Listening..."
)

// Controller runs one live voice session at a time: microphone capture to the
// live channel, scheduled playback of the replies, transcript aggregation and
// one-shot speech. Live replies and speech share a single output sink that is
// opened on first use and kept until Close.
//
// All public methods are safe for concurrent use. Callbacks are invoked
// without internal locks held, from whichever goroutine caused the change.
type Controller struct {
	microphone  audio.Microphone
	speaker     audio.Speaker
	dialer      live.Dialer
	synthesizer texttospeech.Synthesizer

	resetSettleDelay time.Duration
	callbacks        controllerCallbacks
	emit             eventEmitter
	counters         counters

	mu             sync.Mutex
	state          State
	session        *session
	generation     uint64
	transcript     transcriptBuffer
	liveTranscript string
	muted          bool
	resetSeq       uint64

	// resetGuard is only written under mu but read lock-free on the hot path.
	resetGuard atomic.Bool

	history *history
	speech  *speechPlayer

	outputMu sync.Mutex
	output   audio.Sink

	closeOnce sync.Once
	closed    atomic.Bool
}

func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{
		resetSettleDelay: defaultResetSettleDelay,
		history:          newHistory(nil),
		counters:         newCounters(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.emit = newCallbackEventEmitter(c.callbacks)
	c.speech = newSpeechPlayer(c.outputSink, c.synthesizer, c.emit)
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSessionActive reports whether a session is connecting or listening.
func (c *Controller) IsSessionActive() bool {
	return c.State().IsActive()
}

// Generation identifies the most recent session. It increases on every Start.
func (c *Controller) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Controller) LiveTranscript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveTranscript
}

func (c *Controller) History() []Turn {
	return c.history.Snapshot()
}

// Start opens the microphone, an output sink and the live channel, then
// starts streaming. It returns once the session is listening or has failed.
//
// Start is only valid from Idle. If Stop is called while Start is still
// opening resources, Start releases whatever it opened and returns
// ErrSessionStopped.
func (c *Controller) Start(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "start session")
	defer span.End()

	if err := c.start(ctx, span); err != nil {
		if !errors.Is(err, ErrSessionStopped) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	return nil
}

func (c *Controller) start(ctx context.Context, span trace.Span) error {
	if c.closed.Load() {
		return fmt.Errorf("%w: controller closed", ErrInvalidState)
	}
	if c.microphone == nil || c.speaker == nil || c.dialer == nil {
		return fmt.Errorf("%w: microphone, speaker and live dialer are required", ErrNotConfigured)
	}

	c.speech.Stop()

	c.mu.Lock()
	if c.state != StateIdle {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: can not start from %s", ErrInvalidState, state)
	}
	c.generation++
	s := newSession(c.generation)
	c.session = s
	c.transcript.Clear()
	pending := []events.Event{
		c.transitionLocked(StateConnecting),
		c.setLiveTranscriptLocked(liveTranscriptConnecting),
	}
	c.mu.Unlock()
	c.emitAll(pending)

	span.SetAttributes(
		attribute.String("session.id", s.id.String()),
		attribute.Int64("session.generation", int64(s.generation)),
	)

	// Blocking opens are abandoned as soon as the session is stopped.
	openCtx, cancelOpen := context.WithCancel(ctx)
	defer cancelOpen()
	stopOnSessionEnd := context.AfterFunc(s.ctx, cancelOpen)
	defer stopOnSessionEnd()

	device, err := c.microphone.Open(openCtx, audio.GetInputEncodingInfo())
	if err != nil {
		if !c.isCurrent(s) {
			return ErrSessionStopped
		}
		if errors.Is(err, audio.ErrPermissionDenied) {
			err = fmt.Errorf("%w: %w", ErrPermissionDenied, err)
		} else {
			err = fmt.Errorf("failed to open microphone: %w", err)
		}
		c.endSession(s, &SessionError{Message: MessageMicrophoneUnavailable, Err: err})
		return err
	}
	if !c.attach(s, func() { s.device = device }) {
		closeQuietly("capture device", device)
		return ErrSessionStopped
	}

	sink, err := c.outputSink()
	if err != nil {
		if !c.isCurrent(s) {
			return ErrSessionStopped
		}
		c.endSession(s, &SessionError{Message: MessageAudioOutputError, Err: err})
		return err
	}
	if !c.attach(s, func() { s.scheduler = newPlaybackScheduler(sink) }) {
		return ErrSessionStopped
	}

	channel, err := c.dialer.Dial(openCtx)
	if err != nil {
		if !c.isCurrent(s) {
			return ErrSessionStopped
		}
		err = fmt.Errorf("failed to open live channel: %w", err)
		c.endSession(s, &SessionError{Message: MessageConnectionError, Err: err})
		return err
	}

	dropping := func() bool { return s.stopped.Load() || c.resetGuard.Load() }
	if !c.attach(s, func() {
		s.channel = channel
		s.bridge = newCaptureBridge(channel, device.EncodingInfo(), s.generation, dropping, c.emit, &c.counters)
	}) {
		closeQuietly("live channel", channel)
		return ErrSessionStopped
	}

	c.mu.Lock()
	if c.session != s {
		c.mu.Unlock()
		return ErrSessionStopped
	}
	pending = []events.Event{
		c.transitionLocked(StateListening),
		c.setLiveTranscriptLocked(liveTranscriptListening),
	}
	c.mu.Unlock()
	c.emitAll(pending)

	failSession := func(err error) {
		c.endSession(s, &SessionError{Message: MessageConnectionError, Err: err})
	}
	s.goWorker("capture bridge", s.bridge.Run, failSession)
	s.goWorker("live receive", func(ctx context.Context) error {
		return c.receive(ctx, s)
	}, failSession)

	if err := device.StartCapture(s.ctx, s.bridge.OnFrame); err != nil {
		if !c.isCurrent(s) {
			return ErrSessionStopped
		}
		err = fmt.Errorf("%w: failed to start capture: %w", ErrPermissionDenied, err)
		c.endSession(s, &SessionError{Message: MessageMicrophoneUnavailable, Err: err})
		return err
	}

	logger.Info("live session started", "session", s.id, "generation", s.generation)
	return nil
}

// Stop tears the current session down and returns to Idle. It is a no-op
// when no session exists.
func (c *Controller) Stop() error {
	c.mu.Lock()
	s := c.session
	c.mu.Unlock()

	if s == nil {
		return nil
	}
	c.endSession(s, nil)
	return nil
}

// Toggle starts a session from Idle and stops it otherwise.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.state == StateIdle
	c.mu.Unlock()

	if idle {
		return c.Start(ctx)
	}
	return c.Stop()
}

// Close stops the session and any speech and releases the output sink. The
// controller can not be started again.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		_ = c.Stop()
		c.speech.Close()

		c.outputMu.Lock()
		output := c.output
		c.output = nil
		c.outputMu.Unlock()

		if output != nil {
			if closeErr := output.Close(); closeErr != nil {
				err = fmt.Errorf("failed to close audio output: %w", closeErr)
			}
		}
	})
	return err
}

// outputSink returns the shared output sink, opening it on first use.
func (c *Controller) outputSink() (audio.Sink, error) {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	if c.closed.Load() {
		return nil, fmt.Errorf("%w: controller closed", ErrInvalidState)
	}
	if c.output != nil {
		return c.output, nil
	}
	if c.speaker == nil {
		return nil, fmt.Errorf("%w: no speaker", ErrNotConfigured)
	}

	sink, err := c.speaker.NewSink(audio.GetOutputEncodingInfo())
	if err != nil {
		return nil, fmt.Errorf("failed to open audio output: %w", err)
	}
	c.output = sink
	return sink, nil
}

// endSession moves s through Error (when failure is set) and Closing back to
// Idle, releasing everything it holds. Only the first call for a session has
// any effect.
func (c *Controller) endSession(s *session, failure *SessionError) bool {
	c.mu.Lock()
	if s == nil || c.session != s {
		c.mu.Unlock()
		return false
	}
	c.session = nil
	s.stopped.Store(true)

	var pending []events.Event
	if failure != nil {
		pending = append(pending,
			c.transitionLocked(StateError),
			events.NewSessionFailed(s.generation, failure.Message, failure.Err),
		)
	}
	pending = append(pending, c.transitionLocked(StateClosing))
	c.mu.Unlock()
	c.emitAll(pending)

	if failure != nil {
		logger.Error("live session failed", "session", s.id, "message", failure.Message, "error", failure.Err)
	}

	c.speech.Stop()
	if stopped := s.teardown(); stopped > 0 {
		c.counters.interruptions.Add(context.Background(), 1)
		c.emit(events.NewAssistantPlaybackInterrupted(s.generation, stopped))
	}

	c.mu.Lock()
	if !c.transcript.IsEmpty() {
		logger.Debug("discarding unfinished turn", "session", s.id)
	}
	c.transcript.Clear()
	pending = []events.Event{
		c.setLiveTranscriptLocked(""),
		c.transitionLocked(StateIdle),
	}
	c.mu.Unlock()
	c.emitAll(pending)

	logger.Info("live session stopped", "session", s.id, "generation", s.generation)
	return true
}

func (c *Controller) receive(ctx context.Context, s *session) error {
	for {
		message, err := s.channel.Receive()
		if err != nil {
			if s.stopped.Load() || ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, live.ErrClosed) {
				logger.Info("live channel closed", "session", s.id)
				c.endSession(s, nil)
				return nil
			}
			return fmt.Errorf("failed to receive from live channel: %w", err)
		}

		c.handleMessage(ctx, s, message)
	}
}

func (c *Controller) handleMessage(ctx context.Context, s *session, message live.ServerMessage) {
	for _, event := range message.Events() {
		if c.resetGuard.Load() || s.stopped.Load() {
			return
		}

		switch event := event.(type) {
		case live.UserTranscriptDelta:
			c.appendTranscript(s, SpeakerUser, event.Text)
		case live.AssistantTranscriptDelta:
			c.appendTranscript(s, SpeakerAssistant, event.Text)
		case live.TurnComplete:
			c.completeTurn(s)
		case live.AudioChunk:
			c.playChunk(ctx, s, event.Data)
		case live.Interrupted:
			c.interruptPlayback(s)
		}
	}
}

func (c *Controller) appendTranscript(s *session, speaker Speaker, delta string) {
	c.mu.Lock()
	if c.session != s || c.resetGuard.Load() {
		c.mu.Unlock()
		return
	}

	var segment events.Event
	if speaker == SpeakerUser {
		c.transcript.AppendUser(delta)
		segment = events.NewUserTranscriptSegment(s.generation, delta)
	} else {
		c.transcript.AppendAssistant(delta)
		segment = events.NewAssistantTranscriptSegment(s.generation, delta)
	}
	pending := []events.Event{segment, c.setLiveTranscriptLocked(c.transcript.Live())}
	c.mu.Unlock()

	c.emitAll(pending)
}

func (c *Controller) completeTurn(s *session) {
	c.mu.Lock()
	if c.session != s || c.resetGuard.Load() {
		c.mu.Unlock()
		return
	}

	var pending []events.Event
	for _, completed := range c.transcript.Complete() {
		turn := newTurn(completed.Speaker, completed.Text)
		final := events.NewTurnFinal(s.generation, turn.ID.String(), string(turn.Speaker), turn.Text)
		turn.CreatedAt = final.Timestamp()
		c.history.Append(turn)
		pending = append(pending, final)
	}
	pending = append(pending,
		events.NewTurnCompleted(s.generation),
		c.setLiveTranscriptLocked(""),
	)
	c.mu.Unlock()

	c.emitAll(pending)
}

func (c *Controller) playChunk(ctx context.Context, s *session, payload string) {
	c.mu.Lock()
	current := c.session == s
	muted := c.muted
	scheduler := s.scheduler
	c.mu.Unlock()

	if !current || scheduler == nil {
		return
	}
	if muted {
		c.dropChunk(ctx, s, "muted")
		return
	}

	// Live replies and one-shot speech never overlap.
	c.speech.Stop()

	chunk, ok, err := scheduler.Enqueue(ctx, payload, func() bool {
		return !s.stopped.Load() && !c.resetGuard.Load() && !c.IsMuted()
	})
	if err != nil {
		c.counters.decodeFailures.Add(ctx, 1)
		logger.Warn("skipping audio chunk", "session", s.id, "error", err)
		c.dropChunk(ctx, s, "undecodable")
		return
	}
	if !ok {
		c.dropChunk(ctx, s, "superseded")
		return
	}

	c.counters.chunksScheduled.Add(ctx, 1)
	c.emit(events.NewAssistantPlaybackScheduled(s.generation, chunk.StartAt, chunk.Duration))
}

func (c *Controller) dropChunk(ctx context.Context, s *session, reason string) {
	c.counters.chunksDropped.Add(ctx, 1)
	c.emit(events.NewAssistantPlaybackDropped(s.generation, reason))
}

func (c *Controller) interruptPlayback(s *session) {
	c.mu.Lock()
	scheduler := s.scheduler
	c.mu.Unlock()
	if scheduler == nil {
		return
	}

	stopped := scheduler.Interrupt()
	c.counters.interruptions.Add(context.Background(), 1)
	c.emit(events.NewAssistantPlaybackInterrupted(s.generation, stopped))
}

func (c *Controller) attach(s *session, attach func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != s {
		return false
	}
	attach()
	return true
}

func (c *Controller) isCurrent(s *session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session == s
}

func (c *Controller) transitionLocked(to State) events.Event {
	from := c.state
	c.state = to
	return events.NewSessionStateChanged(c.generation, from.String(), to.String())
}

func (c *Controller) setLiveTranscriptLocked(transcript string) events.Event {
	c.liveTranscript = transcript
	return events.NewLiveTranscriptUpdated(c.generation, transcript)
}

func (c *Controller) emitAll(pending []events.Event) {
	for _, event := range pending {
		c.emit(event)
	}
}

// Speak synthesizes text and plays it once, cutting off any live reply that
// is playing. It does nothing while muted or while the reset guard is up.
// Speak returns when playback has started, not when it has finished.
func (c *Controller) Speak(ctx context.Context, text string) error {
	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()

	if c.speaker == nil || !c.speech.IsConfigured() {
		err := fmt.Errorf("%w: speaker and synthesizer are required", ErrNotConfigured)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	text = strings.TrimSpace(text)
	if text == "" || c.IsMuted() || c.resetGuard.Load() {
		return nil
	}

	allowed := func() bool { return !c.IsMuted() && !c.resetGuard.Load() }
	if err := c.speech.Speak(ctx, text, c.stopLivePlayback, allowed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
