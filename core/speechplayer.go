package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/events"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

// speechPlayer plays one synthesized utterance at a time on the shared
// output sink.
//
// Every Speak and Stop bumps generation; a synthesis or decode that finishes
// under an older generation is discarded.
type speechPlayer struct {
	openSink    func() (audio.Sink, error)
	synthesizer texttospeech.Synthesizer
	emit        eventEmitter

	mu         sync.Mutex
	sink       audio.Sink
	generation uint64
	handle     audio.Handle
	speaking   bool
	closed     bool
}

// newSpeechPlayer plays on whatever sink openSink returns. openSink is called
// lazily and may hand out the same sink every time.
func newSpeechPlayer(openSink func() (audio.Sink, error), synthesizer texttospeech.Synthesizer, emit eventEmitter) *speechPlayer {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &speechPlayer{openSink: openSink, synthesizer: synthesizer, emit: emit}
}

func (p *speechPlayer) IsConfigured() bool {
	return p != nil && p.synthesizer != nil && p.openSink != nil
}

func (p *speechPlayer) IsSpeaking() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Speak synthesizes text and starts playing it. stopOthers is called before
// synthesis and again right before playback starts, so nothing else is
// audible once this utterance begins. allowed is checked after every slow
// step.
func (p *speechPlayer) Speak(ctx context.Context, text string, stopOthers func(), allowed func() bool) error {
	if !p.IsConfigured() {
		return fmt.Errorf("speech player: %w", ErrNotConfigured)
	}
	if allowed == nil {
		allowed = func() bool { return true }
	}
	if stopOthers == nil {
		stopOthers = func() {}
	}

	p.Stop()
	stopOthers()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return fmt.Errorf("speech player closed")
	}
	p.generation++
	generation := p.generation
	p.mu.Unlock()

	speech, err := p.synthesizer.Synthesize(ctx, text)
	if err != nil {
		if !p.isCurrent(generation) {
			return nil
		}
		err = fmt.Errorf("failed to synthesize speech: %w", err)
		p.emit(events.NewAssistantSpeechFailed(err))
		return err
	}
	if !p.isCurrent(generation) || !allowed() {
		return nil
	}

	pcm, err := audio.DecodeBase64(speech.Audio)
	if err != nil {
		p.emit(events.NewAssistantSpeechFailed(err))
		return err
	}

	sink, err := p.openSink()
	if err != nil {
		err = fmt.Errorf("failed to open speech output: %w", err)
		p.emit(events.NewAssistantSpeechFailed(err))
		return err
	}
	buffer, err := sink.Decode(ctx, pcm)
	if err != nil {
		err = fmt.Errorf("failed to decode speech: %w", err)
		p.emit(events.NewAssistantSpeechFailed(err))
		return err
	}
	if !p.isCurrent(generation) || !allowed() {
		return nil
	}

	stopOthers()

	p.mu.Lock()
	if p.closed || p.generation != generation {
		p.mu.Unlock()
		return nil
	}
	handle, err := sink.Schedule(buffer, sink.CurrentTime(), func(handle audio.Handle) {
		p.ended(generation, handle)
	})
	if err != nil {
		p.mu.Unlock()
		err = fmt.Errorf("failed to play speech: %w", err)
		p.emit(events.NewAssistantSpeechFailed(err))
		return err
	}
	p.sink = sink
	p.handle = handle
	p.speaking = true
	p.mu.Unlock()

	p.emit(events.NewAssistantSpeechStarted(text))
	return nil
}

func (p *speechPlayer) ended(generation uint64, handle audio.Handle) {
	p.mu.Lock()
	if p.generation != generation || p.handle != handle || !p.speaking {
		p.mu.Unlock()
		return
	}
	p.speaking = false
	p.mu.Unlock()

	p.emit(events.NewAssistantSpeechEnded(false))
}

// Stop cuts off the current utterance and abandons any synthesis in flight.
// It reports whether something was audible.
func (p *speechPlayer) Stop() bool {
	if p == nil {
		return false
	}

	p.mu.Lock()
	p.generation++
	wasSpeaking := p.speaking
	sink, handle := p.sink, p.handle
	p.speaking = false
	p.mu.Unlock()

	if !wasSpeaking {
		return false
	}
	if sink != nil {
		sink.Stop(handle)
	}
	p.emit(events.NewAssistantSpeechEnded(true))
	return true
}

func (p *speechPlayer) isCurrent(generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.closed && p.generation == generation
}

// Close stops playback and refuses later utterances. The sink belongs to
// whoever provided it.
func (p *speechPlayer) Close() {
	if p == nil {
		return
	}
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
