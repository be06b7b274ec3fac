package orchestration

import (
	"time"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/events"
	"github.com/koscakluka/equiptalk-voice/core/live"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

const defaultResetSettleDelay = 100 * time.Millisecond

type ControllerOption func(*Controller)

type controllerCallbacks struct {
	onStateChanged         func(State)
	onLiveTranscript       func(string)
	onTurn                 func(Turn)
	onError                func(*SessionError)
	onSpeakingStateChanged func(bool)
	onEvent                func(events.Event)
}

func WithMicrophone(microphone audio.Microphone) ControllerOption {
	return func(c *Controller) {
		c.microphone = microphone
	}
}

func WithSpeaker(speaker audio.Speaker) ControllerOption {
	return func(c *Controller) {
		c.speaker = speaker
	}
}

func WithLiveDialer(dialer live.Dialer) ControllerOption {
	return func(c *Controller) {
		c.dialer = dialer
	}
}

// WithSynthesizer enables one-shot speech through [Controller.Speak].
func WithSynthesizer(synthesizer texttospeech.Synthesizer) ControllerOption {
	return func(c *Controller) {
		c.synthesizer = synthesizer
	}
}

// WithResetSettleDelay sets how long the reset guard stays up after
// [Controller.ClearHistory]. Non-positive values are ignored.
func WithResetSettleDelay(delay time.Duration) ControllerOption {
	return func(c *Controller) {
		if delay > 0 {
			c.resetSettleDelay = delay
		}
	}
}

// WithHistory seeds the conversation history, e.g. from a previous run.
func WithHistory(turns []Turn) ControllerOption {
	return func(c *Controller) {
		c.history = newHistory(turns)
	}
}

func WithStateChangedCallback(callback func(State)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onStateChanged = callback
	}
}

// WithLiveTranscriptCallback is called with the full live display text every
// time it changes.
func WithLiveTranscriptCallback(callback func(transcript string)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onLiveTranscript = callback
	}
}

func WithTurnCallback(callback func(turn Turn)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onTurn = callback
	}
}

func WithErrorCallback(callback func(err *SessionError)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onError = callback
	}
}

func WithSpeakingStateChangedCallback(callback func(isSpeaking bool)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onSpeakingStateChanged = callback
	}
}

// WithEventHandler receives every event after the typed callbacks ran.
func WithEventHandler(handler func(events.Event)) ControllerOption {
	return func(c *Controller) {
		c.callbacks.onEvent = handler
	}
}
