// Package texttospeech defines one-shot speech synthesis: a whole text in,
// one block of audio out.
package texttospeech

import (
	"context"
	"errors"

	"github.com/koscakluka/equiptalk-voice/core/audio"
)

// ErrNoAudio is returned when a provider answered without any audio.
var ErrNoAudio = errors.New("no audio in synthesis response")

// Speech is a synthesized utterance. Audio is base64 PCM16 little-endian mono
// at EncodingInfo.SampleRate.
type Speech struct {
	Audio        string
	EncodingInfo audio.EncodingInfo
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (Speech, error)
}

// SynthesizerFunc adapts a function to [Synthesizer].
type SynthesizerFunc func(ctx context.Context, text string) (Speech, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text string) (Speech, error) {
	return f(ctx, text)
}

type TextToSpeechOptions struct {
	Model        string
	Voice        string
	EncodingInfo audio.EncodingInfo
}

type TextToSpeechOption func(*TextToSpeechOptions)

func WithModel(model string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if model != "" {
			o.Model = model
		}
	}
}

func WithVoice(voice string) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if voice != "" {
			o.Voice = voice
		}
	}
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) TextToSpeechOption {
	return func(o *TextToSpeechOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

// Apply builds options on top of defaults.
func Apply(defaults TextToSpeechOptions, opts ...TextToSpeechOption) TextToSpeechOptions {
	if defaults.EncodingInfo.IsZero() {
		defaults.EncodingInfo = audio.GetOutputEncodingInfo()
	}
	for _, opt := range opts {
		opt(&defaults)
	}
	return defaults
}
