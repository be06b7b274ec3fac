// Package gemini implements the live channel on top of the Gemini Live API.
package gemini

import (
	"context"
	"fmt"

	"github.com/koscakluka/equiptalk-voice/core/live"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash-native-audio-preview-12-2025"
	DefaultVoice = "Aoede"
)

type Dialer struct {
	client            *genai.Client
	model             string
	voice             string
	systemInstruction string
}

type DialerOption func(*Dialer)

func WithModel(model string) DialerOption {
	return func(d *Dialer) {
		if model != "" {
			d.model = model
		}
	}
}

func WithVoice(voice string) DialerOption {
	return func(d *Dialer) {
		if voice != "" {
			d.voice = voice
		}
	}
}

func WithSystemInstruction(instruction string) DialerOption {
	return func(d *Dialer) { d.systemInstruction = instruction }
}

func NewDialer(client *genai.Client, opts ...DialerOption) *Dialer {
	d := &Dialer{client: client, model: DefaultModel, voice: DefaultVoice}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewClient creates a Gemini API client authenticated with apiKey.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

// ConnectConfig returns the session configuration: audio responses with both
// directions transcribed.
func (d *Dialer) ConnectConfig() *genai.LiveConnectConfig {
	config := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: d.voice},
			},
		},
		InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
		OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
	}
	if d.systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(d.systemInstruction, genai.RoleUser)
	}
	return config
}

// Dial connects and blocks until the server acknowledged the setup.
func (d *Dialer) Dial(ctx context.Context) (live.Channel, error) {
	if d.client == nil {
		return nil, fmt.Errorf("gemini client not configured")
	}

	session, err := d.client.Live.Connect(ctx, d.model, d.ConnectConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect live session: %w", err)
	}

	ch, err := awaitSetup(ctx, session)
	if err != nil {
		_ = session.Close()
		return nil, err
	}
	return ch, nil
}

func awaitSetup(ctx context.Context, session liveSession) (*Channel, error) {
	type result struct {
		msg *genai.LiveServerMessage
		err error
	}
	setup := make(chan result, 1)
	go func() {
		msg, err := session.Receive()
		setup <- result{msg, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-setup:
		if res.err != nil {
			return nil, fmt.Errorf("failed waiting for setup: %w", classify(res.err))
		}
		ch := newChannel(session)
		if res.msg != nil && res.msg.SetupComplete == nil {
			// Some servers skip the ack and start streaming straight away.
			ch.pending = res.msg
		}
		return ch, nil
	}
}
