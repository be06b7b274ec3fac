package main

import (
	"context"
	"fmt"

	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/audio/miniaudio"
	"github.com/koscakluka/equiptalk-voice/core/audio/portaudio"
	"github.com/koscakluka/equiptalk-voice/core/audio/virtual"
	"github.com/koscakluka/equiptalk-voice/core/live"
	livegemini "github.com/koscakluka/equiptalk-voice/core/live/gemini"
	"github.com/koscakluka/equiptalk-voice/core/live/relay"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech/deepgram"
	ttsgemini "github.com/koscakluka/equiptalk-voice/core/texttospeech/gemini"
	"github.com/koscakluka/equiptalk-voice/internal/config"
)

type audioBackend struct {
	microphone audio.Microphone
	speaker    audio.Speaker
	closers    []func()
}

func (b *audioBackend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func newAudioBackend(cfg *config.Config) (*audioBackend, error) {
	switch cfg.AudioBackend {
	case config.AudioBackendMiniaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize miniaudio: %w", err)
		}
		return &audioBackend{microphone: client, speaker: client, closers: []func(){client.Close}}, nil

	case config.AudioBackendPortaudio:
		// portaudio only captures; playback still goes through miniaudio.
		input, err := portaudio.NewClient(audio.FrameSize)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
		}
		output, err := miniaudio.NewClient()
		if err != nil {
			input.Close()
			return nil, fmt.Errorf("failed to initialize miniaudio: %w", err)
		}
		return &audioBackend{microphone: input, speaker: output, closers: []func(){input.Close, output.Close}}, nil

	case config.AudioBackendNone:
		return &audioBackend{
			microphone: virtual.NewMicrophone(),
			speaker:    virtual.NewSpeaker(virtual.WithWallClock()),
		}, nil
	}
	return nil, fmt.Errorf("unknown audio backend %q", cfg.AudioBackend)
}

func newLiveDialer(ctx context.Context, cfg *config.Config, instruction string) (live.Dialer, error) {
	switch cfg.LiveTransport {
	case config.TransportGemini:
		client, err := livegemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return livegemini.NewDialer(client,
			livegemini.WithModel(cfg.LiveModel),
			livegemini.WithVoice(cfg.VoiceName),
			livegemini.WithSystemInstruction(instruction),
		), nil

	case config.TransportWebsocket:
		return relay.NewDialer(cfg.LiveRelayURL, relay.WithToken(cfg.LiveRelayToken)), nil
	}
	return nil, fmt.Errorf("unknown live transport %q", cfg.LiveTransport)
}

// newSynthesizer returns nil when speech is disabled.
func newSynthesizer(ctx context.Context, cfg *config.Config) (texttospeech.Synthesizer, error) {
	switch cfg.TTSProvider {
	case config.TTSProviderGemini:
		client, err := ttsgemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		return ttsgemini.NewSynthesizer(client,
			texttospeech.WithModel(cfg.TTSModel),
			texttospeech.WithVoice(cfg.VoiceName),
		), nil

	case config.TTSProviderDeepgram:
		client, err := deepgram.NewTextToSpeechClient(cfg.DeepgramAPIKey, cfg.DeepgramVoice)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepgram client: %w", err)
		}
		return client, nil

	case config.TTSProviderNone:
		return nil, nil
	}
	return nil, fmt.Errorf("unknown tts provider %q", cfg.TTSProvider)
}
