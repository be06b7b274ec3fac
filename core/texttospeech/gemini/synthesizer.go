// Package gemini implements one-shot speech synthesis with the Gemini TTS
// models.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice = "Aoede"
)

type Synthesizer struct {
	client  *genai.Client
	options texttospeech.TextToSpeechOptions
}

type clientConfig struct {
	baseURL string
}

type ClientOption func(*clientConfig)

// WithBaseURL points the client at a different API host.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) { c.baseURL = baseURL }
}

// NewClient creates a Gemini client whose HTTP calls are traced.
func NewClient(ctx context.Context, apiKey string, opts ...ClientOption) (*genai.Client, error) {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithSpanNameFormatter(func(operationName string, request *http.Request) string {
			return operationName + " " + request.URL.Path
		}),
	)}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return client, nil
}

func NewSynthesizer(client *genai.Client, opts ...texttospeech.TextToSpeechOption) *Synthesizer {
	return &Synthesizer{
		client: client,
		options: texttospeech.Apply(texttospeech.TextToSpeechOptions{
			Model: DefaultModel,
			Voice: DefaultVoice,
		}, opts...),
	}
}

func (s *Synthesizer) Synthesize(ctx context.Context, text string) (texttospeech.Speech, error) {
	ctx, span := tracer.Start(ctx, "synthesize speech")
	defer span.End()
	span.SetAttributes(
		attribute.String("tts.model", s.options.Model),
		attribute.String("tts.voice", s.options.Voice),
		attribute.Int("tts.text_length", len(text)),
	)

	resp, err := s.client.Models.GenerateContent(ctx, s.options.Model, genai.Text(text), &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityAudio)},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.options.Voice},
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed to generate speech: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return texttospeech.Speech{}, err
	}

	data := firstInlineData(resp)
	if len(data) == 0 {
		span.RecordError(texttospeech.ErrNoAudio)
		span.SetStatus(codes.Error, "no audio")
		logger.Warn("speech response carried no audio", "model", s.options.Model)
		return texttospeech.Speech{}, texttospeech.ErrNoAudio
	}

	span.SetAttributes(attribute.Int("tts.audio_bytes", len(data)))
	return texttospeech.Speech{
		Audio:        base64.StdEncoding.EncodeToString(data),
		EncodingInfo: s.options.EncodingInfo,
	}, nil
}

func firstInlineData(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}
