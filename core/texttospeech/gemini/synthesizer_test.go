package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

func newTestServer(t *testing.T, pcm []byte, requests chan<- map[string]any) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		var parsed map[string]any
		_ = json.Unmarshal(body, &parsed)
		if requests != nil {
			requests <- parsed
		}

		parts := []map[string]any{}
		if pcm != nil {
			parts = append(parts, map[string]any{
				"inlineData": map[string]any{
					"mimeType": "audio/L16;codec=pcm;rate=24000",
					"data":     base64.StdEncoding.EncodeToString(pcm),
				},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{"content": map[string]any{"role": "model", "parts": parts}}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSynthesizeReturnsBase64Audio(t *testing.T) {
	requests := make(chan map[string]any, 1)
	server := newTestServer(t, []byte{1, 0, 2, 0}, requests)

	client, err := NewClient(context.Background(), "test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	speech, err := NewSynthesizer(client, texttospeech.WithVoice("Kore")).Synthesize(context.Background(), "Say cheerfully: hi")
	if err != nil {
		t.Fatalf("expected synthesis to succeed, got %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(speech.Audio)
	if err != nil || len(raw) != 4 {
		t.Fatalf("expected 4 bytes of base64 audio, got %q (%v)", speech.Audio, err)
	}
	if speech.EncodingInfo.SampleRate != 24000 {
		t.Fatalf("expected 24kHz speech, got %d", speech.EncodingInfo.SampleRate)
	}

	request := <-requests
	generationConfig, _ := request["generationConfig"].(map[string]any)
	encoded, _ := json.Marshal(generationConfig)
	if !strings.Contains(string(encoded), "AUDIO") || !strings.Contains(string(encoded), "Kore") {
		t.Fatalf("expected audio modality and voice in request, got %s", encoded)
	}
}

func TestSynthesizeWithoutAudioFails(t *testing.T) {
	server := newTestServer(t, nil, nil)

	client, err := NewClient(context.Background(), "test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("expected client to be created, got %v", err)
	}

	if _, err := NewSynthesizer(client).Synthesize(context.Background(), "hi"); !errors.Is(err, texttospeech.ErrNoAudio) {
		t.Fatalf("expected ErrNoAudio, got %v", err)
	}
}
