package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.LiveTransport != TransportGemini {
		t.Fatalf("expected default transport %q, got %q", TransportGemini, cfg.LiveTransport)
	}
	if cfg.LiveModel != "gemini-2.5-flash-native-audio-preview-12-2025" {
		t.Fatalf("expected default live model, got %q", cfg.LiveModel)
	}
	if cfg.VoiceName != "Aoede" {
		t.Fatalf("expected default voice Aoede, got %q", cfg.VoiceName)
	}
	if cfg.AudioBackend != AudioBackendMiniaudio {
		t.Fatalf("expected default backend %q, got %q", AudioBackendMiniaudio, cfg.AudioBackend)
	}
	if cfg.ResetSettleDelay() != 100*time.Millisecond {
		t.Fatalf("expected 100ms settle delay, got %s", cfg.ResetSettleDelay())
	}
}

func TestLoadFromEnvRequiresGeminiKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := LoadFromEnv()
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Fatalf("expected missing GEMINI_API_KEY error, got %v", err)
	}
}

func TestValidateWebsocketTransportWithoutGemini(t *testing.T) {
	cfg := Config{
		LiveTransport: TransportWebsocket,
		LiveRelayURL:  "ws://localhost:8080/live",
		TTSProvider:   TTSProviderNone,
		AudioBackend:  AudioBackendNone,
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected relay-only config to be valid, got %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Config{
		LiveTransport: "carrier-pigeon",
		TTSProvider:   TTSProviderDeepgram,
		AudioBackend:  "alsa",
		ResetSettleMS: -1,
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation to fail")
	}
	for _, want := range []string{"LIVE_TRANSPORT", "DEEPGRAM_API_KEY", "AUDIO_BACKEND", "RESET_SETTLE_MS"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %s, got %v", want, err)
		}
	}
}

func TestSystemInstructionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "instruction.txt")
	if err := os.WriteFile(path, []byte("  Be brief.\n"), 0o600); err != nil {
		t.Fatalf("failed to write instruction file: %v", err)
	}

	cfg := Config{SystemInstructionFile: path}
	got, err := cfg.SystemInstruction("fallback")
	if err != nil {
		t.Fatalf("expected instruction to load, got %v", err)
	}
	if got != "Be brief." {
		t.Fatalf("expected %q, got %q", "Be brief.", got)
	}

	cfg = Config{}
	if got, _ := cfg.SystemInstruction("fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
