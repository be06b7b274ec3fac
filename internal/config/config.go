// Package config loads runtime configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	TransportGemini    = "gemini"
	TransportWebsocket = "websocket"

	TTSProviderGemini   = "gemini"
	TTSProviderDeepgram = "deepgram"
	TTSProviderNone     = "none"

	AudioBackendMiniaudio = "miniaudio"
	AudioBackendPortaudio = "portaudio"
	AudioBackendNone      = "none"
)

type Config struct {
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`

	// Live channel
	LiveTransport  string `envconfig:"LIVE_TRANSPORT" default:"gemini"` // gemini, websocket
	LiveModel      string `envconfig:"LIVE_MODEL" default:"gemini-2.5-flash-native-audio-preview-12-2025"`
	LiveRelayURL   string `envconfig:"LIVE_RELAY_URL"`
	LiveRelayToken string `envconfig:"LIVE_RELAY_TOKEN"`

	// One-shot speech
	TTSProvider    string `envconfig:"TTS_PROVIDER" default:"gemini"` // gemini, deepgram, none
	TTSModel       string `envconfig:"TTS_MODEL" default:"gemini-2.5-flash-preview-tts"`
	VoiceName      string `envconfig:"VOICE_NAME" default:"Aoede"`
	DeepgramAPIKey string `envconfig:"DEEPGRAM_API_KEY"`
	DeepgramVoice  string `envconfig:"DEEPGRAM_VOICE" default:"aura-2-thalia-en"`

	AudioBackend  string `envconfig:"AUDIO_BACKEND" default:"miniaudio"` // miniaudio, portaudio, none
	ResetSettleMS int    `envconfig:"RESET_SETTLE_MS" default:"100"`

	// SystemInstructionFile, when set, replaces the built-in system
	// instruction with the file's contents.
	SystemInstructionFile string `envconfig:"SYSTEM_INSTRUCTION_FILE"`
}

// Load reads a .env file if there is one, then the environment, and validates
// the result.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv is Load without the .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	switch c.LiveTransport {
	case TransportGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for the gemini live transport"))
		}
	case TransportWebsocket:
		if c.LiveRelayURL == "" {
			errs = append(errs, errors.New("LIVE_RELAY_URL is required for the websocket live transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LIVE_TRANSPORT %q", c.LiveTransport))
	}

	switch c.TTSProvider {
	case TTSProviderGemini:
		if c.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for gemini speech"))
		}
	case TTSProviderDeepgram:
		if c.DeepgramAPIKey == "" {
			errs = append(errs, errors.New("DEEPGRAM_API_KEY is required for deepgram speech"))
		}
	case TTSProviderNone:
	default:
		errs = append(errs, fmt.Errorf("unknown TTS_PROVIDER %q", c.TTSProvider))
	}

	switch c.AudioBackend {
	case AudioBackendMiniaudio, AudioBackendPortaudio, AudioBackendNone:
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIO_BACKEND %q", c.AudioBackend))
	}

	if c.ResetSettleMS < 0 {
		errs = append(errs, fmt.Errorf("RESET_SETTLE_MS must not be negative, got %d", c.ResetSettleMS))
	}

	return errors.Join(errs...)
}

func (c *Config) ResetSettleDelay() time.Duration {
	return time.Duration(c.ResetSettleMS) * time.Millisecond
}

// SystemInstruction returns the contents of SystemInstructionFile, or
// fallback when no file is configured.
func (c *Config) SystemInstruction(fallback string) (string, error) {
	if c.SystemInstructionFile == "" {
		return fallback, nil
	}
	contents, err := os.ReadFile(c.SystemInstructionFile)
	if err != nil {
		return "", fmt.Errorf("failed to read system instruction: %w", err)
	}
	return strings.TrimSpace(string(contents)), nil
}
