// Package deepgram implements one-shot speech synthesis over the Deepgram speak
// websocket.
package deepgram

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/equiptalk-voice/core/audio"
	"github.com/koscakluka/equiptalk-voice/core/texttospeech"
)

const defaultHost = "api.deepgram.com"

type TextToSpeechClient struct {
	apiKey  string
	scheme  string
	host    string
	options texttospeech.TextToSpeechOptions

	voice deepgramVoice
	mu    sync.Mutex
}

type ClientOption func(*TextToSpeechClient)

// WithEndpoint replaces the default wss://api.deepgram.com endpoint.
func WithEndpoint(scheme, host string) ClientOption {
	return func(c *TextToSpeechClient) {
		c.scheme = scheme
		c.host = host
	}
}

func WithTextToSpeechOptions(opts ...texttospeech.TextToSpeechOption) ClientOption {
	return func(c *TextToSpeechClient) {
		c.options = texttospeech.Apply(c.options, opts...)
	}
}

func NewTextToSpeechClient(apiKey, voiceName string, opts ...ClientOption) (*TextToSpeechClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	voice := deepgramVoice(voiceName)
	if voice == "" {
		voice = defaultVoice
	}
	if !slices.Contains(GetAvailableVoices(), voice) {
		return nil, fmt.Errorf("invalid voice %q", voice)
	}

	client := &TextToSpeechClient{
		apiKey:  apiKey,
		scheme:  "wss",
		host:    defaultHost,
		voice:   voice,
		options: texttospeech.Apply(texttospeech.TextToSpeechOptions{}),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

func (c *TextToSpeechClient) SetVoice(voice deepgramVoice) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.voice = voice
}

// Synthesize speaks text in one request: Speak, Flush, collect audio until
// Flushed, then Close.
func (c *TextToSpeechClient) Synthesize(ctx context.Context, text string) (texttospeech.Speech, error) {
	c.mu.Lock()
	voice := c.voice
	encodingInfo := c.options.EncodingInfo
	c.mu.Unlock()

	conn, err := c.connectWebsocket(ctx, voice, encodingInfo)
	if err != nil {
		return texttospeech.Speech{}, fmt.Errorf("failed to open websocket: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if err := conn.WriteJSON(speakMsg{Type: "Speak", Text: text}); err != nil {
		return texttospeech.Speech{}, fmt.Errorf("failed to send text to deepgram through websocket: %w", err)
	}
	if err := conn.WriteJSON(flushMsg); err != nil {
		return texttospeech.Speech{}, fmt.Errorf("failed to send websocket flush message: %w", err)
	}

	var pcm []byte
	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return texttospeech.Speech{}, ctxErr
			}
			return texttospeech.Speech{}, fmt.Errorf("websocket read error: %w", err)
		}

		if msgType == websocket.BinaryMessage {
			pcm = append(pcm, msg...)
			continue
		}

		var parsedMsg websocketMessage
		if err := json.Unmarshal(msg, &parsedMsg); err != nil {
			continue
		}
		switch parsedMsg.Type {
		case "Flushed":
			if err := conn.WriteJSON(closeMsg); err != nil {
				log.Printf("Failed to close deepgram stream: %v", err)
			}
			if len(pcm) == 0 {
				return texttospeech.Speech{}, texttospeech.ErrNoAudio
			}
			if len(pcm)%2 != 0 {
				pcm = pcm[:len(pcm)-1]
			}
			return texttospeech.Speech{
				Audio:        base64.StdEncoding.EncodeToString(pcm),
				EncodingInfo: encodingInfo,
			}, nil
		case "Warning":
			log.Printf("Deepgram warning: %s", msg)
		case "Error":
			return texttospeech.Speech{}, errors.New("deepgram error: " + string(msg))
		}
	}
}

func (c *TextToSpeechClient) connectWebsocket(ctx context.Context, voice deepgramVoice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx,
		(&url.URL{
			Scheme: c.scheme,
			Host:   c.host, Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + c.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMsg struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	closeMsg = websocketMessage{Type: "Close"}
)
