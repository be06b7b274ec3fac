// Package miniaudio implements the audio device interfaces on top of malgo.
package miniaudio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/equiptalk-voice/core/audio"
)

type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext

	mu     sync.Mutex
	closed bool
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(
		nil,
		malgo.ContextConfig{},
		func(message string) {}, //log.Println("malgo:", message) },
	)
	if err != nil {
		return nil, fmt.Errorf("malgo init context: %w", err)
	}

	return &Client{audioContext: audioCtx}, nil
}

// Open initializes a capture device. Failing to open the default input is
// reported as [audio.ErrPermissionDenied], which is how the OS surfaces a
// refused microphone grant through miniaudio.
func (c *Client) Open(_ context.Context, encodingInfo audio.EncodingInfo) (audio.CaptureDevice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("client closed")
	}

	if encodingInfo.IsZero() {
		encodingInfo = audio.GetInputEncodingInfo()
	}

	device, err := newCaptureDevice(c.audioContext, encodingInfo)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", audio.ErrPermissionDenied, err)
	}
	return device, nil
}

func (c *Client) NewSink(encodingInfo audio.EncodingInfo) (audio.Sink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("client closed")
	}

	if encodingInfo.IsZero() {
		encodingInfo = audio.GetOutputEncodingInfo()
	}

	sink, err := newPlaybackSink(c.audioContext, encodingInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize playback sink: %w", err)
	}
	return sink, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true

	if err := c.audioContext.Uninit(); err != nil {
		log.Printf("Failed to uninit audio context: %v", err)
	}
	c.audioContext.Free()
}
