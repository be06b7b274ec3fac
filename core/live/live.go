// Package live defines the duplex channel between a voice session and the
// remote model, and the message shapes carried on it.
package live

import (
	"context"
	"errors"
)

// ErrClosed is returned by [Channel.Receive] once the remote side closed the
// channel normally.
var ErrClosed = errors.New("live channel closed")

// Blob is an outbound media payload. Data is base64 encoded.
type Blob struct {
	Data     string `json:"data" jsonschema:"description=Base64 encoded PCM16 little-endian audio"`
	MIMEType string `json:"mimeType" jsonschema:"example=audio/pcm;rate=16000"`
}

// Channel is an open duplex connection to the model.
type Channel interface {
	// Send transmits one media payload.
	Send(ctx context.Context, blob Blob) error
	// Receive blocks until the next server message. It returns an error
	// wrapping [ErrClosed] when the remote closed normally.
	Receive() (ServerMessage, error)
	// Close releases the channel. It is safe to call more than once.
	Close() error
}

// Dialer opens channels. Dial returns only once the channel is ready to carry
// audio.
type Dialer interface {
	Dial(ctx context.Context) (Channel, error)
}

// DialerFunc adapts a function to [Dialer].
type DialerFunc func(ctx context.Context) (Channel, error)

func (f DialerFunc) Dial(ctx context.Context) (Channel, error) { return f(ctx) }
