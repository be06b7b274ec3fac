// Package portaudio implements audio capture on top of PortAudio, for hosts
// where miniaudio can not reach the input device.
package portaudio

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/equiptalk-voice/core/audio"
)

type Client struct {
	bufferSize int

	mu     sync.Mutex
	closed bool
}

func NewClient(bufferSize int) (*Client, error) {
	if bufferSize <= 0 {
		bufferSize = audio.FrameSize
	}
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize PortAudio: %w", err)
	}

	return &Client{bufferSize: bufferSize}, nil
}

func (c *Client) Open(_ context.Context, encodingInfo audio.EncodingInfo) (audio.CaptureDevice, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("client closed")
	}
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetInputEncodingInfo()
	}

	in := make([]float32, c.bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(encodingInfo.SampleRate), c.bufferSize, in)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PortAudio stream: %w", audio.ErrPermissionDenied, err)
	}

	return &captureDevice{
		stream:       stream,
		in:           in,
		encodingInfo: encodingInfo,
		assembler:    audio.NewFrameAssembler(audio.FrameSize),
	}, nil
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if err := portaudio.Terminate(); err != nil {
		log.Printf("Failed to terminate PortAudio: %v", err)
	}
}

type captureDevice struct {
	stream       *portaudio.Stream
	in           []float32
	encodingInfo audio.EncodingInfo
	assembler    *audio.FrameAssembler

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (d *captureDevice) EncodingInfo() audio.EncodingInfo { return d.encodingInfo }

func (d *captureDevice) StartCapture(ctx context.Context, onFrame func(frame []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return nil
	}

	if err := d.stream.Start(); err != nil {
		return fmt.Errorf("failed to start PortAudio stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.done = make(chan struct{})
	go d.readLoop(ctx, onFrame, d.done)
	return nil
}

func (d *captureDevice) readLoop(ctx context.Context, onFrame func(frame []float32), done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if err := d.stream.Read(); err != nil {
				log.Printf("Failed to read from PortAudio stream: %v", err)
				continue
			}
			d.assembler.Write(d.in, onFrame)
		}
	}
}

func (d *captureDevice) StopCapture() error {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	d.assembler.Reset()

	if err := d.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop PortAudio stream: %w", err)
	}
	return nil
}

func (d *captureDevice) Close() error {
	err := d.StopCapture()
	if closeErr := d.stream.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("failed to close PortAudio stream: %w", closeErr)
	}
	return err
}
