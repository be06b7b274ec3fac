package virtual

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/equiptalk-voice/core/audio"
)

// Microphone is a scripted capture source. Frames are pushed with
// [CaptureDevice.Feed].
type Microphone struct {
	mu      sync.Mutex
	denied  bool
	devices []*CaptureDevice
	block   chan struct{}
}

func NewMicrophone() *Microphone {
	return &Microphone{}
}

// Deny makes subsequent Open calls fail as if permission was refused.
func (m *Microphone) Deny() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.denied = true
}

// BlockUntil makes Open wait until release is closed or the context is done,
// simulating a pending permission prompt.
func (m *Microphone) BlockUntil(release chan struct{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block = release
}

func (m *Microphone) Open(ctx context.Context, encodingInfo audio.EncodingInfo) (audio.CaptureDevice, error) {
	m.mu.Lock()
	denied := m.denied
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if denied {
		return nil, fmt.Errorf("virtual microphone: %w", audio.ErrPermissionDenied)
	}
	if encodingInfo.IsZero() {
		encodingInfo = audio.GetInputEncodingInfo()
	}

	device := &CaptureDevice{encodingInfo: encodingInfo}
	m.mu.Lock()
	m.devices = append(m.devices, device)
	m.mu.Unlock()
	return device, nil
}

// Devices returns every device opened so far.
func (m *Microphone) Devices() []*CaptureDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*CaptureDevice(nil), m.devices...)
}

// Last returns the most recently opened device, or nil.
func (m *Microphone) Last() *CaptureDevice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.devices) == 0 {
		return nil
	}
	return m.devices[len(m.devices)-1]
}

type CaptureDevice struct {
	encodingInfo audio.EncodingInfo

	mu        sync.Mutex
	onFrame   func([]float32)
	capturing bool
	closed    bool
}

func (d *CaptureDevice) EncodingInfo() audio.EncodingInfo { return d.encodingInfo }

func (d *CaptureDevice) StartCapture(_ context.Context, onFrame func(frame []float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("device closed")
	}
	d.onFrame = onFrame
	d.capturing = true
	return nil
}

func (d *CaptureDevice) StopCapture() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onFrame = nil
	d.capturing = false
	return nil
}

func (d *CaptureDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onFrame = nil
	d.capturing = false
	d.closed = true
	return nil
}

// Feed delivers a frame as if the device produced it. It reports whether the
// frame reached a capture callback.
func (d *CaptureDevice) Feed(frame []float32) bool {
	d.mu.Lock()
	onFrame := d.onFrame
	d.mu.Unlock()
	if onFrame == nil {
		return false
	}
	onFrame(frame)
	return true
}

func (d *CaptureDevice) IsCapturing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.capturing
}

func (d *CaptureDevice) IsClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
