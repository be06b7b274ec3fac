package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/equiptalk-voice/core/audio"
)

type captureDevice struct {
	device       *malgo.Device
	encodingInfo audio.EncodingInfo
	assembler    *audio.FrameAssembler

	onFrame func(frame []float32)

	mu sync.Mutex
}

func newCaptureDevice(audioContext *malgo.AllocatedContext, encodingInfo audio.EncodingInfo) (*captureDevice, error) {
	c := &captureDevice{
		encodingInfo: encodingInfo,
		assembler:    audio.NewFrameAssembler(audio.FrameSize),
	}

	channels := 1
	format := malgo.FormatF32
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(encodingInfo.SampleRate)
	config.Capture.Format = format
	config.Capture.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = 480
	config.Periods = 3

	var err error
	c.device, err = malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}

			c.mu.Lock()
			onFrame := c.onFrame
			c.mu.Unlock()
			if onFrame == nil {
				return
			}

			samples := make([]float32, n/4)
			for i := range samples {
				samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(pInput[i*4:]))
			}
			c.assembler.Write(samples, onFrame)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}

	return c, nil
}

func (c *captureDevice) EncodingInfo() audio.EncodingInfo { return c.encodingInfo }

func (c *captureDevice) StartCapture(_ context.Context, onFrame func(frame []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	} else if c.device.IsStarted() {
		return nil
	}

	c.onFrame = onFrame
	if err := c.device.Start(); err != nil {
		c.onFrame = nil
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *captureDevice) StopCapture() error {
	c.mu.Lock()
	c.onFrame = nil
	device := c.device
	c.mu.Unlock()
	if pending := c.assembler.Pending(); pending > 0 {
		log.Printf("Discarding %d samples of partial capture frame", pending)
	}
	c.assembler.Reset()

	// Stop waits for an in-flight data callback, which takes c.mu.
	if device == nil || !device.IsStarted() {
		return nil
	}
	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	return nil
}

func (c *captureDevice) Close() error {
	err := c.StopCapture()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	return err
}
