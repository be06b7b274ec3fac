package miniaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/equiptalk-voice/core/audio"
)

// playbackSink mixes scheduled buffers onto a single output device. Its clock
// is the number of frames handed to the device divided by the sample rate.
type playbackSink struct {
	device       *malgo.Device
	encodingInfo audio.EncodingInfo

	mu             sync.Mutex
	renderedFrames int64
	nextHandle     audio.Handle
	voices         []*voice
	// ending holds voices that ran out but whose callback has not fired yet,
	// so a Stop in between can still cancel it.
	ending         map[audio.Handle]*voice
	closed         bool
}

type voice struct {
	handle     audio.Handle
	startFrame int64
	samples    []float32
	onEnded    func(audio.Handle)
}

func (v *voice) endFrame() int64 { return v.startFrame + int64(len(v.samples)) }

func newPlaybackSink(audioContext *malgo.AllocatedContext, encodingInfo audio.EncodingInfo) (*playbackSink, error) {
	s := &playbackSink{encodingInfo: encodingInfo, ending: map[audio.Handle]*voice{}}

	sampleRate := uint32(encodingInfo.SampleRate)
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	config := malgo.DefaultDeviceConfig(malgo.Playback)
	config.SampleRate = sampleRate
	config.Playback.Format = format
	config.Playback.Channels = uint32(channels)
	config.Alsa.NoMMap = 1
	config.PeriodSizeInFrames = sampleRate / 50 // ~20ms of audio
	config.Periods = 4

	var err error
	if s.device, err = malgo.InitDevice(
		audioContext.Context,
		config,
		malgo.DeviceCallbacks{Data: s.processAudio(bytesPerFrame)},
	); err != nil {
		return nil, err
	}

	if err := s.device.Start(); err != nil {
		s.device.Uninit()
		return nil, fmt.Errorf("failed to start playback device: %w", err)
	}

	return s, nil
}

func (s *playbackSink) EncodingInfo() audio.EncodingInfo { return s.encodingInfo }

func (s *playbackSink) Decode(ctx context.Context, pcm []byte) (audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return audio.Buffer{}, err
	}
	return audio.DecodePCM16(pcm, s.encodingInfo.SampleRate)
}

func (s *playbackSink) CurrentTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return float64(s.renderedFrames) / float64(s.encodingInfo.SampleRate)
}

func (s *playbackSink) Schedule(buffer audio.Buffer, startAt float64, onEnded func(audio.Handle)) (audio.Handle, error) {
	if buffer.SampleRate != s.encodingInfo.SampleRate {
		return 0, fmt.Errorf("buffer sample rate %d does not match device rate %d", buffer.SampleRate, s.encodingInfo.SampleRate)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, fmt.Errorf("sink closed")
	}

	// Back-to-back starts are sums of float durations; rounding keeps them on
	// the frame the previous voice ends at.
	startFrame := max(int64(math.Round(startAt*float64(s.encodingInfo.SampleRate))), s.renderedFrames)

	s.nextHandle++
	s.voices = append(s.voices, &voice{
		handle:     s.nextHandle,
		startFrame: startFrame,
		samples:    buffer.Samples,
		onEnded:    onEnded,
	})
	sort.SliceStable(s.voices, func(i, j int) bool { return s.voices[i].startFrame < s.voices[j].startFrame })

	return s.nextHandle, nil
}

func (s *playbackSink) Stop(handle audio.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ending, handle)
	for i, v := range s.voices {
		if v.handle == handle {
			s.voices = append(s.voices[:i], s.voices[i+1:]...)
			return
		}
	}
}

func (s *playbackSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.voices = nil
	clear(s.ending)
	device := s.device
	s.device = nil
	s.mu.Unlock()

	if device != nil {
		if err := device.Stop(); err != nil {
			device.Uninit()
			return fmt.Errorf("failed to stop playback device: %w", err)
		}
		device.Uninit()
	}
	return nil
}

func (s *playbackSink) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame
		if len(pOutput) < need {
			return
		}

		s.mu.Lock()
		from := s.renderedFrames
		to := from + int64(frameCount)
		mix := make([]float32, frameCount)
		var ended []*voice
		remaining := s.voices[:0]
		for _, v := range s.voices {
			if v.startFrame < to {
				lo := max(v.startFrame, from)
				hi := min(v.endFrame(), to)
				for f := lo; f < hi; f++ {
					mix[f-from] += v.samples[f-v.startFrame]
				}
			}
			if v.endFrame() <= to {
				ended = append(ended, v)
				s.ending[v.handle] = v
				continue
			}
			remaining = append(remaining, v)
		}
		s.voices = remaining
		s.renderedFrames = to
		s.mu.Unlock()

		for i, sample := range mix {
			sample = max(-1, min(1, sample))
			binary.LittleEndian.PutUint16(pOutput[i*2:], uint16(int16(sample*0x7FFF)))
		}

		if len(ended) > 0 {
			go func() {
				for _, v := range ended {
					s.mu.Lock()
					_, pending := s.ending[v.handle]
					delete(s.ending, v.handle)
					s.mu.Unlock()
					if pending && v.onEnded != nil {
						v.onEnded(v.handle)
					}
				}
			}()
		}
	}
}
