package audio

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedAudio is returned when an encoded payload can not be turned into
// playable samples.
var ErrMalformedAudio = errors.New("malformed audio payload")

// Buffer is a block of decoded mono samples in the range [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the buffer length in seconds.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Float32ToPCM16 converts float samples to 16-bit little-endian PCM. Samples
// outside [-1, 1] are clamped.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		s := max(-1, min(1, sample))
		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7FFF)
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// PCM16ToFloat32 converts 16-bit little-endian PCM to float samples.
func PCM16ToFloat32(pcm []byte) ([]float32, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("%w: odd pcm16 length %d", ErrMalformedAudio, len(pcm))
	}

	out := make([]float32, len(pcm)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(pcm[i*2:]))) / 32768.0
	}
	return out, nil
}

// EncodeFrame turns a captured float frame into base64 PCM16 text.
func EncodeFrame(frame []float32) string {
	return base64.StdEncoding.EncodeToString(Float32ToPCM16(frame))
}

// DecodeBase64 decodes a base64 PCM payload into raw bytes.
func DecodeBase64(payload string) ([]byte, error) {
	pcm, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedAudio, err)
	}
	return pcm, nil
}

// DecodePCM16 decodes raw PCM16 mono bytes into a playable buffer at the given
// sample rate. Empty payloads are rejected so they never occupy a slot on the
// playback timeline.
func DecodePCM16(pcm []byte, sampleRate int) (Buffer, error) {
	if len(pcm) == 0 {
		return Buffer{}, fmt.Errorf("%w: empty payload", ErrMalformedAudio)
	}
	samples, err := PCM16ToFloat32(pcm)
	if err != nil {
		return Buffer{}, err
	}
	return Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Samples returns how many samples fit into the given number of seconds.
func Samples(seconds float64, sampleRate int) int {
	return int(math.Round(seconds * float64(sampleRate)))
}
