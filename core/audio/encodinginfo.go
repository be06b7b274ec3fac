package audio

import "fmt"

const (
	// InputSampleRate is the capture rate expected by the live channel.
	InputSampleRate = 16000
	// OutputSampleRate is the rate of synthesized speech from both the live
	// channel and the one-shot TTS call.
	OutputSampleRate = 24000
	// FrameSize is the number of samples in a single capture frame.
	FrameSize = 4096

	DefaultFormat = "linear16"
)

func GetInputEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: InputSampleRate, Format: EncodingLinear16}
}

func GetOutputEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: OutputSampleRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// MimeType returns the mime type the live channel expects for raw PCM
// payloads, e.g. "audio/pcm;rate=16000".
func (e EncodingInfo) MimeType() string {
	switch e.Format {
	case EncodingLinear16:
		return fmt.Sprintf("audio/pcm;rate=%d", e.SampleRate)
	case EncodingMulaw:
		return fmt.Sprintf("audio/basic;rate=%d", e.SampleRate)
	}
	return "application/octet-stream"
}

// BytesPerSecond reports the byte rate of mono audio in this encoding.
func (e EncodingInfo) BytesPerSecond() int {
	if e.IsZero() || e.Format.ByteSize() <= 0 {
		return 0
	}
	return e.SampleRate * e.Format.ByteSize()
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return -1
}

const (
	EncodingMulaw    encodingFormat = "mulaw"
	EncodingALaw     encodingFormat = "alaw"
	EncodingLinear16 encodingFormat = "linear16"
)
