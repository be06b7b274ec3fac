package events

const (
	// KindUserAudioFrame identifies a captured frame sent on the live channel.
	KindUserAudioFrame Kind = "user_input.audio_frame"
	// KindUserAudioFrameDropped identifies a captured frame that was not sent.
	KindUserAudioFrameDropped Kind = "user_input.audio_frame_dropped"
	// KindAssistantPlaybackScheduled identifies a chunk placed on the playback
	// timeline.
	KindAssistantPlaybackScheduled Kind = "assistant_playback.scheduled"
	// KindAssistantPlaybackDropped identifies a chunk that was not scheduled.
	KindAssistantPlaybackDropped Kind = "assistant_playback.dropped"
	// KindAssistantPlaybackInterrupted identifies playback being cut off.
	KindAssistantPlaybackInterrupted Kind = "assistant_playback.interrupted"
)

// UserAudioFrame carries the encoded frame that was sent.
type UserAudioFrame struct {
	Base
	Samples int
}

// NewUserAudioFrame creates a user audio frame event.
func NewUserAudioFrame(generation uint64, samples int) UserAudioFrame {
	return UserAudioFrame{Base: NewBase(KindUserAudioFrame, generation), Samples: samples}
}

// UserAudioFrameDropped carries the reason a captured frame was not sent.
type UserAudioFrameDropped struct {
	Base
	Reason string
}

// NewUserAudioFrameDropped creates a dropped frame event.
func NewUserAudioFrameDropped(generation uint64, reason string) UserAudioFrameDropped {
	return UserAudioFrameDropped{Base: NewBase(KindUserAudioFrameDropped, generation), Reason: reason}
}

// AssistantPlaybackScheduled carries the timeline slot a chunk was given.
type AssistantPlaybackScheduled struct {
	Base
	StartAt  float64
	Duration float64
}

// NewAssistantPlaybackScheduled creates a playback scheduled event.
func NewAssistantPlaybackScheduled(generation uint64, startAt, duration float64) AssistantPlaybackScheduled {
	return AssistantPlaybackScheduled{Base: NewBase(KindAssistantPlaybackScheduled, generation), StartAt: startAt, Duration: duration}
}

// AssistantPlaybackDropped carries the reason a chunk was not scheduled.
type AssistantPlaybackDropped struct {
	Base
	Reason string
}

// NewAssistantPlaybackDropped creates a playback dropped event.
func NewAssistantPlaybackDropped(generation uint64, reason string) AssistantPlaybackDropped {
	return AssistantPlaybackDropped{Base: NewBase(KindAssistantPlaybackDropped, generation), Reason: reason}
}

// AssistantPlaybackInterrupted marks every active source being stopped.
type AssistantPlaybackInterrupted struct {
	Base
	Stopped int
}

// NewAssistantPlaybackInterrupted creates a playback interrupted event.
func NewAssistantPlaybackInterrupted(generation uint64, stopped int) AssistantPlaybackInterrupted {
	return AssistantPlaybackInterrupted{Base: NewBase(KindAssistantPlaybackInterrupted, generation), Stopped: stopped}
}
