package orchestration

import (
	"github.com/google/uuid"

	"github.com/koscakluka/equiptalk-voice/core/events"
)

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts controllerCallbacks) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.SessionStateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(parseState(typedEvent.To))
			}
		case events.SessionFailed:
			if opts.onError != nil {
				opts.onError(&SessionError{Message: typedEvent.Message, Err: typedEvent.Err})
			}
		case events.LiveTranscriptUpdated:
			if opts.onLiveTranscript != nil {
				opts.onLiveTranscript(typedEvent.Transcript)
			}
		case events.TurnFinal:
			if opts.onTurn != nil {
				id, _ := uuid.Parse(typedEvent.TurnID)
				opts.onTurn(Turn{
					ID:        id,
					Speaker:   Speaker(typedEvent.Speaker),
					Text:      typedEvent.Text,
					CreatedAt: typedEvent.Timestamp(),
				})
			}
		case events.AssistantSpeechStarted:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(true)
			}
		case events.AssistantSpeechEnded:
			if opts.onSpeakingStateChanged != nil {
				opts.onSpeakingStateChanged(false)
			}
		}

		if opts.onEvent != nil {
			opts.onEvent(event)
		}
	}
}
