// Package events defines the typed voice session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - user_input.*
//   - transcript.*
//   - assistant_playback.*
//   - assistant_speech.*
//
// Semantics used across the package:
//
//   - Segment: append-only text piece emitted in stream order.
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Final: terminal immutable text for a finished turn.
//
// Every event carries the generation of the session that produced it, so a
// receiver can discard events from a session that has since been stopped.
//
// session events
//
//   - SessionStateChanged (session.state_changed): state transition, with the
//     previous and new state names.
//   - SessionFailed (session.failed): the session hit an error; carries the
//     user-facing message.
//   - SessionResetGuard (session.reset_guard): inbound processing suppressed
//     or resumed.
//
// user_input events
//
//   - UserAudioFrame (user_input.audio_frame): a captured frame was sent.
//   - UserAudioFrameDropped (user_input.audio_frame_dropped): a captured frame
//     was discarded.
//
// transcript events
//
//   - UserTranscriptSegment (transcript.user_segment): user speech delta.
//   - AssistantTranscriptSegment (transcript.assistant_segment): assistant
//     speech delta.
//   - LiveTranscriptUpdated (transcript.live_updated): live display snapshot.
//   - TurnCompleted (transcript.turn_completed): the live channel closed a
//     turn.
//   - TurnFinal (transcript.turn_final): a turn was appended to history.
//   - HistoryCleared (transcript.history_cleared): history was wiped.
//
// assistant_playback events
//
//   - AssistantPlaybackScheduled (assistant_playback.scheduled): a chunk got a
//     slot on the playback timeline.
//   - AssistantPlaybackDropped (assistant_playback.dropped): a chunk was
//     discarded before scheduling.
//   - AssistantPlaybackInterrupted (assistant_playback.interrupted): all active
//     sources were stopped and the cursor rewound.
//
// assistant_speech events
//
//   - AssistantSpeechStarted (assistant_speech.started): one-shot speech began
//     playing.
//   - AssistantSpeechEnded (assistant_speech.ended): one-shot speech ended.
//   - AssistantSpeechFailed (assistant_speech.failed): synthesis or playback
//     failed.
package events
