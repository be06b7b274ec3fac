package orchestration

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/koscakluka/equiptalk-voice/core"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)
	logger = otelslog.NewLogger(scopeName)
)

type counters struct {
	framesSent      metric.Int64Counter
	framesDropped   metric.Int64Counter
	chunksScheduled metric.Int64Counter
	chunksDropped   metric.Int64Counter
	decodeFailures  metric.Int64Counter
	interruptions   metric.Int64Counter
}

// newCounters never fails; a counter that can not be created is replaced by a
// no-op one.
func newCounters() counters {
	return counters{
		framesSent:      newCounter("equiptalk.capture.frames_sent", "Captured frames sent on the live channel"),
		framesDropped:   newCounter("equiptalk.capture.frames_dropped", "Captured frames discarded before sending"),
		chunksScheduled: newCounter("equiptalk.playback.chunks_scheduled", "Audio chunks placed on the playback timeline"),
		chunksDropped:   newCounter("equiptalk.playback.chunks_dropped", "Audio chunks discarded before scheduling"),
		decodeFailures:  newCounter("equiptalk.playback.decode_failures", "Audio chunks that failed to decode"),
		interruptions:   newCounter("equiptalk.playback.interruptions", "Hard stops of live playback"),
	}
}

func newCounter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		logger.Warn("failed to create counter", "name", name, "error", err)
		return noop.Int64Counter{}
	}
	return counter
}
