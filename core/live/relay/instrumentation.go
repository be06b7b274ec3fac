package relay

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/equiptalk-voice/core/live/relay"

var logger = otelslog.NewLogger(scopeName)
