package gemini

import (
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const scopeName = "github.com/koscakluka/equiptalk-voice/core/live/gemini"

var logger = otelslog.NewLogger(scopeName)
