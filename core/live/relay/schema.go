package relay

import (
	"github.com/invopop/jsonschema"
	"github.com/koscakluka/equiptalk-voice/core/live"
)

// Protocol groups the two message directions for schema generation.
type Protocol struct {
	Client ClientMessage      `json:"client" jsonschema:"title=Client message,description=Sent for every captured audio frame"`
	Server live.ServerMessage `json:"server" jsonschema:"title=Server message,description=Any combination of fields may be present. The same fields are also accepted nested under serverContent"`
}

// ProtocolSchema describes the relay wire protocol as JSON schema.
func ProtocolSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&Protocol{})
	schema.Title = "equiptalk live relay protocol"
	return schema
}
