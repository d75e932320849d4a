package endpoints

import (
	"github.com/jackzampolin/qaflow/internal/api"
)

// All returns every endpoint served by the server.
func All() []api.Endpoint {
	return []api.Endpoint{
		&HealthEndpoint{},
		&StatusEndpoint{},
		&StartJobEndpoint{},
		&JobStatusEndpoint{},
		&ListPromptsEndpoint{},
		&SwaggerEndpoint{},
	}
}

// JobCommands returns the endpoints grouped under "api jobs".
func JobCommands() []api.Endpoint {
	return []api.Endpoint{
		&StartJobEndpoint{},
		&JobStatusEndpoint{},
	}
}

// PromptCommands returns the endpoints grouped under "api prompts".
func PromptCommands() []api.Endpoint {
	return []api.Endpoint{
		&ListPromptsEndpoint{},
	}
}
