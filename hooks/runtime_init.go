package hooks

import (
	"github.com/upb/gateway-policy-hooks/gateway"
	"github.com/upb/gateway-policy-hooks/logging"
)

// NewRuntimeInit returns the startup hook that registers the Loki log sink
func NewRuntimeInit(cfg logging.LokiConfig) gateway.RuntimeInitFunc {
	return func(rt gateway.RuntimeExtensions) error {
		plugin, err := logging.NewLokiPlugin(cfg)
		if err != nil {
			return err
		}
		return rt.AddPlugin(plugin)
	}
}
