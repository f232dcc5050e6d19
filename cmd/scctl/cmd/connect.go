package cmd

import (
	"context"
	"time"

	"github.com/dspctl/scosc/config"
	"github.com/dspctl/scosc/engine"
)

// connect builds and connects a Server against the engine named by the
// root --host/--port/--timeout flags. Callers are responsible for calling
// Close on the returned Server.
func connect() (*engine.Server, error) {
	cfg := config.Config{
		StaticConfig: config.StaticConfig{
			EngineHost: rootHostFlag,
			EnginePort: rootPortFlag,
		},
		DynamicConfig: config.Default(),
	}
	cfg.DefaultTimeoutSeconds = rootTimeoutFlag

	srv, err := engine.New(cfg)
	if err != nil {
		return nil, err
	}
	srv.Start(context.Background())

	if err := srv.Connect(cfg.DefaultTimeout()); err != nil {
		_ = srv.Close()
		return nil, err
	}
	return srv, nil
}

func timeout() time.Duration {
	return time.Duration(rootTimeoutFlag * float64(time.Second))
}
