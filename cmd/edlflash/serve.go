package main

import (
	"context"

	"github.com/kbukum/edlflash/api"
	"github.com/kbukum/edlflash/component"
	"github.com/kbukum/edlflash/observability"
	"github.com/kbukum/edlflash/server"
	"github.com/kbukum/edlflash/sse"
)

// cmdServe runs the HTTP bridge until SIGINT/SIGTERM. Components stop in
// reverse order: server, api runs, event hub, telemetry.
func cmdServe() {
	e := setup()
	app := e.app
	cfg := app.Cfg

	stream := sse.NewComponent()
	f := e.newFlasher(sse.NewEmitter(stream.Hub()))

	srv := server.New(cfg.Server, app.Logger)
	handler := api.New(f, e.finder, stream.Hub())
	handler.Register(srv.GinEngine())
	srv.RegisterDefaultEndpoints(func(ctx context.Context) *observability.ServiceHealth {
		return observability.CheckAll(ctx, cfg.Name, cfg.Version, app.Components, f, e.finder)
	})

	for _, c := range []component.Component{
		stream,
		&component.Func{
			ComponentName: "api",
			OnStop: func(context.Context) error {
				handler.Close()
				return nil
			},
		},
		srv,
	} {
		if err := app.RegisterComponent(c); err != nil {
			fatal("%v", err)
		}
	}

	// Open event streams end when the hub stops, so the server can drain.
	app.OnStop(func(context.Context) error {
		stream.Hub().Stop()
		return nil
	})

	if err := app.Run(context.Background()); err != nil {
		exit(err)
	}
}

// telemetryComponent flushes the exporters started by observability.Setup on
// shutdown.
func telemetryComponent(shutdown observability.ShutdownFunc) component.Component {
	return &component.Func{
		ComponentName: "telemetry",
		OnStop:        shutdown,
	}
}
