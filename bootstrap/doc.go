// Package bootstrap runs the edlflash process lifecycle: configuration
// defaults and validation, logger initialization, component startup in
// registration order, hooks, signal handling and graceful shutdown.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.RegisterComponent(hub)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*config.AppConfig]) error {
//	    // wire business objects against started components
//	    return nil
//	})
//	err = app.Run(ctx)            // serve until SIGINT/SIGTERM
//	err = app.RunTask(ctx, step)  // or run one finite task
package bootstrap
