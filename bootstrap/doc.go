// Package bootstrap runs a command's lifecycle: validate config, initialize
// logging, start registered components in order, wait for SIGINT/SIGTERM or
// cancellation, then stop them in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil { ... }
//	_ = app.RegisterComponent(sessionComponent)
//	app.OnStop(flushOutput)
//	return app.Run(ctx)
package bootstrap
