// Package bootstrap orchestrates the module system's startup: it processes
// top-level module descriptors in declaration order, routes lazy modules to
// the activation gate, and hands resolved IPC handlers to the bus.
//
//	app := bootstrap.NewApp()
//	if err := app.Bootstrap(ctx, appModule, settingsModule, analyticsModule); err != nil {
//	    log.Fatal(err)
//	}
package bootstrap
