// Package logger provides structured logging for the module system.
//
// It wraps zerolog with module-aware helpers so the container, registration
// pipeline, and lazy gate emit consistent fields (module, token, trigger).
//
//	log := logger.NewDefault("container")
//	log.WithModule("AppModule").Info("providers registered")
package logger
