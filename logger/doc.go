// Package logger wraps zerolog with the structured-field conventions used
// across the container: every creation, destruction and lifecycle phase is
// logged with the managed name, scope and generation it belongs to.
//
//	logger.Info("Generation active", logger.Fields(logger.FieldGeneration, id))
//
// A process-wide logger is available through the package-level functions;
// components derive tagged loggers with WithComponent.
package logger
