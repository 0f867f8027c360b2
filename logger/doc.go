// Package logger provides structured logging for typedflow using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. Flow runs attach their run id and flow name
// through the context, so every line written while a run is active can be
// correlated.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("flow")
//	log.Debug("run finished", logger.Fields(logger.FieldItems, 42))
package logger
