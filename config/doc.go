// Package config loads the settings of a process that runs flows.
//
// Viper reads {name}.yml or config.yml from the working directory, ./config
// or the parent directory. A .env file found alongside is loaded with
// godotenv, and TYPEDFLOW_ environment variables override file values using
// underscore-separated paths (TYPEDFLOW_ENGINE_EMPTY_FOLD=absent).
//
// # Usage
//
//	cfg, err := config.Load("etl")
//	f = f.With(flow.WithConfig(cfg.Engine))
package config
