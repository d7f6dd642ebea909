// Package config loads and validates container application configuration.
//
// Values come from Viper, layered lowest first: container defaults,
// WithDefaults values, config.yml, then environment variables (a .env file
// found next to the config is loaded into the environment first).
//
// # Usage
//
//	var cfg config.Config
//	if err := config.Load("order-api", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Environment variables map to nested keys by treating underscores as
// separators, so CONTAINER_ALLOW_CIRCULAR_REFERENCES=false sets
// container.allow_circular_references.
package config
