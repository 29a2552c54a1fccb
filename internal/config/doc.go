// Package config provides environment configuration for the herald CLI.
//
// Configuration is loaded from environment variables using the env package.
// All values have defaults suitable for local runs.
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	d := herald.New(herald.WithPolicy(cfg.Policy()))
package config
