// Package config loads typed configuration from environment variables.
//
// It wraps github.com/joho/godotenv (optional .env files) and
// github.com/caarlos0/env/v11 (struct tag parsing). Every component in this
// module exposes a Config struct with `env` and `envDefault` tags; the
// composition root loads them with Load:
//
//	var cfg datastore.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// Each configuration type is parsed once per process and cached. Tests that
// mutate the environment call ResetCache between cases.
package config
