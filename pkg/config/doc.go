// Package config loads typed configuration from the environment and,
// optionally, from a YAML file.
//
// Load parses `env` struct tags with github.com/caarlos0/env/v11 after
// reading the default .env file through github.com/joho/godotenv. Each
// config type is parsed once and cached; ResetCache and ForceReloadConfig
// exist for tests and hot reloads.
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//
// LoadFile starts from the same env/default values and applies a YAML file
// on top (gopkg.in/yaml.v3), so a file only needs the keys it changes:
//
//	# session.yaml
//	key: app.sid
//	rolling: true
//	cookie:
//	  path: /app
//
// LoadEnv reads extra .env files; later files win.
package config
