// Package config loads service configuration.
//
// It uses Viper to read a YAML file and environment variables, and godotenv to
// load a .env file into the environment before binding. Nested keys map to
// upper-case underscore variables (logging.level -> LOGGING_LEVEL); keys with
// conventional names are bound explicitly with WithEnvBinding.
//
// # Usage
//
//	var cfg AppConfig
//	err := config.LoadConfig("mediagen", &cfg,
//	    config.WithEnvBinding("credentials.openai", "OPENAI_API_KEY"))
package config
