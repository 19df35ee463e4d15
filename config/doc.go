// Package config loads command configuration with Viper: a config.yml
// found next to the command (or given explicitly), environment variables
// bound under every nested key spelling, and an optional .env file loaded
// with godotenv.
//
//	var cfg ListenConfig
//	err := config.LoadConfig("sselisten", &cfg, config.WithEnvPrefix("SSE"))
package config
