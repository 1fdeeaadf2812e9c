package config

import (
	"log/slog"

	"github.com/subosito/gotenv"
)

// LoadEnv loads config/envs/.env.<env> into the process environment.
// Variables that are already set win over the file.
func LoadEnv(env string) {
	loadEnvFile("config/envs/.env." + env)
}

func loadEnvFile(envFile string) bool {
	if err := gotenv.Load(envFile); err != nil {
		slog.Warn("No .env file found, using OS environment", slog.String("file", envFile))
		return false
	}
	return true
}
