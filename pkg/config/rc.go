package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

const RCFile = ".dlarc"

// LoadRC loads .dlarc.<stack> then .dlarc from the working directory.
// Existing environment variables take precedence.
func LoadRC(stack string) {
	if stack != "" {
		loadDotEnv(RCFile + "." + stack)
	}
	loadDotEnv(RCFile)
}

func loadDotEnv(name string) {
	if err := godotenv.Load(name); err == nil {
		slog.Debug("loaded environment", "file", name)
	}
}
