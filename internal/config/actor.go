package config

import (
	"os"
	"os/exec"
	"strings"
)

// ResolveActor returns the audit-trail actor name.
// Priority: --actor flag > TG_ACTOR env > config.yaml actor > git config
// user.name > $USER > "unknown".
func ResolveActor(flagValue string, cfg *Config) string {
	if flagValue != "" {
		return flagValue
	}
	if envActor := os.Getenv("TG_ACTOR"); envActor != "" {
		return envActor
	}
	if cfg != nil && cfg.Actor != "" {
		return cfg.Actor
	}
	if out, err := exec.Command("git", "config", "user.name").Output(); err == nil {
		if gitUser := strings.TrimSpace(string(out)); gitUser != "" {
			return gitUser
		}
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}
