// Package configfile reads and writes the workspace metadata file.
//
// metadata.json lives in the .taskgraph directory and records where the
// database is and how to reach it. It is committed alongside the data so a
// fresh clone knows its own layout; per-user preferences go in config.yaml
// instead (see internal/config).
package configfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/danalexilewis/taskgraph/internal/fault"
)

const ConfigFileName = "metadata.json"

type Config struct {
	Database string `json:"database"`

	// Backend is "embedded" or "server".
	Backend    string `json:"backend,omitempty"`
	ServerHost string `json:"server_host,omitempty"`
	ServerPort int    `json:"server_port,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Database: "taskgraph",
		Backend:  "embedded",
	}
}

func ConfigPath(dir string) string {
	return filepath.Join(dir, ConfigFileName)
}

// Load reads metadata.json from the workspace directory. A missing file
// returns (nil, nil) so callers can fall back to defaults.
func Load(dir string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fault.Wrap(fault.ConfigNotFound, err, "reading %s", ConfigFileName)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fault.Wrap(fault.ConfigParseFailed, err, "parsing %s", ConfigFileName)
	}
	return &cfg, nil
}

// Save writes metadata.json atomically via a temp file rename.
func Save(dir string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fault.Wrap(fault.ConfigParseFailed, err, "encoding %s", ConfigFileName)
	}
	data = append(data, '\n')
	tmp := ConfigPath(dir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fault.Wrap(fault.Unknown, err, "writing %s", ConfigFileName)
	}
	if err := os.Rename(tmp, ConfigPath(dir)); err != nil {
		return fault.Wrap(fault.Unknown, err, "writing %s", ConfigFileName)
	}
	return nil
}
