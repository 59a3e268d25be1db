// Package config locates the .taskgraph workspace directory and loads the
// per-user config.yaml, with TG_* environment variables taking precedence.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/danalexilewis/taskgraph/internal/fault"
)

const (
	// DirName is the workspace state directory, discovered by walking up
	// from the working directory like git does with .git.
	DirName = ".taskgraph"

	FileName = "config.yaml"

	envPrefix = "TG"
)

// Config is the per-user configuration. Workspace identity (database name,
// backend mode) lives in metadata.json; these are preferences.
type Config struct {
	Actor      string `yaml:"actor" mapstructure:"actor"`
	JSON       bool   `yaml:"json" mapstructure:"json"`
	ServerUser string `yaml:"server-user" mapstructure:"server-user"`
}

// FindDir walks up from the working directory looking for DirName.
func FindDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fault.Wrap(fault.ConfigNotFound, err, "cannot determine working directory")
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fault.New(fault.ConfigNotFound, "no %s directory found (run 'tg init' first)", DirName)
}

// Load reads config.yaml from the workspace directory. A missing file yields
// the defaults; TG_ACTOR and friends override file values either way.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, FileName))
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	// Keys use dashes; env vars can't, so server-user maps to TG_SERVER_USER.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("actor", "")
	v.SetDefault("json", false)
	v.SetDefault("server-user", "root")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return defaultsFrom(v), nil
		}
		if _, missing := err.(viper.ConfigFileNotFoundError); missing {
			return defaultsFrom(v), nil
		}
		return nil, fault.Wrap(fault.ConfigParseFailed, err, "parsing %s", FileName)
	}
	return defaultsFrom(v), nil
}

func defaultsFrom(v *viper.Viper) *Config {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are all scalars; Unmarshal cannot fail on them.
		return &Config{ServerUser: "root"}
	}
	return &cfg
}

// WriteDefault writes a starter config.yaml, refusing to clobber an existing
// one.
func WriteDefault(dir string) error {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := yaml.Marshal(&Config{ServerUser: "root"})
	if err != nil {
		return fault.Wrap(fault.ConfigParseFailed, err, "encoding %s", FileName)
	}
	header := []byte("# taskgraph per-user settings. TG_* environment variables override.\n")
	if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
		return fault.Wrap(fault.Unknown, err, "writing %s", FileName)
	}
	return nil
}
