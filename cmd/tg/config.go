package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/danalexilewis/taskgraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit per-user settings",
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print resolved settings, or one key",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := workspaceDir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			if jsonOutput {
				return outputJSON(cfg)
			}
			fmt.Printf("actor: %s\njson: %t\nserver-user: %s\n", cfg.Actor, cfg.JSON, cfg.ServerUser)
			return nil
		}
		switch args[0] {
		case "actor":
			fmt.Println(cfg.Actor)
		case "json":
			fmt.Println(cfg.JSON)
		case "server-user":
			fmt.Println(cfg.ServerUser)
		default:
			return fmt.Errorf("unknown config key %q", args[0])
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a per-user setting in config.yaml",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		dir, err := workspaceDir()
		if err != nil {
			return err
		}
		cfg, err := config.Load(dir)
		if err != nil {
			return err
		}
		switch args[0] {
		case "actor":
			cfg.Actor = args[1]
		case "json":
			v, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("json must be true or false: %q", args[1])
			}
			cfg.JSON = v
		case "server-user":
			cfg.ServerUser = args[1]
		default:
			return fmt.Errorf("unknown config key %q", args[0])
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		header := []byte("# taskgraph per-user settings. TG_* environment variables override.\n")
		path := filepath.Join(dir, config.FileName)
		if err := os.WriteFile(path, append(header, data...), 0o644); err != nil {
			return err
		}
		fmt.Printf("Set %s = %s\n", args[0], args[1])
		return nil
	},
}

// workspaceDir resolves the .taskgraph directory without opening the backend.
func workspaceDir() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return config.FindDir()
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
