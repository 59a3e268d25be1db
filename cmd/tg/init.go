package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/backend/dolt"
	"github.com/danalexilewis/taskgraph/internal/config"
	"github.com/danalexilewis/taskgraph/internal/configfile"
	"github.com/danalexilewis/taskgraph/internal/debug"
)

var (
	initServer   bool
	initHost     string
	initPort     int
	initDatabase string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a taskgraph workspace in the current directory",
	Long: `Creates the .taskgraph directory, writes the workspace metadata and a
starter per-user config, creates the database, and records the schema as the
first commit. Safe to re-run: existing metadata and config are left alone.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		dir := dbPath
		if dir == "" {
			dir = filepath.Join(".", config.DirName)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		existing, err := configfile.Load(dir)
		if err != nil {
			return err
		}
		if existing == nil {
			meta := configfile.DefaultConfig()
			meta.Database = initDatabase
			if initServer {
				meta.Backend = "server"
				meta.ServerHost = initHost
				meta.ServerPort = initPort
			}
			if err := configfile.Save(dir, meta); err != nil {
				return err
			}
		}
		if err := config.WriteDefault(dir); err != nil {
			return err
		}

		dbPath = dir
		s, err := openStore()
		if err != nil {
			return err
		}
		if err := s.Commit(rootCtx, "initialize taskgraph workspace"); err != nil {
			return err
		}
		debug.PrintNormal("Initialized taskgraph workspace in %s\n", dir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initServer, "server", false, "Use a running dolt sql-server instead of the embedded engine")
	initCmd.Flags().StringVar(&initHost, "host", "127.0.0.1", "SQL server host (with --server)")
	initCmd.Flags().IntVar(&initPort, "port", dolt.DefaultSQLPort, "SQL server port (with --server)")
	initCmd.Flags().StringVar(&initDatabase, "database", "taskgraph", "Database name")
	rootCmd.AddCommand(initCmd)
}
