package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/backend/dolt"
	"github.com/danalexilewis/taskgraph/internal/config"
	"github.com/danalexilewis/taskgraph/internal/configfile"
	"github.com/danalexilewis/taskgraph/internal/debug"
	"github.com/danalexilewis/taskgraph/internal/store"
	"github.com/danalexilewis/taskgraph/internal/types"
)

var (
	dbPath      string
	actorFlag   string
	agentFlag   bool
	jsonOutput  bool
	verboseFlag bool
	quietFlag   bool

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc

	st      *store.Store
	userCfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tg",
	Short: "Dependency-aware plan and task tracker",
	Long: `tg tracks plans, tasks, and the blocking edges between them in a
versioned SQL store. Every state change appends an audit event and lands as
a Dolt commit, so many actors (humans and agents) can claim, block, split,
and complete work without trampling each other.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		debug.SetVerbose(verboseFlag)
		debug.SetQuiet(quietFlag)
	},
}

func main() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer rootCancel()

	err := rootCmd.Execute()
	closeStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore locates the workspace, opens the Dolt backend, and bootstraps
// the schema. Idempotent across commands in one invocation.
func openStore() (*store.Store, error) {
	if st != nil {
		return st, nil
	}
	dir := dbPath
	if dir == "" {
		found, err := config.FindDir()
		if err != nil {
			return nil, err
		}
		dir = found
	}
	var err error
	userCfg, err = config.Load(dir)
	if err != nil {
		return nil, err
	}
	if userCfg.JSON {
		jsonOutput = true
	}
	meta, err := configfile.Load(dir)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		meta = configfile.DefaultConfig()
	}
	be, err := dolt.Open(rootCtx, dolt.Config{
		Path:          filepath.Join(dir, "dolt"),
		Database:      meta.Database,
		CommitterName: config.ResolveActor(actorFlag, userCfg),
		ServerMode:    meta.Backend == "server",
		ServerHost:    meta.ServerHost,
		ServerPort:    meta.ServerPort,
		ServerUser:    userCfg.ServerUser,
	})
	if err != nil {
		return nil, err
	}
	if err := store.Bootstrap(rootCtx, be); err != nil {
		_ = be.Close()
		return nil, err
	}
	debug.Logf("opened %s backend at %s\n", meta.Backend, dir)
	st = store.New(be)
	return st, nil
}

func closeStore() {
	if st == nil {
		return
	}
	if err := st.Builder().Backend().Close(); err != nil {
		debug.Logf("close failed: %v\n", err)
	}
	st = nil
}

// actorKind is the audit-trail actor category carried on events.
func actorKind() types.Owner {
	if agentFlag {
		return types.OwnerAgent
	}
	return types.OwnerHuman
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the .taskgraph directory (default: walk up from cwd)")
	rootCmd.PersistentFlags().StringVar(&actorFlag, "actor", "", "Actor name for commits (default: TG_ACTOR, git user.name, $USER)")
	rootCmd.PersistentFlags().BoolVar(&agentFlag, "agent", false, "Record events as performed by an agent rather than a human")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output")
}
