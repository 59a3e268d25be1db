package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/danalexilewis/taskgraph/internal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import <plan.md>",
	Short: "Import or re-import a plan document",
	Long: `Parses a markdown plan file and merges it into the database. The first
import creates the plan; later imports of the same file converge existing
tasks by their stable keys, insert new ones, and never delete. The whole
batch lands as a single commit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		s, err := openStore()
		if err != nil {
			return err
		}
		res, err := importer.ImportFile(rootCtx, s, args[0], actorKind())
		if err != nil {
			return err
		}
		if jsonOutput {
			return outputJSON(res)
		}
		fmt.Printf("Imported into plan %s: %d new, %d updated, %d edge(s)\n",
			shortID(res.PlanID), res.Imported, res.Updated, res.Edges)
		for _, w := range res.Warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
