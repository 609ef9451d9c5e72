package main

import (
	"github.com/spf13/cobra"
)

var flagDeploySpaces []string

var deployCmd = &cobra.Command{
	Use:   "deploy --spaces <addr>...",
	Short: "Index the stream with the listed spaces pre-seeded and per-space schema projection enabled",
	Long: `deploy pre-seeds each listed address as a root space and indexes the
stream with space_queries=true: type assignments and relations are also
written to the per-space schema projection tables. Entries are not
filtered by space: every entry in the stream is indexed, whether or not
its space is listed or reachable through a listed space's subspace edges.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSink(rootCtx, true, flagDeploySpaces)
	},
}

func init() {
	deployCmd.Flags().StringSliceVar(&flagDeploySpaces, "spaces", nil, "Space addresses to index (repeatable, or comma-separated)")
	_ = deployCmd.MarkFlagRequired("spaces")
	rootCmd.AddCommand(deployCmd)
}
