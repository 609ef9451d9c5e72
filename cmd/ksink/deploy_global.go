package main

import (
	"github.com/spf13/cobra"
)

var flagRootSpaceAddress string

var deployGlobalCmd = &cobra.Command{
	Use:   "deploy-global --root-space-address <addr>",
	Short: "Index globally against a single root space with space-scoped queries disabled",
	Long: `deploy-global indexes the entire stream against one root space,
with space_queries=false: every entity and triple lands in the global
tables and no per-space schema projection is written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSink(rootCtx, false, []string{flagRootSpaceAddress})
	},
}

func init() {
	deployGlobalCmd.Flags().StringVar(&flagRootSpaceAddress, "root-space-address", "", "Root space address")
	_ = deployGlobalCmd.MarkFlagRequired("root-space-address")
	rootCmd.AddCommand(deployGlobalCmd)
}
