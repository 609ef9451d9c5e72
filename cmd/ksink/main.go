// Command ksink runs the knowledge-graph indexer sink: it consumes a
// block-scoped entry stream, resolves and lowers each entry's actions,
// plans and executes them against a relational store, and checkpoints
// progress so the stream is resumable.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
