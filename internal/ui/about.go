package ui

import (
	"charm.land/glamour/v2"
)

const aboutMarkdown = `# ksink

An indexer sink for a blockchain-sourced knowledge-graph protocol.

Each finalized block carries a batch of entries; each entry resolves to
a document of graph mutations. The planner resolves cross-action
dependencies (within the batch and against already-committed state),
synthesizes minimal fallbacks for missing prerequisites, and commits the
result atomically per block.

Press **q** or **ctrl+c** to exit this view.
`

// About renders the TUI's static help/about panel as terminal-styled
// Markdown.
func About() (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(aboutMarkdown)
}
