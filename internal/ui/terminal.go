// Package ui implements the optional terminal UI (spec.md §7): a
// block/gauge/task-list progress display, a one-time interactive setup
// prompt, and a static about panel. None of it is on the ingestion
// loop's critical path — every sink runs headless (structured logging
// only) unless --ui is passed.
package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ShouldUseColor reports whether output should be colorized, honoring
// the same NO_COLOR/CLICOLOR/CLICOLOR_FORCE precedence the teacher's
// terminal package tests against: NO_COLOR always wins, then
// CLICOLOR_FORCE, then CLICOLOR=0, falling back to a TTY check.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii && IsTerminal()
}

// ShouldUseEmoji reports whether progress output may use emoji glyphs.
func ShouldUseEmoji() bool {
	if os.Getenv("KSINK_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// IsTerminal reports whether stdout is attached to an interactive
// terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
