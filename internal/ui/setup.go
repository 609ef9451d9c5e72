package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/entities-sink/ksink/internal/config"
)

// RunSetup prompts once, interactively, for whatever shared options
// (spec.md §6) aren't already resolvable from flags/env/config file —
// most commonly DatabaseURL, since that's the one operators are most
// likely to forget on a first run. It returns the fully-filled
// Settings, unchanged for any field already non-empty in partial.
func RunSetup(partial config.Settings) (config.Settings, error) {
	s := partial

	var fields []huh.Field
	if s.SubstreamsEndpoint == "" {
		fields = append(fields, huh.NewInput().Title("Substreams endpoint").Value(&s.SubstreamsEndpoint))
	}
	if s.Package == "" {
		fields = append(fields, huh.NewInput().Title("Substreams package path").Value(&s.Package))
	}
	if s.Module == "" {
		fields = append(fields, huh.NewInput().Title("Substreams module name").Value(&s.Module))
	}
	if s.DatabaseURL == "" {
		fields = append(fields, huh.NewInput().Title("Database URL").Value(&s.DatabaseURL))
	}
	if len(fields) == 0 {
		return s, nil
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	if err := form.Run(); err != nil {
		return config.Settings{}, fmt.Errorf("ui: setup form: %w", err)
	}
	return s, nil
}
