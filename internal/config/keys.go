// Package config wires the CLI's flag/env/config-file surface
// together using viper and cobra, the same stack the teacher uses for
// its own command configuration. Key describes one bindable setting
// (spec.md §6's shared options); Keys is the closed, enumerable table
// that env binding, defaults and validation walk. cmd/ksink registers
// its flags separately in root.go.
package config

import (
	"fmt"
	"strconv"
)

// Key describes a single configuration setting: its viper key, the
// exact environment variable name spec.md §6 specifies, a default and
// an optional validator. Grounded directly on the teacher's
// DeployKey{Key, EnvVar, Default, Validate} shape.
type Key struct {
	Name     string // viper/flag key, e.g. "database-url"
	EnvVar   string // exact env var name from spec.md §6
	Default  string
	Validate func(string) error
}

// Keys is the full, closed set of shared options spec.md §6 names:
// substreams endpoint, package path, module name, database URL,
// substreams API token, max connections, UI toggle.
var Keys = []Key{
	{Name: "substreams-endpoint", EnvVar: "SUBSTREAMS_ENDPOINT"},
	{Name: "substreams-api-token", EnvVar: "SUBSTREAMS_API_TOKEN"},
	{Name: "package", EnvVar: "SUBSTREAMS_PACKAGE"},
	{Name: "module", EnvVar: "SUBSTREAMS_MODULE"},
	{Name: "database-url", EnvVar: "DATABASE_URL"},
	{Name: "postgres-host", EnvVar: "POSTGRES_HOST", Default: "localhost"},
	{Name: "postgres-port", EnvVar: "POSTGRES_PORT", Default: "5432", Validate: validatePort},
	{Name: "postgres-user", EnvVar: "POSTGRES_USER"},
	{Name: "postgres-password", EnvVar: "POSTGRES_PASSWORD"},
	{Name: "postgres-database", EnvVar: "POSTGRES_DB"},
	{Name: "max-connections", EnvVar: "POSTGRES_MAX_CONNECTIONS", Default: "10", Validate: validatePositiveInt},
	{Name: "ui", EnvVar: "KSINK_UI", Default: "false", Validate: validateBool},
}

func validatePort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validatePositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("must be a number, got %q", value)
	}
	if n <= 0 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

func validateBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("must be true or false, got %q", value)
	}
	return nil
}

// Validate runs every Key's Validate function (if any) against the
// already-resolved value in v. Called once after flags/env/file have
// all been merged, before the sink starts.
func Validate(get func(name string) string) error {
	for _, k := range Keys {
		if k.Validate == nil {
			continue
		}
		val := get(k.Name)
		if val == "" {
			continue
		}
		if err := k.Validate(val); err != nil {
			return fmt.Errorf("config: invalid %s: %w", k.Name, err)
		}
	}
	return nil
}
