package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/entities-sink/ksink/internal/config"
	"github.com/entities-sink/ksink/internal/telemetry"
)

var (
	rootCtx    context.Context
	rootCancel context.CancelFunc

	v   *viper.Viper
	log *slog.Logger

	telemetryProvider *telemetry.Provider

	flagSubstreamsEndpoint string
	flagSubstreamsToken    string
	flagPackage            string
	flagModule             string
	flagDatabaseURL        string
	flagMaxConnections     int
	flagUI                 bool
	flagReplaySince        string
	flagReplayFile         string
	flagOTLPEndpoint       string
)

var rootCmd = &cobra.Command{
	Use:   "ksink",
	Short: "ksink — indexer sink for a blockchain-sourced knowledge graph",
	Long: `ksink consumes a block-scoped stream of graph-mutation entries,
resolves and applies them through a dependency-aware planner, and
checkpoints progress so the stream is resumable.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		log = slog.New(slog.NewTextHandler(os.Stderr, nil))

		var err error
		v, err = config.New()
		if err != nil {
			return err
		}
		bindFlags(cmd)

		provider, err := telemetry.Init(rootCtx, telemetry.Config{
			ServiceName:  "ksink",
			OTLPEndpoint: flagOTLPEndpoint,
		})
		if err != nil {
			return err
		}
		telemetryProvider = provider
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		defer rootCancel()
		if telemetryProvider != nil {
			return telemetryProvider.Shutdown(context.Background())
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagSubstreamsEndpoint, "substreams-endpoint", "", "Substreams gRPC endpoint")
	flags.StringVar(&flagSubstreamsToken, "substreams-api-token", "", "Substreams API token")
	flags.StringVar(&flagPackage, "package", "", "Substreams package path (.spkg)")
	flags.StringVar(&flagModule, "module", "", "Substreams module name to consume")
	flags.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection URL")
	flags.IntVar(&flagMaxConnections, "max-connections", 0, "Maximum store connections")
	flags.BoolVar(&flagUI, "ui", false, "Show the terminal progress UI")
	flags.StringVar(&flagReplaySince, "replay-since", "", "Parse a natural-language time (e.g. \"2 hours ago\") and log it at startup; the cursor is not rewound")
	flags.StringVar(&flagReplayFile, "replay-file", "", "Replay a captured newline-JSON event file instead of dialing a live Substreams endpoint")
	flags.StringVar(&flagOTLPEndpoint, "otlp-endpoint", "", "OTLP metrics endpoint (stdout exporter used if empty)")
}

// bindFlags overrides viper's env/file/default values with any flag the
// operator actually set, preserving the documented flag > env > config
// file > default precedence (mirrors the teacher's own flag/viper
// reconciliation in cmd/bd/main.go's PersistentPreRun).
func bindFlags(cmd *cobra.Command) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		v.Set(f.Name, f.Value.String())
	})
}
