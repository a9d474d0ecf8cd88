// Copyright © 2018 One Concern

package cmd

import (
	"fmt"
	"log"

	"github.com/oneconcern/datasets/pkg/core"
	"github.com/oneconcern/datasets/pkg/dlogger"
	"github.com/oneconcern/datasets/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "datasets",
	Short: "datasets synchronizes a repository of datasets with IPFS",
	Long: `datasets synchronizes a local repository of datasets with IPFS.

A repository is a directory holding one subdirectory per dataset. Each dataset keeps
its files under "data", and a "metadata.toml" document listing the IPFS hash of every file.

Datasets are published with a local IPFS binary, and retrieved either with the binary or
through an HTTP gateway.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupApp(cmd)
	},
	// upstream api note:  *PostRun functions aren't called in case of a panic() in Run
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardownApp()
	},
}

// appT holds what a command needs once flags and configuration are resolved
type appT struct {
	settings *Settings
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *metrics.Sync
	server   *metricsServer
}

var app appT

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		osExit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)

	addLogLevel(rootCmd)
	addBinaryFlag(rootCmd)
	addBinaryTimeoutFlag(rootCmd)
	addConcurrencyFlag(rootCmd)
	addMetricsAddrFlag(rootCmd)
}

func setupApp(cmd *cobra.Command) error {
	if err := bindFlags(cmd); err != nil {
		return fmt.Errorf("bind flags to configuration: %w", err)
	}
	settings, err := newSettings()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logger, err := dlogger.GetConsoleLogger(settings.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to set log level: %w", err)
	}
	registry := prometheus.NewRegistry()
	m, err := metrics.NewSync(registry)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	app = appT{
		settings: settings,
		logger:   logger,
		registry: registry,
		metrics:  m,
	}
	if settings.MetricsAddr != "" {
		app.server, err = serveMetrics(settings.MetricsAddr, registry, logger)
		if err != nil {
			return fmt.Errorf("serve metrics: %w", err)
		}
	}
	return nil
}

func teardownApp() {
	if app.server != nil {
		app.server.stop()
		app.server = nil
	}
	if app.logger != nil {
		_ = app.logger.Sync()
	}
}

// newSession selects the transports of the running command
func newSession(cmd *cobra.Command) (*core.Session, error) {
	s := app.settings
	return core.NewSession(core.Config{
		Gateway:       s.Gateway,
		ForceHTTP:     s.HTTP,
		Binary:        s.Binary,
		BinaryTimeout: s.BinaryTimeout,
		BinaryOutput:  cmd.OutOrStdout(),
		Logger:        app.logger,
		Metrics:       app.metrics,
	})
}

func newSyncer(sess *core.Session) *core.Syncer {
	opts := append(sess.Options(),
		core.Logger(app.logger),
		core.Metrics(app.metrics),
		core.Concurrency(app.settings.Concurrency),
	)
	return core.New(opts...)
}
