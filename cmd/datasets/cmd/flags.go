// Copyright © 2018 One Concern

package cmd

import (
	"strings"
	"time"

	"github.com/oneconcern/datasets/pkg/dlogger"
	"github.com/oneconcern/datasets/pkg/transport/binary"
	"github.com/oneconcern/datasets/pkg/transport/gateway"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

const (
	defaultRepository = "./repository"
	defaultDataset    = "iris"
)

type flagsT struct {
	root struct {
		logLevel      string
		binary        string
		binaryTimeout time.Duration
		concurrency   int
		metricsAddr   string
	}
	repo struct {
		path string
	}
	retrieve struct {
		dataset string
		gateway string
		http    bool
	}
	doc struct {
		docTarget string
		format    string
	}
	version struct {
		short bool
	}
}

var datasetsFlags = flagsT{}

func addLogLevel(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.PersistentFlags().StringVar(&datasetsFlags.root.logLevel, loglevel, dlogger.LogLevelInfo,
		"The logging level. Levels by increasing order of verbosity: none, error, warn, info, debug")
	return loglevel
}

func addBinaryFlag(cmd *cobra.Command) string {
	c := "binary"
	cmd.PersistentFlags().StringVar(&datasetsFlags.root.binary, c, binary.DefaultName,
		"The name of, or the path to, the IPFS binary")
	return c
}

func addBinaryTimeoutFlag(cmd *cobra.Command) string {
	c := "binary-timeout"
	cmd.PersistentFlags().DurationVar(&datasetsFlags.root.binaryTimeout, c, binary.DefaultTimeout,
		"The maximum duration of each call to the IPFS binary. A negative value disables the timeout")
	return c
}

func addConcurrencyFlag(cmd *cobra.Command) string {
	c := "concurrency"
	cmd.PersistentFlags().IntVar(&datasetsFlags.root.concurrency, c, 1,
		"The number of datasets published, or files retrieved, at the same time")
	return c
}

func addMetricsAddrFlag(cmd *cobra.Command) string {
	c := "metrics-addr"
	cmd.PersistentFlags().StringVar(&datasetsFlags.root.metricsAddr, c, "",
		"Serve prometheus metrics on this address (e.g. :9090) while the command runs")
	return c
}

func addRepositoryFlag(cmd *cobra.Command) string {
	c := "repository"
	cmd.Flags().StringVar(&datasetsFlags.repo.path, c, defaultRepository, "The path to the repository of datasets")
	return c
}

func addDatasetFlag(cmd *cobra.Command) string {
	c := "dataset"
	cmd.Flags().StringVar(&datasetsFlags.retrieve.dataset, c, defaultDataset, "The name of the dataset to retrieve")
	return c
}

func addGatewayFlag(cmd *cobra.Command) string {
	c := "gateway"
	cmd.Flags().StringVar(&datasetsFlags.retrieve.gateway, c, gateway.DefaultURL, "The base URL of the IPFS HTTP gateway")
	return c
}

func addHTTPFlag(cmd *cobra.Command) string {
	c := "http"
	cmd.Flags().BoolVar(&datasetsFlags.retrieve.http, c, false,
		"Fetch files from the HTTP gateway, even when the IPFS binary is available")
	return c
}

func addTargetFlag(cmd *cobra.Command) string {
	c := "target-dir"
	cmd.Flags().StringVar(&datasetsFlags.doc.docTarget, c, ".", "The target directory where to generate the documentation")
	return c
}

func addDocFormatFlag(cmd *cobra.Command) string {
	c := "format"
	cmd.Flags().StringVar(&datasetsFlags.doc.format, c, formatMarkdown, "The format of the documentation: markdown or man")
	return c
}

func addShortFlag(cmd *cobra.Command) string {
	c := "short"
	cmd.Flags().BoolVar(&datasetsFlags.version.short, c, false, "Print the version number only")
	return c
}

// configKey maps a flag name to a configuration key, e.g. binary-timeout -> binary_timeout
func configKey(flag string) string {
	return strings.ReplaceAll(flag, "-", "_")
}

// bindFlags binds the flags of the running command to the configuration, so flags take precedence
// over the configuration file and the environment.
//
// Binding happens for the running command only: several commands declare the same flags.
func bindFlags(cmd *cobra.Command) error {
	var err error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if _, known := configDefaults[configKey(f.Name)]; !known {
			return
		}
		err = multierr.Append(err, viper.BindPFlag(configKey(f.Name), f))
	})
	return err
}
