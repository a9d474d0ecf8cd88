// Copyright © 2018 One Concern

// Command iris retrieves the iris dataset from the repository installed next to the program,
// through the public HTTP gateway.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/oneconcern/datasets/pkg/core"
	"github.com/oneconcern/datasets/pkg/dlogger"
	"github.com/oneconcern/datasets/pkg/metrics"
	"go.uber.org/zap"
)

const (
	repository = "repository"
	dataset    = "iris"
)

// repositoryPath locates the repository in the directory of the program.
// It falls back to the working directory when the program cannot be located.
func repositoryPath(executable func() (string, error)) string {
	exe, err := executable()
	if err != nil {
		return repository
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), repository)
}

func main() {
	os.Exit(run())
}

func run() int {
	logger := dlogger.MustGetLogger(dlogger.LogLevelInfo)
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	sess, err := core.NewSession(core.Config{ForceHTTP: true, Logger: logger})
	if err != nil {
		logger.Error("select transport", zap.Error(err))
		return 1
	}

	syncer := core.New(append(sess.Options(), core.Logger(logger))...)
	root := repositoryPath(os.Executable)
	report, err := syncer.Retrieve(ctx, root, dataset)
	if err != nil {
		logger.Error("retrieve failed", zap.String("repository", root), zap.String("dataset", dataset), zap.Error(err))
		return 1
	}

	fmt.Printf("retrieved %d/%d files (%s) of dataset %s\n",
		report.Retrieved(), len(report.Files), metrics.HumanSize(report.Bytes()), dataset)
	if report.Err() != nil {
		for _, f := range report.Failed {
			fmt.Fprintf(os.Stderr, "failed: %s: %v\n", f.Path, f.Err)
		}
		return 2
	}
	return 0
}
