// Copyright © 2018 One Concern

// Package executor runs external programs, capturing their output or streaming it
// line by line, with an optional timeout on each invocation.
package executor

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const waitDelay = 5 * time.Second

// Result holds the output and exit status of a program execution
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner knows how to execute a program
type Runner interface {
	Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error)
}

// Options configures a program execution
type Options struct {
	// Timeout bounds the execution. Zero disables the timeout.
	Timeout time.Duration

	// LineWriter receives stdout line by line as it is produced, instead of capturing it.
	LineWriter io.Writer

	// WorkingDir sets the working directory of the program
	WorkingDir string

	// Env holds extra environment variables, appended to the current environment
	Env map[string]string
}

// Option is a function that modifies Options
type Option func(*Options)

// WithTimeout bounds the duration of an execution
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithLineStream streams stdout to w, one line at a time, as it is produced
func WithLineStream(w io.Writer) Option {
	return func(o *Options) {
		o.LineWriter = w
	}
}

// WithWorkingDir sets the working directory
func WithWorkingDir(dir string) Option {
	return func(o *Options) {
		o.WorkingDir = dir
	}
}

// WithEnvVar adds a single environment variable
func WithEnvVar(key, value string) Option {
	return func(o *Options) {
		if o.Env == nil {
			o.Env = make(map[string]string)
		}
		o.Env[key] = value
	}
}

// ExitError is returned when a program ran but exited with a non-zero status
type ExitError struct {
	Program  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Program, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// LookPath is a "which" equivalent: it locates an executable in the directories named by PATH.
func LookPath(program string) (string, error) {
	return exec.LookPath(program)
}

// Exec runs programs with os/exec
type Exec struct{}

// New program runner
func New() *Exec {
	return &Exec{}
}

// Run a program to completion.
//
// A non-zero exit status is reported as an *ExitError, along with the result.
func (Exec) Run(ctx context.Context, program string, args []string, opts ...Option) (*Result, error) {
	var options Options
	for _, apply := range opts {
		apply(&options)
	}

	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, program, args...)
	// children inheriting the output pipes must not hold Wait forever once the program is killed
	cmd.WaitDelay = waitDelay
	if options.WorkingDir != "" {
		cmd.Dir = options.WorkingDir
	}
	if len(options.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range options.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	var err error
	if options.LineWriter != nil {
		err = runStreamed(cmd, options.LineWriter)
	} else {
		cmd.Stdout = &stdout
		err = cmd.Run()
	}

	result := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}
	if err == nil {
		return result, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = -1
		return result, fmt.Errorf("%s interrupted after %v: %w", program, result.Duration, ctxErr)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{Program: program, ExitCode: result.ExitCode, Stderr: result.Stderr}
	}
	result.ExitCode = -1
	return result, fmt.Errorf("execute %s: %w", program, err)
}

func runStreamed(cmd *exec.Cmd, w io.Writer) error {
	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err = cmd.Start(); err != nil {
		return err
	}

	var (
		wg      sync.WaitGroup
		copyErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		copyErr = copyLines(w, pipe)
	}()

	// all reads from the pipe must complete before Wait
	wg.Wait()
	waitErr := cmd.Wait()
	if waitErr != nil {
		return waitErr
	}
	return copyErr
}

func copyLines(w io.Writer, r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				// keep draining so that the program does not block on a full pipe
				_, _ = io.Copy(io.Discard, reader)
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
