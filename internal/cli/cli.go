// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

// Package cli implements the jsonparser command, which checks whether a file
// holds a single valid JSON object.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"
	"unicode/utf8"

	"github.com/Markkimotho/json-parser/ast"
	"github.com/Markkimotho/json-parser/internal/logging"
	"github.com/go-kit/log/level"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// Exit codes reported by Run.
const (
	ExitValid   = 0
	ExitInvalid = 1
)

// errUsage reports a wrong number of arguments.
var errUsage = errors.New("usage: jsonparser <file_path>")

// Env is the environment a command runs in.
type Env struct {
	FS     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
}

// OSEnv returns an Env using the host filesystem and the given streams.
func OSEnv(stdout, stderr io.Writer) Env {
	return Env{FS: afero.NewOsFs(), Stdout: stdout, Stderr: stderr}
}

type options struct {
	maxDepth int
	verbose  bool
}

// NewCommand returns the root command bound to env. The command reports its
// verdict on env.Stdout; its error, if any, has already been reported there.
func NewCommand(env Env) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "jsonparser <file_path>",
		Short: "Check that a file holds a valid JSON object",
		Long: `Check that a file holds a single valid JSON object.

The accepted dialect has no escape sequences in strings and no exponents in
numbers. Prints "Valid JSON" and exits 0 on success, or prints
"Invalid JSON: <reason>" and exits 1.`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return check(env, opts, args)
		},
	}
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)
	cmd.Flags().IntVar(&opts.maxDepth, "max-depth", ast.DefaultMaxDepth, "Maximum nesting depth of objects and arrays")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log diagnostics to stderr")
	return cmd
}

// Run executes the command with args, and returns the process exit code.
func Run(env Env, args []string) int {
	cmd := NewCommand(env)
	if args == nil {
		args = []string{} // cobra reads os.Args for nil
	}
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var verdict *verdictError
		if !errors.As(err, &verdict) {
			// Flag errors are reported by cobra's parser, not by check.
			fmt.Fprintf(env.Stdout, "Invalid JSON: %v\n", err)
		}
		return ExitInvalid
	}
	return ExitValid
}

// verdictError marks an error whose message has already been printed.
type verdictError struct{ err error }

func (v *verdictError) Error() string { return v.err.Error() }
func (v *verdictError) Unwrap() error { return v.err }

func check(env Env, opts options, args []string) error {
	lvl := "error"
	if opts.verbose {
		lvl = "debug"
	}
	logger, err := logging.New(env.Stderr, "logfmt", lvl)
	if err != nil {
		return err
	}
	fail := func(format string, a ...any) error {
		err := fmt.Errorf(format, a...)
		fmt.Fprintln(env.Stdout, err)
		return &verdictError{err: err}
	}

	if len(args) != 1 {
		return fail("Invalid JSON: %w", errUsage)
	}
	path := args[0]
	data, err := afero.ReadFile(env.FS, path)
	if errors.Is(err, fs.ErrNotExist) {
		return fail("File not found: %s", path)
	} else if err != nil {
		return fail("Invalid JSON: %w", err)
	} else if !utf8.Valid(data) {
		return fail("Invalid JSON: file is not valid UTF-8 text")
	}

	cfg := ast.StrictConfig()
	cfg.MaxDepth = opts.maxDepth
	start := time.Now()
	_, err = ast.Parse(string(data), cfg)
	level.Debug(logger).Log("msg", "parsed", "path", path, "bytes", len(data), "elapsed", time.Since(start))
	if err != nil {
		return fail("Invalid JSON: %w", err)
	}
	fmt.Fprintln(env.Stdout, "Valid JSON")
	return nil
}
