// Copyright © 2018 The ELPS authors

// Package repl implements an interactive NetLogo shell that reports the
// problems of each line as it is entered.
package repl

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ergochat/readline"
	"github.com/luthersystems/nlint/diagnostic"
	"github.com/luthersystems/nlint/prims"
	"github.com/sirupsen/logrus"
)

type config struct {
	stdin    io.ReadCloser
	stderr   io.WriteCloser
	registry *prims.Registry
	logger   *logrus.Logger
	color    diagnostic.ColorMode
	history  string
}

func newConfig(opts ...Option) *config {
	config := &config{history: historyPath()}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

type Option func(*config)

// WithStdin allows overriding the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStderr allows overriding the output to the REPL.
func WithStderr(stderr io.WriteCloser) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithRegistry sets the primitive registry lines are checked against.
func WithRegistry(reg *prims.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithLogger sets the logger analysis events are written to.
func WithLogger(l *logrus.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithColor controls colored diagnostics.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithHistoryFile sets where input history is kept. Empty disables it.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.history = path
	}
}

// RunRepl runs the shell until its input ends or :quit is entered.
func RunRepl(prompt, cont string, opts ...Option) error {
	cfg := newConfig(opts...)
	var out io.Writer = os.Stderr
	if cfg.stderr != nil {
		out = cfg.stderr
	}
	sh := NewShell(out, opts...)

	ensureHistoryFilePermissions(cfg.history)
	rlCfg := &readline.Config{
		Stdout:            out,
		Stderr:            out,
		Prompt:            prompt,
		HistoryFile:       cfg.history,
		HistorySearchFold: true,
		AutoComplete:      &wordCompleter{shell: sh},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close() //nolint:errcheck // best-effort cleanup

	ctx := context.Background()
	for {
		if sh.Pending() {
			rl.SetPrompt(cont)
		} else {
			rl.SetPrompt(prompt)
		}
		line, err := rl.ReadSlice()
		if err == readline.ErrInterrupt {
			sh.Cancel()
			continue
		}
		if err != nil {
			break
		}
		if sh.Eval(ctx, string(line)) {
			return nil
		}
	}
	sh.Finish(ctx)
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".nlint_history")
}

// ensureHistoryFilePermissions creates the history file readable only by
// its owner, or restricts an existing one.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600) //nolint:gosec // history path is the user's own
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0o600)
}
