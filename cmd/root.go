// Copyright © 2018 The ELPS authors

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nlint",
	Short: "nlint: static analysis for NetLogo models",
	Long: `nlint checks NetLogo models and include files without running them. It
reports undeclared breeds, unknown words, wrong numbers of inputs, missing
extensions and primitives used in the wrong agent context.

Getting started:
  nlint lint model.nlogo        Check a model
  nlint lint ./...              Check every model under the current directory
  nlint lint --fix model.nlogo  Apply the suggested declarations
  nlint prims                   List the core primitives
  nlint prims create-turtles    Describe a primitive
  nlint shell                   Check NetLogo code interactively
  nlint lsp                     Serve editors over the Language Server Protocol

Configuration is read from $HOME/.nlint.yaml (or --config) and from
NLINT_* environment variables, e.g. NLINT_LOG_LEVEL=debug or
NLINT_LINT_WIDGET_GLOBALS=speed,population.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitError carries the process exit code of a command. Code 1 means
// problems were found, code 2 a bad invocation.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func usageError(format string, args ...any) error {
	return &exitError{code: 2, err: fmt.Errorf(format, args...)}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 2
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	var ee *exitError
	if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
		fmt.Fprintln(os.Stderr, "nlint:", err)
	}
	os.Exit(ExitCode(err))
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.nlint.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	rootCmd.PersistentFlags().String("log-level", "warn",
		"Log level: trace, debug, info, warn or error.")
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(LintCommand())
	rootCmd.AddCommand(LSPCommand())
	rootCmd.AddCommand(PrimsCommand())
	rootCmd.AddCommand(ShellCommand())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".nlint" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".nlint")
	}

	viper.SetEnvPrefix("NLINT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in. Stdout may carry the LSP
	// stream, so this is only logged.
	if err := viper.ReadInConfig(); err == nil {
		newLogger().WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if cfgFile != "" {
		newLogger().WithError(err).Warn("config file not read")
	}
}

// newLogger returns a stderr logger at the configured level.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logger
}
