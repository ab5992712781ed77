// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"

	"github.com/luthersystems/nlint/lint"
	"github.com/luthersystems/nlint/lsp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the NetLogo Language Server Protocol server",
		Long: `Start an LSP server for NetLogo models and include files.

The language server provides diagnostics as you type, hover documentation
for primitives and procedures, go-to-definition across __includes,
completion, document symbols, folding and quick fixes that add missing
declarations.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  nlint lsp                           Start with stdio transport
  nlint lsp --stdio                   Same as above (explicit)
  nlint lsp --port 7998               Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "nlint lsp --stdio" for .nlogo and .nls files.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if stdio && port > 0 {
				return usageError("--stdio and --port are mutually exclusive")
			}
			reg, err := cfg.resolveRegistry()
			if err != nil {
				return usageError("%w", err)
			}
			analyzers, err := lint.Select(splitList(viper.GetStringSlice("lint.checks")), splitList(viper.GetStringSlice("lint.disable")))
			if err != nil {
				return usageError("%w", err)
			}
			logger := cfg.resolveLogger()
			srv := lsp.New(
				lsp.WithRegistry(reg),
				lsp.WithLogger(logger),
				lsp.WithLinter(&lint.Linter{Analyzers: analyzers, Registry: reg}),
			)

			if port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				logger.WithField("addr", addr).Info("NetLogo LSP server listening")
				if err := srv.RunTCP(addr); err != nil {
					return fmt.Errorf("lsp server: %w", err)
				}
				return nil
			}
			if err := srv.RunStdio(); err != nil {
				return fmt.Errorf("lsp server: %w", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}
