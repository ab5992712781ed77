// Copyright © 2018 The ELPS authors

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/luthersystems/nlint/repl"
	"github.com/spf13/cobra"
)

// ShellCommand creates the "shell" cobra command.
func ShellCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	return &cobra.Command{
		Use:     "shell",
		Aliases: []string{"repl"},
		Short:   "Check NetLogo code interactively",
		Long: `Start an interactive shell that checks NetLogo code as it is typed.

Declarations (breed, globals, <breeds>-own, extensions) and procedures are
added to a document that grows through the session. Any other line is
checked as an observer command against that document and then discarded.
Problems are reported as soon as a line or procedure is complete. Tab
completes primitives and the names the document declares.

Shell commands:
  :help WORD   describe a primitive or procedure
  :show        print the document
  :check       report every problem in the document
  :load FILE   append a file to the document
  :clear       start a new document
  :quit        leave the shell (Ctrl-D also works)

Example session:
  nlint> breed [wolves wolf]
  nlint> to hunt
    ...>   ask wolves [ fd 1 eat ]
    ...> end
  error[identifier]: nothing named eat has been defined
  nlint> create-wolves 5
  ok`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			reg, err := cfg.resolveRegistry()
			if err != nil {
				return usageError("%w", err)
			}
			prompt := filepath.Base(os.Args[0]) + "> "
			cont := strings.Repeat(" ", max(0, len(prompt)-5)) + "...> "
			return repl.RunRepl(prompt, cont,
				repl.WithRegistry(reg),
				repl.WithLogger(cfg.resolveLogger()),
				repl.WithColor(colorMode()),
			)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
