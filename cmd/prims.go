// Copyright © 2021 The ELPS authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/luthersystems/nlint/prims"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
)

// docWidth is the column primitive documentation is wrapped at.
const docWidth = 76

// PrimsCommand creates the "prims" cobra command.
func PrimsCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts...)
	var (
		extension string
		listExts  bool
	)

	cmd := &cobra.Command{
		Use:   "prims [flags] [NAME]",
		Short: "Show the primitives nlint knows",
		Long: `Show the built-in and extension primitives nlint checks models against.

Without a name, lists the primitives of the core language, or of an
extension with --extension. With a name, describes that primitive: its
inputs, what it reports, the agents that may run it and its documentation.
Extension primitives are named with their prefix, e.g. table:get.

Examples:
  nlint prims                       List core primitives
  nlint prims --extension table     List the table extension
  nlint prims ask                   Describe ask
  nlint prims table:put             Describe an extension primitive
  nlint prims -l                    List the bundled extensions`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := cfg.resolveRegistry()
			if err != nil {
				return usageError("%w", err)
			}
			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush() //nolint:errcheck // best-effort flush on exit

			switch {
			case listExts:
				for _, ext := range reg.Extensions() {
					fmt.Fprintln(out, ext) //nolint:errcheck // best-effort output
				}
				return nil
			case len(args) == 1:
				name := strings.ToLower(args[0])
				if extension != "" && !strings.Contains(name, ":") {
					name = extension + ":" + name
				}
				p, ok := reg.GetNamedPrimitive(name)
				if !ok {
					return usageError("no primitive named %s", name)
				}
				return renderPrimitive(out, p)
			}
			ext := strings.ToLower(extension)
			if ext != "" && !reg.HasExtension(ext) {
				return usageError("unknown extension %q (available: %s)", ext, strings.Join(reg.Extensions(), ", "))
			}
			return renderPrimitiveList(out, reg.Primitives(ext))
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVarP(&extension, "extension", "e", "",
		"List or look up the primitives of an extension.")
	cmd.Flags().BoolVarP(&listExts, "list-extensions", "l", false,
		"List the bundled extensions.")
	return cmd
}

// renderPrimitive writes the usage, agent context and wrapped
// documentation of p.
func renderPrimitive(w io.Writer, p *prims.Primitive) error {
	if _, err := fmt.Fprintf(w, "%s\n", prims.Describe(p)); err != nil {
		return err
	}
	if p.Doc == "" {
		return nil
	}
	doc := indent.String(wordwrap.String(p.Doc, docWidth), 4)
	_, err := fmt.Fprintf(w, "\n%s\n", doc)
	return err
}

// renderPrimitiveList writes one line per primitive with its usage.
func renderPrimitiveList(w io.Writer, ps []*prims.Primitive) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range ps {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", p.FullName(), prims.Describe(p)); err != nil {
			return err
		}
	}
	return tw.Flush()
}
