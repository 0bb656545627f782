package cmd

import (
	"fmt"
	"io"

	"bennypowers.dev/a11yaudit/internal/audit"
	"bennypowers.dev/a11yaudit/internal/checks"
	"bennypowers.dev/a11yaudit/internal/parser"
	"bennypowers.dev/a11yaudit/internal/remediate"
	"github.com/spf13/cobra"
)

type applyCommand struct {
	g          *globalFlags
	outputPath string
	showLog    bool
}

// NewApplyCommand creates the apply subcommand
func NewApplyCommand(g *globalFlags) *cobra.Command {
	ac := &applyCommand{g: g}
	cmd := &cobra.Command{
		Use:   "apply <patches.json> <document.html>",
		Short: "Apply suggested patches to a document",
		Long: `Apply a JSON or JSONC list of suggested patches to one document:

  [
    {"type": "reorder", "elements": ["a#one", "a#two"], "new_order": [1, 0]},
    {"type": "add_tabindex", "elements": ["div.card"], "value": "0"},
    {"type": "remove_tabindex", "elements": ["#promo"]}
  ]

Patches whose elements cannot be found are skipped and logged.
The patched document is written to --output, or to stdout.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ac.run(args[0], args[1], cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVarP(&ac.outputPath, "output", "o", "", "write the patched document here instead of stdout")
	cmd.Flags().BoolVar(&ac.showLog, "log", true, "print the change log to stderr")
	return cmd
}

func (ac *applyCommand) run(patchesPath, docPath string, out, errOut io.Writer) error {
	patches, err := remediate.LoadPatches(patchesPath)
	if err != nil {
		return err
	}
	doc, err := parser.ParseFile(docPath)
	if err != nil {
		return err
	}

	opts := audit.DefaultOptions()
	opts.Checks = []checks.Check{}
	opts.Patches = patches
	res := audit.Document(doc, opts)

	if ac.outputPath != "" {
		if err := writeDocument(ac.outputPath, res.HTML()); err != nil {
			return err
		}
	} else {
		fmt.Fprint(out, res.HTML())
	}
	if ac.showLog {
		p := newPalette(colorEnabled(errOut, ac.g.noColor))
		for _, c := range res.Changes {
			writeChange(errOut, p, c)
		}
		fmt.Fprintf(errOut, "%d of %d patch(es) applied\n", remediate.Applied(res.Changes), len(patches))
	}
	return nil
}
