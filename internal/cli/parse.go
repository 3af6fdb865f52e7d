package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/dshills/markstate/internal/engine/cursor/markup"
)

type parseOptions struct {
	*rootOptions
	output string
}

func newCmdParse(root *rootOptions) *cobra.Command {
	opts := &parseOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "parse TEXT",
		Short: "Parse annotated text into content and regions",
		Long: `Parse annotated text and report the stripped content and every region
with its byte offsets and line:column position. Pass - to read from stdin.`,
		Example: `  markstate parse 'foo<$0>bar</$0>'
  markstate parse -o json 'a<$0>b<$1>c'
  echo -n 'x<$0>' | markstate parse -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text, json")

	return cmd
}

func runParse(cmd *cobra.Command, opts *parseOptions, arg string) error {
	text, err := readInput(cmd, arg)
	if err != nil {
		return err
	}

	state, err := opts.parser.Parse(text)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch opts.output {
	case "json":
		doc, err := stateJSON(state)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, doc)
	case "text":
		p := newPrinter(out)
		p.keyValue("content", fmt.Sprintf("%q", state.Content))
		p.keyValue("regions", state.Selection.Count())
		for _, r := range state.Regions() {
			p.line("  %s", r)
		}
		p.keyValue("rendered", state)
	default:
		return fmt.Errorf("unknown output format %q", opts.output)
	}
	return nil
}

// stateJSON encodes a state and its region report as a JSON object.
func stateJSON(state markup.State) (string, error) {
	doc, err := sjson.Set("", "content", state.Content)
	if err != nil {
		return "", err
	}
	if doc, err = sjson.Set(doc, "rendered", state.String()); err != nil {
		return "", err
	}
	if doc, err = sjson.SetRaw(doc, "regions", "[]"); err != nil {
		return "", err
	}

	for _, r := range state.Regions() {
		region, err := sjson.Set("", "id", r.ID)
		if err != nil {
			return "", err
		}
		fields := []struct {
			key   string
			value any
		}{
			{"anchor", r.Anchor},
			{"head", r.Head},
			{"caret", r.Caret},
			{"backward", r.Backward},
			{"start.line", r.Start.Line + 1},
			{"start.column", r.Start.Column + 1},
			{"end.line", r.End.Line + 1},
			{"end.column", r.End.Column + 1},
			{"text", r.Text},
		}
		for _, f := range fields {
			if region, err = sjson.Set(region, f.key, f.value); err != nil {
				return "", err
			}
		}
		if doc, err = sjson.SetRaw(doc, "regions.-1", region); err != nil {
			return "", err
		}
	}
	return doc, nil
}
