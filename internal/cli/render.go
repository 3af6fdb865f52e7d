package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/dshills/markstate/internal/engine/buffer"
	"github.com/dshills/markstate/internal/engine/cursor"
	"github.com/dshills/markstate/internal/engine/cursor/markup"
)

var errInvalidRegion = errors.New("invalid region")

type renderOptions struct {
	*rootOptions
	content  string
	regions  []string
	jsonPath string
}

func newCmdRender(root *rootOptions) *cobra.Command {
	opts := &renderOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render content and regions as annotated text",
		Long: `Render a state as annotated text. Regions are given as ANCHOR for a
caret or ANCHOR:HEAD for a selection, in byte offsets. Alternatively --json
reads a state in the form printed by "parse -o json".`,
		Example: `  markstate render --content foobar --region 3:6
  markstate render --content abc --region 1 --region 2
  markstate parse -o json 'a<$0>b' | markstate render --json -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.content, "content", "", "content without markers")
	cmd.Flags().StringArrayVarP(&opts.regions, "region", "r", nil, "region as ANCHOR or ANCHOR:HEAD (repeatable)")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "read the state from a JSON file, - for stdin")
	cmd.MarkFlagsMutuallyExclusive("json", "content")
	cmd.MarkFlagsMutuallyExclusive("json", "region")

	return cmd
}

func runRender(cmd *cobra.Command, opts *renderOptions) error {
	var (
		state markup.State
		err   error
	)
	if opts.jsonPath != "" {
		data, rerr := readFileOrStdin(cmd, opts.jsonPath)
		if rerr != nil {
			return fmt.Errorf("reading state: %w", rerr)
		}
		state, err = stateFromJSON(data)
	} else {
		state, err = stateFromFlags(opts.content, opts.regions)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), state)
	return nil
}

func stateFromFlags(content string, values []string) (markup.State, error) {
	sels := make([]cursor.Selection, 0, len(values))
	for _, value := range values {
		sel, err := parseRegion(value)
		if err != nil {
			return markup.State{}, err
		}
		sels = append(sels, sel)
	}
	return newCheckedState(content, sels)
}

// parseRegion parses "ANCHOR" or "ANCHOR:HEAD".
func parseRegion(value string) (cursor.Selection, error) {
	anchorText, headText, isRange := strings.Cut(value, ":")

	anchor, err := parseOffset(anchorText)
	if err != nil {
		return cursor.Selection{}, fmt.Errorf("%w %q: %v", errInvalidRegion, value, err)
	}
	if !isRange {
		return cursor.NewCursorSelection(anchor), nil
	}

	head, err := parseOffset(headText)
	if err != nil {
		return cursor.Selection{}, fmt.Errorf("%w %q: %v", errInvalidRegion, value, err)
	}
	return cursor.NewSelection(anchor, head), nil
}

func parseOffset(s string) (buffer.ByteOffset, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("offset %d is negative", n)
	}
	return n, nil
}

// stateFromJSON reads {"content": ..., "regions": [{"anchor": N, "head": N}]}.
func stateFromJSON(data []byte) (markup.State, error) {
	if !gjson.ValidBytes(data) {
		return markup.State{}, errors.New("state is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	content := doc.Get("content")
	if content.Type != gjson.String {
		return markup.State{}, errors.New("state: content must be a string")
	}

	var (
		sels []cursor.Selection
		err  error
	)
	doc.Get("regions").ForEach(func(key, region gjson.Result) bool {
		anchor := region.Get("anchor")
		if anchor.Type != gjson.Number || anchor.Int() < 0 {
			err = fmt.Errorf("%w %s: anchor must be a non-negative number", errInvalidRegion, key)
			return false
		}
		head := region.Get("head")
		if !head.Exists() {
			sels = append(sels, cursor.NewCursorSelection(anchor.Int()))
			return true
		}
		if head.Type != gjson.Number || head.Int() < 0 {
			err = fmt.Errorf("%w %s: head must be a non-negative number", errInvalidRegion, key)
			return false
		}
		sels = append(sels, cursor.NewSelection(anchor.Int(), head.Int()))
		return true
	})
	if err != nil {
		return markup.State{}, err
	}

	return newCheckedState(content.String(), sels)
}

// newCheckedState rejects regions that reach past the content.
func newCheckedState(content string, sels []cursor.Selection) (markup.State, error) {
	limit := buffer.ByteOffset(len(content))
	for _, sel := range sels {
		if sel.End() > limit {
			return markup.State{}, fmt.Errorf("%w %s: past end of content (%d bytes)", errInvalidRegion, sel, limit)
		}
	}
	return markup.NewState(content, sels...), nil
}
