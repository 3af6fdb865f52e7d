// Package cli implements the markstate command tree.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dshills/markstate/internal/config"
	"github.com/dshills/markstate/internal/engine/cursor/markup"
	"github.com/dshills/markstate/internal/logging"
)

// VersionInfo is reported by --version.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// rootOptions carries global flags and the state derived from them.
type rootOptions struct {
	configPath string
	logLevel   string
	noColor    bool
	strict     bool

	cfg    *config.Config
	logger *logging.Logger
	parser *markup.Parser
}

// NewCmdRoot creates the root command for markstate.
func NewCmdRoot(info VersionInfo) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "markstate",
		Short: "Parse, render and check cursor marker notation",
		Long: `markstate works with the cursor marker notation used in editor test
fixtures. <$N> marks a caret or the anchor of a selection and </$N> marks
the other end of the selection:

  foo<$0>bar          caret after "foo"
  foo<$0>bar</$0>     selection of "bar"

Use parse and render to convert between annotated text and offsets, and
check or watch to run fixture files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       info.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.PersistentFlags().BoolVar(&opts.strict, "strict", false, "reject end markers without a start marker")

	cmd.SetVersionTemplate("markstate version {{.Version}} (commit: " + info.Commit + ", built: " + info.Date + ")\n")

	cmd.AddCommand(newCmdParse(opts))
	cmd.AddCommand(newCmdRender(opts))
	cmd.AddCommand(newCmdCheck(opts))
	cmd.AddCommand(newCmdWatch(opts))

	return cmd
}

// setup loads configuration and applies flag overrides.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadWithEnv(o.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("no-color") {
		cfg.NoColor = o.noColor
	}
	if flags.Changed("strict") {
		cfg.Strict = o.strict
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	o.cfg = cfg
	o.logger = cfg.Logger(cmd.ErrOrStderr())

	var parserOpts []markup.ParserOption
	if cfg.Strict {
		parserOpts = append(parserOpts, markup.WithStrictEnds())
	}
	o.parser = markup.NewParser(parserOpts...)
	return nil
}

// readInput returns arg, or stdin when arg is "-".
func readInput(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

// readFileOrStdin reads path, or stdin when path is "-".
func readFileOrStdin(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
