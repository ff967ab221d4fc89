// Package cli implements the yproj commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"yproj/internal/project"
)

const (
	formatJSON = "json"
	formatText = "text"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfg    *Config
	logger *slog.Logger
}

// NewRootCmd builds the command tree around cfg.
func NewRootCmd(cfg *Config) *cobra.Command {
	a := &app{cfg: cfg, logger: slog.New(slog.DiscardHandler)}

	root := &cobra.Command{
		Use:           "yproj",
		Short:         "Inspect and edit YAML project files",
		Long:          "yproj loads project files with their includes, checks them, and writes them back without touching included files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&cfg.Format, "format", "f", cfg.Format, "Output format: json or text")
	flags.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Reject field values of the wrong kind ($"+EnvStrict+")")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error ($"+EnvLogLevel+")")
	flags.StringVar(&cfg.TagPrefix, "tag-prefix", cfg.TagPrefix, "Record tag prefix ($"+EnvTagPrefix+")")

	root.AddCommand(
		newCheckCmd(a),
		newExportCmd(a),
		newHistoryCmd(a),
		newSpecCmd(a),
		newStructsCmd(a),
		newSetCmd(a),
	)

	return root
}

// Execute runs the CLI with the process arguments and environment.
func Execute() int {
	cfg, err := LoadConfig()
	if err != nil {
		exitErr("config", err)
		return 1
	}

	if err := NewRootCmd(cfg).Execute(); err != nil {
		exitErr("yproj", err)
		return 1
	}

	return 0
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}

func (a *app) setup(stderr io.Writer) error {
	switch a.cfg.Format {
	case formatJSON, formatText:
	default:
		return fmt.Errorf("unknown format %q, want json or text", a.cfg.Format)
	}

	level, err := parseLevel(a.cfg.LogLevel)
	if err != nil {
		return err
	}

	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	return nil
}

// file returns the project file named by args, or the configured default.
func (a *app) file(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}

	return a.cfg.File
}

func (a *app) loaderOptions() []project.Option {
	opts := []project.Option{project.WithLogger(a.logger)}

	if a.cfg.Strict {
		opts = append(opts, project.WithStrictKinds())
	}

	if a.cfg.TagPrefix != "" {
		opts = append(opts, project.WithTagPrefix(a.cfg.TagPrefix))
	}

	return opts
}

func (a *app) load(path string) (*project.Project, error) {
	p, err := project.LoadFile(path, a.loaderOptions()...)
	if err != nil {
		return nil, err
	}

	a.logger.Info("project loaded", "file", p.Path(), "load", p.History().ID(), "entries", p.History().Len())

	return p, nil
}

func (a *app) json() bool {
	return a.cfg.Format == formatJSON
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}
