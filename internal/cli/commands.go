package cli

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"yproj/internal/interop"
	"yproj/internal/pkgspec"
	"yproj/internal/project"
	"yproj/internal/sbuilder"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [FILE]",
		Short: "Validate a project file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.load(a.file(args))
			if err != nil {
				return err
			}

			d := project.Validate(p)
			out := cmd.OutOrStdout()

			if a.json() {
				if err := printJSON(out, d); err != nil {
					return err
				}
			} else {
				for _, diag := range d.All() {
					fmt.Fprintf(out, "%s: %s\n", diag.Severity, diag)
				}

				if d.IsValid() {
					fmt.Fprintln(out, "ok")
				}
			}

			if !d.IsValid() {
				return fmt.Errorf("%s: %d error(s)", p.Path(), len(d.Errors))
			}

			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		output string
		tag    string
	)

	cmd := &cobra.Command{
		Use:   "export [FILE]",
		Short: "Re-serialize the top-level project file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.load(a.file(args))
			if err != nil {
				return err
			}

			var opts []project.EncodeOption
			if tag != "" {
				opts = append(opts, project.WithRootTag(tag))
			}

			if output != "" {
				return project.WriteFile(p, output, opts...)
			}

			data, err := project.Marshal(p, opts...)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().StringVar(&tag, "tag", "", "Tag the document root, e.g. !project")

	return cmd
}

func newHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history [FILE]",
		Short: "Show where every value of a project came from",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.load(a.file(args))
			if err != nil {
				return err
			}

			h := p.History()
			out := cmd.OutOrStdout()

			if a.json() {
				return printJSON(out, map[string]any{
					"id":      h.ID(),
					"top":     h.Top(),
					"entries": h.Entries(),
				})
			}

			fmt.Fprintf(out, "load %s of %s\n", h.ID(), h.Top())

			for _, e := range h.Entries() {
				fmt.Fprintf(out, "  %s\n", e)
			}

			return nil
		},
	}
}

func newSpecCmd(a *app) *cobra.Command {
	var gem string

	cmd := &cobra.Command{
		Use:   "spec [FILE]",
		Short: "Print the package spec derived from a project",
		Long: "Print the package spec derived from a project. With --gem, fields under " +
			"gems.<NAME> override the project fields of the same name.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.load(a.file(args))
			if err != nil {
				return err
			}

			var s *pkgspec.Spec
			if gem != "" {
				s, err = pkgspec.ForGem(p, gem)
			} else {
				s, err = pkgspec.FromProject(p)
			}

			if err != nil {
				return err
			}

			if a.json() {
				return printJSON(cmd.OutOrStdout(), s)
			}

			data, err := yaml.Marshal(s)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVar(&gem, "gem", "", "build the spec of one gem from the gems mapping")

	return cmd
}

func newStructsCmd(a *app) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "structs [FILE]",
		Short: "List the record types tagged in a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.file(args)

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			var opts []sbuilder.Option
			if a.cfg.TagPrefix != "" {
				opts = append(opts, sbuilder.WithTagPrefix(a.cfg.TagPrefix))
			}

			res, err := sbuilder.Parse(data, opts...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if dump {
				spew.Fdump(out, res.Documents)
				return nil
			}

			if a.json() {
				type structJSON struct {
					Type      string   `json:"type"`
					Anonymous bool     `json:"anonymous,omitempty"`
					Fields    []string `json:"fields"`
					Finalized bool     `json:"finalized"`
				}

				list := make([]structJSON, 0, len(res.Structs))
				for _, d := range res.Structs {
					list = append(list, structJSON{
						Type:      d.Label(),
						Anonymous: d.Anonymous(),
						Fields:    d.Fields(),
						Finalized: d.Finalized(),
					})
				}

				return printJSON(out, list)
			}

			for _, d := range res.Structs {
				fmt.Fprintln(out, d)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "Dump the rebuilt documents instead")

	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "set [FILE] FIELD VALUE",
		Short: "Set a field and save the top-level file",
		Long: "Set a field and save the top-level file. VALUE is parsed as YAML, so lists " +
			"and mappings can be given inline. Keys that are not schema fields are stored as extras. " +
			"A number given for a scalar schema field keeps its text, so 1.10 stays \"1.10\". " +
			"--string stores VALUE as text for any key.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 {
				args = append([]string{""}, args...)
			}

			p, err := a.load(a.file(args[:1]))
			if err != nil {
				return err
			}

			field := args[1]

			value, err := parseValue(p, field, args[2], raw)
			if err != nil {
				return err
			}

			if p.Schema().Has(field) {
				if err := p.Set(field, value); err != nil {
					return err
				}
			} else {
				p.SetExtra(field, value)
			}

			if err := project.Save(p); err != nil {
				return err
			}

			a.logger.Info("project saved", "file", p.Path(), "field", field)

			return nil
		},
	}

	cmd.Flags().BoolVar(&raw, "string", false, "store VALUE as text without parsing it")

	return cmd
}

// parseValue decodes a command line value. Numbers given for scalar schema
// fields keep their text.
func parseValue(p *project.Project, field, text string, raw bool) (any, error) {
	if raw {
		return text, nil
	}

	var value any
	if err := yaml.Unmarshal([]byte(text), &value); err != nil {
		return nil, fmt.Errorf("parse value for %s: %w", field, err)
	}

	desc, ok := p.Schema().Lookup(field)
	if !ok || desc.Kind != interop.KindScalar {
		return value, nil
	}

	switch value.(type) {
	case int, int64, uint64, float64:
		return text, nil
	default:
		return value, nil
	}
}
