package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/schemaformula/path"
)

func newRewriteCommand(a *app) *cobra.Command {
	var rename string
	var quiet bool
	cmd := &cobra.Command{
		Use:     "rewrite <schema.json|schema.yaml> --rename <field>=<newName>",
		Short:   "Rename a field and rewrite every formula that references it",
		Example: `  schemaformula rewrite invoice.json --rename lines[*].price=unit_price`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, newName, err := parseRename(rename)
			if err != nil {
				return err
			}
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			changes, err := doc.Rename(from, newName)
			if err != nil {
				return err
			}
			if !quiet {
				note := color.New(color.FgYellow)
				for _, c := range changes {
					note.Fprintf(cmd.ErrOrStderr(), "%s: %s → %s\n", c.Path, c.Before, c.After)
				}
			}

			data, err := doc.Encode(doc.SourceFormat())
			if err != nil {
				return fmt.Errorf("failed to encode document: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
	cmd.Flags().StringVar(&rename, "rename", "", "field to rename and its new name, e.g. lines[*].price=unit_price")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not list rewritten formulas on stderr")
	_ = cmd.MarkFlagRequired("rename")
	return cmd
}

func parseRename(s string) (path.Path, string, error) {
	field, newName, ok := strings.Cut(s, "=")
	if !ok || newName == "" {
		return path.Path{}, "", fmt.Errorf("--rename must look like <field>=<newName>, got %q", s)
	}
	p, err := path.ParseSimple(field)
	if err != nil {
		return path.Path{}, "", fmt.Errorf("--rename: %w", err)
	}
	return p, newName, nil
}
