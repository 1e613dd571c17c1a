package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/path"
)

func newPathCommand() *cobra.Command {
	var pointer bool
	cmd := &cobra.Command{
		Use:   "path <expr>",
		Short: "Render a field path in pointer, dotted and absolute form",
		Example: `  schemaformula path 'lines[*].price'
  schemaformula path --pointer /properties/lines/items/properties/price`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePath(args[0], pointer)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			label := color.New(color.FgCyan)
			label.Fprint(out, "pointer:  ")
			fmt.Fprintln(out, p.Pointer())
			label.Fprint(out, "simple:   ")
			fmt.Fprintln(out, p.Simple())
			label.Fprint(out, "absolute: ")
			fmt.Fprintln(out, formula.Absolute(p))
			label.Fprint(out, "length:   ")
			fmt.Fprintln(out, p.Len())
			return nil
		},
	}
	cmd.Flags().BoolVar(&pointer, "pointer", false, "read <expr> as a JSON Pointer")
	return cmd
}

func newRelativeCommand() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:     "relative --from <field> --to <field>",
		Short:   "Show how a formula at --from would reference --to",
		Example: `  schemaformula relative --from tax.amount --to subtotal`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fromPath, err := path.ParseSimple(from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			toPath, err := path.ParseSimple(to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			out := cmd.OutOrStdout()
			label := color.New(color.FgCyan)
			rel, ok := formula.Relative(fromPath, toPath)
			if !ok {
				return fmt.Errorf("%s is the container of %s; a formula cannot reference it", to, from)
			}
			label.Fprint(out, "relative: ")
			fmt.Fprintln(out, rel)
			label.Fprint(out, "absolute: ")
			fmt.Fprintln(out, formula.Absolute(toPath))
			if formula.IsComplexRelativePath(rel) {
				color.New(color.FgYellow).Fprintln(out, "warning: reference climbs several levels; consider the absolute form")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "path of the formula field (dotted form)")
	cmd.Flags().StringVar(&to, "to", "", "path of the referenced field (dotted form)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parsePath(s string, pointer bool) (path.Path, error) {
	if pointer {
		return path.ParsePointer(s)
	}
	return path.ParseSimple(s)
}
