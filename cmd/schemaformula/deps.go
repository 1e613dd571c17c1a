package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/reoring/schemaformula"
	"github.com/reoring/schemaformula/formula"
	"github.com/reoring/schemaformula/path"
	"github.com/reoring/schemaformula/schema"
)

func newDepsCommand(a *app) *cobra.Command {
	var order bool
	cmd := &cobra.Command{
		Use:   "deps <schema.json|schema.yaml>",
		Short: "List formula dependencies and the formulas using each field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			tree, idx, errs := doc.Tree(), doc.Index(), doc.Errors()

			out := cmd.OutOrStdout()
			printFormulas(out, tree, idx, errs)
			printDependents(out, tree, idx)
			if order {
				if err := printOrder(out, tree, idx); err != nil {
					return err
				}
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d invalid formula(s)", len(errs))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&order, "order", false, "print formulas in evaluation order")
	return cmd
}

func (a *app) open(filename string) (*schemaformula.Document, error) {
	doc, err := schemaformula.Open(schemaformula.File(filename), schemaformula.WithLogger(a.logger))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return doc, nil
}

func printFormulas(out io.Writer, tree *schema.Tree, idx *formula.Index, errs map[string]error) {
	header := color.New(color.FgCyan, color.Bold)
	bad := color.New(color.FgRed)

	header.Fprintln(out, "Formulas:")
	for _, field := range tree.FormulaFields() {
		fmt.Fprintf(out, "  %s = %s\n", field.Path.Simple(), field.Expression)
		if err, failed := errs[field.NodeID]; failed {
			bad.Fprintf(out, "    ✗ %s\n", message(err))
			continue
		}
		for _, d := range idx.Formula(field.NodeID).Dependencies() {
			fmt.Fprintf(out, "    → %s\n", pathOf(tree, d.TargetNodeID()))
		}
	}
}

func printDependents(out io.Writer, tree *schema.Tree, idx *formula.Index) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintln(out, "Used by:")
	tree.Walk(func(p path.Path, n schema.Node) bool {
		if !idx.HasDependents(n.ID()) {
			return true
		}
		fmt.Fprintf(out, "  %s ←", p.Simple())
		for _, id := range idx.Dependents(n.ID()) {
			fmt.Fprintf(out, " %s", pathOf(tree, id))
		}
		fmt.Fprintln(out)
		return true
	})
}

func printOrder(out io.Writer, tree *schema.Tree, idx *formula.Index) error {
	ids, err := idx.Order()
	if err != nil {
		var fe *formula.Error
		if errors.As(err, &fe) {
			return fmt.Errorf("cannot order formulas: %s", fe.Message())
		}
		return err
	}
	color.New(color.FgCyan, color.Bold).Fprintln(out, "Evaluation order:")
	for i, id := range ids {
		fmt.Fprintf(out, "  %d. %s\n", i+1, pathOf(tree, id))
	}
	return nil
}

func pathOf(tree *schema.Tree, id string) string {
	if p, ok := tree.PathOf(id); ok {
		return p.Simple()
	}
	return id
}

// message prefers the localized field-level message of formula errors.
func message(err error) string {
	var fe *formula.Error
	if errors.As(err, &fe) {
		return fe.Message()
	}
	return err.Error()
}
