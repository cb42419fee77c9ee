package cmd

import (
	"fmt"
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/spf13/cobra"
	"io"
	"slices"
	"strings"
)

var InspectCmd = &cobra.Command{
	Use:          "inspect problem.yaml|-",
	Short:        "Print the constraint variables, constraints and equivalence classes of a problem",
	RunE:         runInspect,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var inspectFlags *commonFlags

func init() {
	inspectFlags = registerCommonFlags(InspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	p, err := inspectFlags.load(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	printModel(cmd.OutOrStdout(), p.Model)
	return nil
}

func printModel(w io.Writer, model *constraints.Model) {
	_, _ = fmt.Fprintf(w, "%s %s\n", title("variables"), extra(fmt.Sprint(model.NumVariables())))
	for v := range model.ConstraintVariables() {
		_, _ = fmt.Fprintf(w, "  %3d %-11s %s\n", v.Handle(), v.Kind(), v)
	}

	_, _ = fmt.Fprintf(w, "%s %s\n", title("constraints"), extra(fmt.Sprint(model.NumConstraints())))
	for c := range model.TypeConstraints() {
		_, _ = fmt.Fprintf(w, "  %-11s %s\n", c.Kind(), c)
	}

	_, _ = fmt.Fprintln(w, title("equalities"))
	for set := range model.Equivalence().Sets() {
		if set.Len() < 2 {
			continue
		}
		members := make([]string, 0, set.Len())
		for _, h := range slices.Sorted(set.Members()) {
			members = append(members, model.Variable(h).String())
		}
		_, _ = fmt.Fprintf(w, "  %s\n", strings.Join(members, " = "))
	}
}
