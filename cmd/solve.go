package cmd

import (
	"fmt"
	"github.com/davecgh/go-spew/spew"
	"github.com/phasereditor2d/supertype/constraints"
	"github.com/phasereditor2d/supertype/internal/log"
	"github.com/phasereditor2d/supertype/problem"
	"github.com/phasereditor2d/supertype/solver"
	"github.com/phasereditor2d/supertype/ttype"
	"github.com/spf13/cobra"
	"io"
	"log/slog"
	"slices"
)

var SolveCmd = &cobra.Command{
	Use:          "solve problem.yaml|-",
	Short:        "Find the type occurrences that can use the supertype",
	RunE:         runSolve,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	solveFlags *commonFlags
	dump       *bool
	showKept   *bool
)

var logger = log.DefaultLogger.With("section", "cmd")

func init() {
	solveFlags = registerCommonFlags(SolveCmd)
	dump = SolveCmd.Flags().Bool("dump", false, "dump the solver statistics and every estimate")
	showKept = SolveCmd.Flags().BoolP("all", "a", false, "also list the locations that must keep the subtype")
}

type commonFlags struct {
	logLevel  *int
	colorMode *string
}

func registerCommonFlags(cmd *cobra.Command) *commonFlags {
	return &commonFlags{
		logLevel:  cmd.Flags().IntP("log-level", "l", int(slog.LevelWarn), "log level"),
		colorMode: cmd.Flags().String("color", "auto", "colorize output: auto, always or never"),
	}
}

// load reads the problem at path, or from in when path is "-"
func (f *commonFlags) load(path string, in io.Reader) (*problem.Problem, error) {
	log.SetLevel(slog.Level(*f.logLevel))
	if err := setColor(*f.colorMode); err != nil {
		return nil, err
	}
	var p *problem.Problem
	var err error
	if path == "-" {
		p, err = problem.Load(in)
	} else {
		p, err = problem.LoadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("could not load problem: %w", err)
	}
	return p, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	p, err := solveFlags.load(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	result := solver.New(p.Model).Solve()
	logger.Info("solved", "file", args[0], "stats", result.Stats)

	out := cmd.OutOrStdout()
	printResult(out, p.Model, result, *showKept)
	if *dump {
		dumpResult(out, p.Model, result)
	}
	return nil
}

func printResult(w io.Writer, model *constraints.Model, result *solver.Result, all bool) {
	subType, superType := model.SubType().Name(), model.SuperType().Name()
	_, _ = fmt.Fprintf(w, "%s %s %s\n", title(subType), extra("to"), title(superType))
	if result.IsEmpty() && !all {
		_, _ = fmt.Fprintln(w, "nothing to rewrite")
		return
	}

	var keptAt map[ttype.FileID][]*constraints.Variable
	files := result.Files()
	if all {
		keptAt = keptLocations(model, result)
		for file := range keptAt {
			files = append(files, file)
		}
		files = sortedFiles(files)
	}
	for _, file := range files {
		_, _ = fmt.Fprintf(w, "%s\n", title(string(file)))
		for _, occurrence := range result.TypeOccurrences[file] {
			_, _ = fmt.Fprintf(w, "  %-10s %s %s\n",
				span(occurrence.Range),
				rewritten(occurrence.Type.Name()),
				extra(constraints.Format(occurrence.Variable)))
		}
		for _, cast := range result.ObsoleteCasts[file] {
			_, _ = fmt.Fprintf(w, "  %-10s %s %s\n",
				span(cast.Range()),
				rewritten("obsolete cast to "+cast.Type().Name()),
				extra(constraints.Format(cast.Expression())))
		}
		for _, v := range keptAt[file] {
			_, _ = fmt.Fprintf(w, "  %-10s %s %s\n", span(v.Range()), kept(v.Type().Name()), extra(constraints.Format(v)))
		}
	}
	_, _ = fmt.Fprintf(w, "%d occurrences, %d obsolete casts\n", result.NumTypeOccurrences(), result.NumObsoleteCasts())
}

// keptLocations are the located variables declared with the subtype that could not move to the supertype
func keptLocations(model *constraints.Model, result *solver.Result) map[ttype.FileID][]*constraints.Variable {
	keptAt := make(map[ttype.FileID][]*constraints.Variable)
	for v := range model.ConstraintVariables() {
		if v.Kind() == constraints.KindCast || !v.HasRange() || !ttype.SameErasure(v.Type(), model.SubType()) {
			continue
		}
		if resolved, ok := result.Type(v); ok && ttype.SameErasure(resolved, model.SuperType()) {
			continue
		}
		file := v.Range().File
		keptAt[file] = append(keptAt[file], v)
	}
	return keptAt
}

func sortedFiles(files []ttype.FileID) []ttype.FileID {
	slices.Sort(files)
	return slices.Compact(files)
}

func span(r ttype.Range) string {
	return fmt.Sprintf("%d+%d", r.Offset, r.Length)
}

func dumpResult(w io.Writer, model *constraints.Model, result *solver.Result) {
	config := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
	_, _ = fmt.Fprintln(w, title("statistics"))
	config.Fdump(w, result.Stats)

	estimates := make(map[string]string, model.NumVariables())
	for v := range model.ConstraintVariables() {
		estimates[fmt.Sprintf("%03d %s", v.Handle(), v)] = result.Estimate(v).String()
	}
	_, _ = fmt.Fprintln(w, title("estimates"))
	config.Fdump(w, estimates)
}
