package main

import (
	"github.com/phasereditor2d/supertype/cmd"
	"github.com/spf13/cobra"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "supertype [subcommand]",
	Short:        "supertype finds where a type can be replaced by one of its supertypes",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.SolveCmd)
	rootCmd.AddCommand(cmd.InspectCmd)
}
