/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/jsando/jbc/cmd/packages"
	"github.com/spf13/cobra"
)

// RootCmd is the jbc CLI's entry point, grounded on the teacher's
// main.go command-table shape but re-expressed with cobra (already a
// direct dependency, used throughout cmd/packages) instead of a
// hand-rolled switch over os.Args.
var RootCmd = &cobra.Command{
	Use:   "jbc",
	Short: "jbc - a Java compiler orchestrator",
	Long: `jbc drives incremental, multi-release Java compilation from a
build configuration file: source discovery and filtering, per-release
compilation ordering, and module-info bytecode patching.`,
}

func init() {
	RootCmd.AddCommand(CompileCmd)
	RootCmd.AddCommand(PatchModuleInfoCmd)
	RootCmd.AddCommand(packages.PackageCmd)
}

// Execute runs the root command, printing any returned error to
// stderr and exiting non-zero - cobra's own convention, matching the
// teacher's main.go "report and os.Exit(1)" pattern at the top level.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
