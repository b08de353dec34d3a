/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/jsando/jbc/modinfo"
	"github.com/spf13/cobra"
)

// PatchModuleInfoCmd exposes the §4.5 bytecode patcher as a standalone
// command, for testing/debugging outside a full build - grounded on
// the teacher's convention of giving every builder-internal step its
// own cmd/ entry point (cmd/build.go, cmd/publish.go, cmd/run.go each
// wrap one builder operation).
var PatchModuleInfoCmd = &cobra.Command{
	Use:   "patch-module-info CLASSFILE RELEASE",
	Short: "Rewrite a compiled module-info class's platform-module requires-version entries",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		classFile, targetRelease := args[0], args[1]
		if err := runPatchModuleInfo(classFile, targetRelease); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err)
			os.Exit(1)
		}
	},
}

type cmdLogger struct{}

func (cmdLogger) Info(msg string) { fmt.Println(msg) }

func runPatchModuleInfo(classFile, targetRelease string) error {
	data, err := os.ReadFile(classFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", classFile, err)
	}

	patched, changed, err := modinfo.Patch(data, targetRelease, cmdLogger{})
	if err != nil {
		return fmt.Errorf("patching %s: %w", classFile, err)
	}
	if !changed {
		fmt.Printf("%s already targets release %s; nothing to do\n", classFile, targetRelease)
		return nil
	}

	if err := os.WriteFile(classFile, patched, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", classFile, err)
	}
	fmt.Printf("patched %s for release %s\n", classFile, targetRelease)
	return nil
}
