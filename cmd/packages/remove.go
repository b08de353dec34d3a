/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package packages

import (
	"fmt"

	"github.com/jsando/jbc/maven"
	"github.com/spf13/cobra"
)

// removeCmd represents the remove command
var removeCmd = &cobra.Command{
	Use:     "remove GROUP:ARTIFACT:VERSION",
	Aliases: []string{"rm"},
	Short:   "Remove a package dependency",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runRemove(args[0]); err != nil {
			fmt.Println("error:", err)
		}
	},
}

func runRemove(ref string) error {
	coord, err := maven.ParseCoordinate(ref)
	if err != nil {
		return err
	}

	list, err := loadDependencyList(dependencyFile)
	if err != nil {
		return err
	}

	kept := list.Dependencies[:0]
	found := false
	for _, existing := range list.Dependencies {
		if existing == coord.String() {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		fmt.Printf("%s is not declared in %s\n", coord, dependencyFile)
		return nil
	}
	list.Dependencies = kept
	if err := saveDependencyList(dependencyFile, list); err != nil {
		return err
	}
	fmt.Printf("removed %s from %s\n", coord, dependencyFile)
	return nil
}
