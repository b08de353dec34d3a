/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package packages

import (
	"fmt"

	"github.com/jsando/jbc/maven"
	"github.com/spf13/cobra"
)

// addCmd represents the add command
var addCmd = &cobra.Command{
	Use:   "add GROUP:ARTIFACT:VERSION",
	Short: "Add a package dependency",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runAdd(args[0]); err != nil {
			fmt.Println("error:", err)
		}
	},
}

func runAdd(ref string) error {
	coord, err := maven.ParseCoordinate(ref)
	if err != nil {
		return err
	}

	list, err := loadDependencyList(dependencyFile)
	if err != nil {
		return err
	}
	for _, existing := range list.Dependencies {
		if existing == coord.String() {
			fmt.Printf("%s is already declared in %s\n", coord, dependencyFile)
			return nil
		}
	}
	list.Dependencies = append(list.Dependencies, coord.String())
	if err := saveDependencyList(dependencyFile, list); err != nil {
		return err
	}
	fmt.Printf("added %s to %s\n", coord, dependencyFile)
	return nil
}
