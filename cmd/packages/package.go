/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/

// Package packages implements the "packages" command group (add,
// remove, tree), adapted from the teacher's cmd/packages package to
// read and write a flat GAV-coordinate dependency list file and
// resolve it through maven.Resolver/LocalRepository instead of the
// teacher's simpler per-module jb-module.json dependency list.
package packages

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dependencyFile string

// PackageCmd represents the packages command
var PackageCmd = &cobra.Command{
	Use:     "package",
	Aliases: []string{"pkg"},
	Short:   "Manage maven package dependencies",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use 'package add', 'package remove', or 'package tree'")
	},
}

func init() {
	PackageCmd.PersistentFlags().StringVarP(&dependencyFile, "file", "f", "jbc-packages.json", "dependency list file to read/write")
	PackageCmd.AddCommand(addCmd)
	PackageCmd.AddCommand(removeCmd)
	PackageCmd.AddCommand(treeCmd)
}

// dependencyListFile is the on-disk shape of the file packages
// add/remove/tree operate on: a flat list of "group:artifact:version"
// references, analogous to the teacher's ModuleFileJSON.Dependencies
// field but free-standing rather than embedded in a module file, since
// this CLI surface has no module concept of its own - a Config's
// Dependencies are pre-resolved paths by the time a build consumes
// them (see the config package), not raw coordinates.
type dependencyListFile struct {
	Dependencies []string `json:"dependencies"`
}

func loadDependencyList(path string) (*dependencyListFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &dependencyListFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list dependencyListFile
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &list, nil
}

func saveDependencyList(path string, list *dependencyListFile) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
