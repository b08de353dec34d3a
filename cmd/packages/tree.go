/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package packages

import (
	"fmt"
	"os"

	"github.com/jsando/jbc/maven"
	"github.com/spf13/cobra"
)

// treeCmd prints the resolved dependency tree for the coordinates
// declared in the dependency list file, replacing the teacher's
// project.Module.ResolveDependencies/PrintTree walk (which worked from
// one module's in-memory Packages.References) with
// maven.Resolver.ResolveTree against the same jbc-packages.json file
// add/remove maintain.
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print dependency tree",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTree(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func runTree() error {
	list, err := loadDependencyList(dependencyFile)
	if err != nil {
		return err
	}
	fmt.Printf("resolving %d declared package(s) from %s\n", len(list.Dependencies), dependencyFile)

	var roots []maven.Coordinate
	for _, ref := range list.Dependencies {
		coord, err := maven.ParseCoordinate(ref)
		if err != nil {
			return err
		}
		roots = append(roots, coord)
	}

	resolver := maven.NewResolver(maven.OpenLocalRepository())
	tree, err := resolver.ResolveTree(roots)
	if err != nil {
		return err
	}

	fmt.Printf("found %d root package(s):\n", len(tree))
	for _, node := range tree {
		printTree(node, 0)
	}
	return nil
}

func printTree(node *maven.ResolvedDependency, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%s\n", indent, node.Coordinate)
	for _, child := range node.Children {
		printTree(child, depth+1)
	}
}
