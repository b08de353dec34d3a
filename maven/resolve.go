package maven

import (
	"fmt"
	"strings"
)

// Coordinate is one parsed "groupId:artifactId:version" GAV reference,
// the format a module's dependency list uses, matching the teacher's
// project/java.go package-reference URLs.
type Coordinate struct {
	GroupID    string
	ArtifactID string
	Version    string
}

func (c Coordinate) String() string { return GAV(c.GroupID, c.ArtifactID, c.Version) }

// ParseCoordinate splits a "groupId:artifactId:version" string.
func ParseCoordinate(ref string) (Coordinate, error) {
	parts := strings.Split(ref, ":")
	if len(parts) != 3 {
		return Coordinate{}, fmt.Errorf("invalid maven coordinate %q: expected groupId:artifactId:version", ref)
	}
	return Coordinate{GroupID: parts[0], ArtifactID: parts[1], Version: parts[2]}, nil
}

// ResolvedDependency is one resolved jar in a dependency graph, with
// its direct children for diagnostic tree-printing (cmd/packages' tree
// subcommand).
type ResolvedDependency struct {
	Coordinate Coordinate
	JarPath    string
	Children   []*ResolvedDependency
}

// Resolver resolves GAV coordinates against a LocalRepository into jar
// paths, generalizing the teacher's project/java.go
// ResolveDependencies/addDependency from "one module's declared
// packages" to "an arbitrary list of root coordinates", and returning
// a flattened, de-duplicated classpath instead of a bespoke
// PackageDependency tree, so it can feed directly into
// orchestrate.DependencyMap's CLASSES entry.
type Resolver struct {
	repo *LocalRepository
}

func NewResolver(repo *LocalRepository) *Resolver {
	return &Resolver{repo: repo}
}

// ResolveClassPath resolves every root coordinate and its transitive
// (non-test, non-provided) dependencies, returning jar paths in
// first-discovered order with duplicates removed.
func (r *Resolver) ResolveClassPath(roots []Coordinate) ([]string, error) {
	var ordered []string
	seen := map[string]bool{}

	var visit func(c Coordinate) error
	visit = func(c Coordinate) error {
		gav := c.String()
		if seen[gav] {
			return nil
		}
		seen[gav] = true

		pom, err := r.repo.GetPOM(c.GroupID, c.ArtifactID, c.Version)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", gav, err)
		}

		switch pom.Packaging {
		case "", "jar":
			jarPath, err := r.repo.GetJAR(c.GroupID, c.ArtifactID, c.Version)
			if err != nil {
				return fmt.Errorf("fetching jar for %s: %w", gav, err)
			}
			ordered = append(ordered, jarPath)
		case "pom":
			// A pom-packaging dependency contributes no jar of its own.
		default:
			return fmt.Errorf("unsupported packaging %q for %s", pom.Packaging, gav)
		}

		for _, dep := range pom.Dependencies {
			if dep.Scope == "test" || dep.Scope == "provided" {
				continue
			}
			child := Coordinate{GroupID: dep.GroupID, ArtifactID: dep.ArtifactID, Version: dep.Version}
			if child.Version == "" {
				continue // unresolved version after POM expansion; nothing more we can do
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// ResolveTree resolves the same graph as ResolveClassPath but retains
// the parent/child structure, for diagnostic printing.
func (r *Resolver) ResolveTree(roots []Coordinate) ([]*ResolvedDependency, error) {
	var resolveOne func(c Coordinate) (*ResolvedDependency, error)
	resolveOne = func(c Coordinate) (*ResolvedDependency, error) {
		pom, err := r.repo.GetPOM(c.GroupID, c.ArtifactID, c.Version)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", c, err)
		}
		node := &ResolvedDependency{Coordinate: c}
		if pom.Packaging == "" || pom.Packaging == "jar" {
			jarPath, err := r.repo.GetJAR(c.GroupID, c.ArtifactID, c.Version)
			if err != nil {
				return nil, fmt.Errorf("fetching jar for %s: %w", c, err)
			}
			node.JarPath = jarPath
		}
		for _, dep := range pom.Dependencies {
			if dep.Scope == "test" || dep.Scope == "provided" || dep.Version == "" {
				continue
			}
			child, err := resolveOne(Coordinate{GroupID: dep.GroupID, ArtifactID: dep.ArtifactID, Version: dep.Version})
			if err != nil {
				return nil, err
			}
			node.Children = append(node.Children, child)
		}
		return node, nil
	}

	var nodes []*ResolvedDependency
	for _, root := range roots {
		node, err := resolveOne(root)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
