package orchestrate

import (
	"fmt"
	"sort"

	"github.com/jsando/jbc/discover"
)

// noModule is the dependency-map/ModuleRoots key used for the
// moduleless group, per spec.md §3 ("the empty-string key denotes
// 'no module'").
const noModule = ""

// SourcesForRelease is one compilation unit: every source root and file
// targeting a given release, grouped by module. Built fresh for each
// compile, per spec.md §3.
type SourcesForRelease struct {
	Release            discover.Release
	ModuleRoots        map[string][]*discover.SourceDirectory
	Files              []*discover.SourceFile
	DependencySnapshot *DependencyMap
	OutputDir          string

	moduleOrder []string
}

// ModuleOrder returns module names (including noModule, if present) in
// source-root discovery order, the ordering spec.md §5 requires modules
// be configured in.
func (u *SourcesForRelease) ModuleOrder() []string {
	return append([]string{}, u.moduleOrder...)
}

// IsModular reports whether this unit has any named module group.
func (u *SourcesForRelease) IsModular() bool {
	for _, m := range u.moduleOrder {
		if m != noModule {
			return true
		}
	}
	return false
}

// GroupSourcesForRelease partitions every discovered source directory's
// files into per-release units, ordered ascending with
// discover.ReleaseUnset ("latest supported") sorted last, per spec.md
// §4.3.2. filesByDir supplies the already-walked files for each
// directory (see discover.PathFilter.Walk).
func GroupSourcesForRelease(dirs []*discover.SourceDirectory, filesByDir map[*discover.SourceDirectory][]*discover.SourceFile) ([]*SourcesForRelease, error) {
	byRelease := map[discover.Release]*SourcesForRelease{}
	var releases []discover.Release

	for _, dir := range dirs {
		unit, ok := byRelease[dir.TargetRelease]
		if !ok {
			unit = &SourcesForRelease{
				Release:     dir.TargetRelease,
				ModuleRoots: map[string][]*discover.SourceDirectory{},
			}
			byRelease[dir.TargetRelease] = unit
			releases = append(releases, dir.TargetRelease)
		}

		moduleKey := dir.Module
		if _, seen := unit.ModuleRoots[moduleKey]; !seen {
			unit.moduleOrder = append(unit.moduleOrder, moduleKey)
		}
		unit.ModuleRoots[moduleKey] = append(unit.ModuleRoots[moduleKey], dir)

		files := filesByDir[dir]
		unit.Files = append(unit.Files, files...)
	}

	sort.Slice(releases, func(i, j int) bool {
		ri, rj := releases[i], releases[j]
		if ri == discover.ReleaseUnset {
			return false
		}
		if rj == discover.ReleaseUnset {
			return true
		}
		return ri < rj
	})

	units := make([]*SourcesForRelease, 0, len(releases))
	for _, r := range releases {
		units = append(units, byRelease[r])
	}

	for _, u := range units {
		for moduleKey, roots := range u.ModuleRoots {
			rootSet := map[string]bool{}
			for _, root := range roots {
				rootSet[root.Root] = true
			}
			for _, f := range u.Files {
				if f.Directory.Module != moduleKey {
					continue
				}
				if !rootSet[f.Directory.Root] {
					return nil, fmt.Errorf("internal error: source %s not under a root recorded for module %q", f.Path, moduleKey)
				}
			}
		}
	}

	return units, nil
}
