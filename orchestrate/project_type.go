package orchestrate

import (
	"fmt"

	"github.com/jsando/jbc/discover"
)

// ProjectType is either Classpath (every source root is moduleless) or
// Modular (every source root declares a module), per spec.md §4.3.1.
type ProjectType int

const (
	Classpath ProjectType = iota
	Modular
)

// DetermineProjectType scans every discovered source directory. Mixing
// modular and moduleless roots is a fatal error. legacyModuleName, if
// non-empty, is the Maven-3 compatibility affordance: the moduleless
// group is remapped to this module name, after validating it does not
// collide with any declared module.
func DetermineProjectType(dirs []*discover.SourceDirectory, legacyModuleName string) (ProjectType, error) {
	hasModular := false
	hasModuleless := false
	for _, d := range dirs {
		if d.Module == "" {
			hasModuleless = true
		} else {
			hasModular = true
			if legacyModuleName != "" && d.Module == legacyModuleName {
				return Classpath, fmt.Errorf("legacy module name %q conflicts with a declared module of the same name", legacyModuleName)
			}
		}
	}

	if legacyModuleName != "" && hasModuleless {
		for _, d := range dirs {
			if d.Module == "" {
				d.Module = legacyModuleName
			}
		}
		hasModuleless = false
		hasModular = true
	}

	switch {
	case hasModular && hasModuleless:
		return Classpath, fmt.Errorf("project mixes modular and moduleless source roots; every root must declare a module or none must")
	case hasModular:
		return Modular, nil
	default:
		return Classpath, nil
	}
}
