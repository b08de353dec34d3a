package orchestrate

import (
	"fmt"
	"os"
	"strings"
)

// WriteDebugArgsFile writes one compiler option per line plus the
// unit's source file list, in @argsfile form, so a failed build can be
// reproduced from a shell by running `javac @<path>` (spec.md §4.3.3).
func WriteDebugArgsFile(path string, unit *SourcesForRelease, options []string) error {
	var b strings.Builder

	for _, opt := range options {
		b.WriteString(opt)
		b.WriteByte('\n')
	}

	if unit.DependencySnapshot != nil {
		for _, pt := range unit.DependencySnapshot.Keys() {
			paths := unit.DependencySnapshot.Get(pt)
			if len(paths) == 0 {
				continue
			}
			b.WriteString(fmt.Sprintf("# %s\n", debugArgsLabel(pt)))
			for _, p := range paths {
				b.WriteString(fmt.Sprintf("#   %s\n", p))
			}
		}
	}

	for _, f := range unit.Files {
		b.WriteString(f.Path)
		b.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func debugArgsLabel(pt PathType) string {
	if pt.Module != "" {
		return fmt.Sprintf("%s[%s]", pt.Kind, pt.Module)
	}
	return string(pt.Kind)
}
