// Package orchestrate drives a full build: grouping discovered sources
// into per-release compilation units, threading the dependency map
// across releases, and invoking a compiler.JavaCompiler for each unit.
// Grounded on the teacher's project/java.go Build method (the sequence
// of steps a single compile-then-jar build goes through) and on
// builder/builder.go's driver loop, generalized to multi-release and
// modular projects.
package orchestrate

// PathTypeKind names one of the locations a dependency path can be
// attached to. PatchModule and SourcePath entries are additionally
// scoped to one module name.
type PathTypeKind string

const (
	KindClasses                       PathTypeKind = "CLASSES"
	KindModules                       PathTypeKind = "MODULES"
	KindPatchModule                   PathTypeKind = "PATCH_MODULE"
	KindAnnotationProcessorPath       PathTypeKind = "ANNOTATION_PROCESSOR_PATH"
	KindAnnotationProcessorModulePath PathTypeKind = "ANNOTATION_PROCESSOR_MODULE_PATH"
	KindSourcePath                    PathTypeKind = "SOURCE_PATH"
)

// PathType is a dependency-map key: a kind, plus a module name for the
// kinds that are module-scoped (PatchModule, SourcePath).
type PathType struct {
	Kind   PathTypeKind
	Module string
}

func ClassesPathType() PathType { return PathType{Kind: KindClasses} }
func ModulesPathType() PathType { return PathType{Kind: KindModules} }
func PatchModulePathType(module string) PathType {
	return PathType{Kind: KindPatchModule, Module: module}
}

// DependencyMap is an ordered mapping from PathType to a deque of
// paths, per spec.md §3. Keys preserve first-insertion order so two
// builds presented with the same inputs render identical compiler
// flags.
type DependencyMap struct {
	order   []PathType
	entries map[PathType][]string
}

func NewDependencyMap() *DependencyMap {
	return &DependencyMap{entries: map[PathType][]string{}}
}

func (m *DependencyMap) ensureKey(pt PathType) {
	if _, ok := m.entries[pt]; !ok {
		m.order = append(m.order, pt)
		m.entries[pt] = nil
	}
}

// Append adds paths to the back of pt's deque.
func (m *DependencyMap) Append(pt PathType, paths ...string) {
	m.ensureKey(pt)
	m.entries[pt] = append(m.entries[pt], paths...)
}

// Prepend adds paths to the front of pt's deque, the operation the
// per-release loop uses to thread a prior release's output directory
// into the next release's classpath/module-path (spec.md §4.3.2).
func (m *DependencyMap) Prepend(pt PathType, paths ...string) {
	m.ensureKey(pt)
	m.entries[pt] = append(append([]string{}, paths...), m.entries[pt]...)
}

// Set replaces pt's deque wholesale, used when retiring an absent
// module's patch-module list (spec.md §4.3.2 step 3).
func (m *DependencyMap) Set(pt PathType, paths []string) {
	m.ensureKey(pt)
	m.entries[pt] = paths
}

// Clear empties pt's deque without removing it from iteration order.
func (m *DependencyMap) Clear(pt PathType) {
	m.ensureKey(pt)
	m.entries[pt] = nil
}

// Get returns pt's current deque. The returned slice must not be
// mutated by callers; use Append/Prepend/Set instead.
func (m *DependencyMap) Get(pt PathType) []string {
	return m.entries[pt]
}

// Keys returns every PathType with an entry, in first-insertion order.
func (m *DependencyMap) Keys() []PathType {
	return append([]PathType{}, m.order...)
}

// Snapshot deep-copies the map so the copy is safe to keep around
// (e.g. attached to a SourcesForRelease) after the original continues
// to mutate in later iterations, per spec.md §3's "snapshot is
// immutable" invariant.
func (m *DependencyMap) Snapshot() *DependencyMap {
	clone := NewDependencyMap()
	for _, pt := range m.order {
		paths := m.entries[pt]
		clone.order = append(clone.order, pt)
		clone.entries[pt] = append([]string{}, paths...)
	}
	return clone
}
