package orchestrate

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/jsando/jbc/compiler"
	"github.com/jsando/jbc/discover"
	"github.com/jsando/jbc/incremental"
)

// versionsDirName picks the multi-release output subdirectory name. The
// "-modular" variant is a deliberate non-standard choice so a
// module-aware multi-release jar layout does not collide with the
// ordinary META-INF/versions the jar spec defines, per spec.md §6.
func versionsDirName(modular bool) string {
	if modular {
		return "versions-modular"
	}
	return "versions"
}

// ToolExecutor drives one build: project-type discipline and the
// per-release compilation loop. It takes a snapshot of its inputs at construction (spec.md
// §5); one instance compiles exactly once.
type ToolExecutor struct {
	Compiler         compiler.JavaCompiler
	ProjectType      ProjectType
	BaseOutputDir    string
	Dependencies     *DependencyMap
	PreviousPhaseOut string // non-empty when compiling tests on top of already-compiled main classes

	previousModuleOutputDirs map[string]string
	previousModules          map[string]bool
	prependedSourceCount     map[string]int
	modulesPrependedOnce     bool
}

func NewToolExecutor(c compiler.JavaCompiler, projectType ProjectType, baseOutputDir string, deps *DependencyMap) *ToolExecutor {
	if deps != nil {
		deps = deps.Snapshot()
	}
	return &ToolExecutor{
		Compiler:                 c,
		ProjectType:              projectType,
		BaseOutputDir:            baseOutputDir,
		Dependencies:             deps,
		previousModuleOutputDirs: map[string]string{},
		previousModules:          map[string]bool{},
		prependedSourceCount:     map[string]int{},
	}
}

// Compile runs every unit's compilation in ascending release order,
// stopping on the first failure, per spec.md §4.3.2.
func (e *ToolExecutor) Compile(units []*SourcesForRelease, options []string, auxOut io.Writer, diag compiler.DiagnosticSink) (bool, error) {
	latestOutputDir := e.PreviousPhaseOut

	for i, unit := range units {
		isBase := i == 0

		fm := e.Compiler.NewFileManager()
		defer fm.Close()

		if err := e.configureSourceLocations(fm, unit); err != nil {
			return false, err
		}

		if latestOutputDir != "" {
			if err := e.configureCrossVersionInheritance(fm, unit, latestOutputDir, isBase); err != nil {
				return false, err
			}
		}

		if err := e.retireAbsentModules(fm, unit); err != nil {
			return false, err
		}

		unit.DependencySnapshot = e.Dependencies.Snapshot()

		outputDir := e.BaseOutputDir
		if !isBase {
			outputDir = filepath.Join(e.BaseOutputDir, "META-INF", versionsDirName(unit.IsModular()), releaseString(unit.Release))
		}
		if err := fm.SetLocationFromPaths(compiler.ClassOutput, []string{outputDir}); err != nil {
			return false, err
		}
		unit.OutputDir = outputDir
		latestOutputDir = outputDir
		for _, module := range unit.ModuleOrder() {
			if module != noModule {
				e.previousModuleOutputDirs[module] = outputDir
			}
		}
		e.previousModules = map[string]bool{}
		for _, module := range unit.ModuleOrder() {
			e.previousModules[module] = true
		}

		sourceFiles := make([]string, 0, len(unit.Files))
		for _, f := range unit.Files {
			sourceFiles = append(sourceFiles, f.Path)
		}

		task := e.Compiler.NewTask(auxOut, fm, diag, options, nil, sourceFiles)
		success, err := task.Call()
		if err != nil {
			return false, fmt.Errorf("release %s compilation: %w", releaseString(unit.Release), err)
		}
		if !success {
			return false, nil
		}
	}

	if diag != nil && diag.SupportsSummary() {
		if auxOut != nil {
			_, _ = io.WriteString(auxOut, diag.Summary())
		}
	}
	return true, nil
}

func (e *ToolExecutor) configureSourceLocations(fm compiler.FileManager, unit *SourcesForRelease) error {
	if e.ProjectType == Classpath {
		var allRoots []string
		for _, module := range unit.ModuleOrder() {
			for _, dir := range unit.ModuleRoots[module] {
				allRoots = append(allRoots, dir.Root)
			}
		}
		return fm.SetLocationFromPaths(compiler.SourcePath, allRoots)
	}

	for _, module := range unit.ModuleOrder() {
		var roots []string
		for _, dir := range unit.ModuleRoots[module] {
			roots = append(roots, dir.Root)
		}
		if err := fm.SetLocationForModule(compiler.ModuleSourcePath, module, roots); err != nil {
			return err
		}
	}
	return nil
}

func (e *ToolExecutor) configureCrossVersionInheritance(fm compiler.FileManager, unit *SourcesForRelease, latestOutputDir string, isBase bool) error {
	if e.ProjectType == Classpath {
		e.Dependencies.Prepend(ClassesPathType(), latestOutputDir)
		return fm.SetLocationFromPaths(compiler.ClassPath, e.Dependencies.Get(ClassesPathType()))
	}

	if !e.modulesPrependedOnce && !isBase {
		e.Dependencies.Prepend(ModulesPathType(), latestOutputDir)
		if err := fm.SetLocationFromPaths(compiler.ModulePath, e.Dependencies.Get(ModulesPathType())); err != nil {
			return err
		}
		e.modulesPrependedOnce = true
	}

	for _, module := range unit.ModuleOrder() {
		if module == noModule {
			continue
		}
		pt := PatchModulePathType(module)
		existing := e.Dependencies.Get(pt)
		stale := e.prependedSourceCount[module]
		if stale > len(existing) {
			stale = len(existing)
		}
		existing = existing[stale:]

		var thisRoots []string
		for _, dir := range unit.ModuleRoots[module] {
			thisRoots = append(thisRoots, dir.Root)
		}

		var patched []string
		patched = append(patched, thisRoots...)
		if prevOut, ok := e.previousModuleOutputDirs[module]; ok {
			patched = append(patched, prevOut)
		}
		patched = append(patched, existing...)

		e.Dependencies.Set(pt, patched)
		e.prependedSourceCount[module] = len(thisRoots)
		if err := fm.SetLocationForModule(compiler.PatchModulePath, module, patched); err != nil {
			return err
		}
	}
	return nil
}

func (e *ToolExecutor) retireAbsentModules(fm compiler.FileManager, unit *SourcesForRelease) error {
	current := map[string]bool{}
	for _, module := range unit.ModuleOrder() {
		current[module] = true
	}
	for module := range e.previousModules {
		if current[module] || module == noModule {
			continue
		}
		if err := fm.SetLocationForModule(compiler.ModuleSourcePath, module, nil); err != nil {
			return err
		}
		var retired []string
		if prevOut, ok := e.previousModuleOutputDirs[module]; ok {
			retired = []string{prevOut}
		}
		e.Dependencies.Set(PatchModulePathType(module), retired)
		if err := fm.SetLocationForModule(compiler.PatchModulePath, module, retired); err != nil {
			return err
		}
	}
	return nil
}

func releaseString(r discover.Release) string {
	if r == discover.ReleaseUnset {
		return "latest"
	}
	return strconv.Itoa(int(r))
}

// ApplyIncrementalBuild prunes unit.Files down to what actually needs
// recompiling and returns whether anything needs compiling at all,
// per spec.md §4.3's applyIncrementalBuild(config, options) contract.
func ApplyIncrementalBuild(cache *incremental.Cache, policies *incremental.PolicySet, unit *SourcesForRelease, dependencyPaths []string, dependencyCheckExts []string, optionsFingerprint uint32, buildEpochMillis int64, outputExt string, staleGraceMillis int64) (shouldCompile bool, reason string, err error) {
	decision, err := incremental.Apply(cache, policies, unit.Files, dependencyPaths, dependencyCheckExts, optionsFingerprint, buildEpochMillis, outputExt, staleGraceMillis)
	if err != nil {
		return false, "", err
	}
	if decision.FullRebuild {
		return len(unit.Files) > 0, decision.Reason, nil
	}
	unit.Files = decision.ToCompile
	return len(decision.ToCompile) > 0, decision.Reason, nil
}
