package compiler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// DefaultJavaCompiler invokes the system javac via @argsfile, the
// "forked compiler" shape spec.md §9 describes: a process builder with
// redirected output, ported from the teacher's
// tools/default_compiler.go.
type DefaultJavaCompiler struct {
	javacPath string
	version   *JavaVersion
}

func NewDefaultJavaCompiler() *DefaultJavaCompiler {
	return &DefaultJavaCompiler{}
}

func (c *DefaultJavaCompiler) IsAvailable() bool {
	if c.javacPath != "" {
		return true
	}
	path, err := exec.LookPath("javac")
	if err != nil {
		return false
	}
	c.javacPath = path
	return true
}

func (c *DefaultJavaCompiler) Version() (JavaVersion, error) {
	if c.version != nil {
		return *c.version, nil
	}
	if !c.IsAvailable() {
		return JavaVersion{}, fmt.Errorf("javac not found")
	}
	cmd := exec.Command(c.javacPath, "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return JavaVersion{}, fmt.Errorf("failed to get javac version: %w", err)
	}
	v := parseJavaVersion(string(output))
	c.version = &v
	return v, nil
}

func (c *DefaultJavaCompiler) NewFileManager() FileManager {
	return &DefaultFileManager{
		moduleSourcePaths: map[string][]string{},
		patchModulePaths:  map[string][]string{},
	}
}

func (c *DefaultJavaCompiler) NewTask(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask {
	return &defaultCompileTask{
		compiler:    c,
		auxOut:      auxOut,
		fm:          fm.(*DefaultFileManager),
		diag:        diag,
		options:     options,
		sourceFiles: sourceFiles,
	}
}

// DefaultFileManager accumulates javac location flags. A zero value is
// not usable; build one via DefaultJavaCompiler.NewFileManager.
type DefaultFileManager struct {
	sourcePaths       []string
	classPaths        []string
	modulePaths       []string
	moduleSourcePaths map[string][]string
	patchModulePaths  map[string][]string
	classOutput       string
	sourceOutput      string
	closed            bool
}

func (fm *DefaultFileManager) SetLocationFromPaths(loc Location, paths []string) error {
	switch loc {
	case SourcePath:
		fm.sourcePaths = paths
	case ClassPath:
		fm.classPaths = paths
	case ModulePath:
		fm.modulePaths = paths
	case ClassOutput:
		if len(paths) != 1 {
			return fmt.Errorf("CLASS_OUTPUT requires exactly one path, got %d", len(paths))
		}
		fm.classOutput = paths[0]
	case SourceOutput:
		if len(paths) != 1 {
			return fmt.Errorf("SOURCE_OUTPUT requires exactly one path, got %d", len(paths))
		}
		fm.sourceOutput = paths[0]
	default:
		return fmt.Errorf("location %s is module-scoped; use SetLocationForModule", loc)
	}
	return nil
}

func (fm *DefaultFileManager) SetLocationForModule(loc Location, module string, paths []string) error {
	switch loc {
	case ModuleSourcePath:
		fm.moduleSourcePaths[module] = paths
	case PatchModulePath:
		fm.patchModulePaths[module] = paths
	default:
		return fmt.Errorf("location %s is not module-scoped; use SetLocationFromPaths", loc)
	}
	return nil
}

func (fm *DefaultFileManager) Close() error {
	fm.closed = true
	return nil
}

// Flags renders the accumulated locations as javac command-line
// arguments, mapping each location setter onto the flag javac expects:
// -d, -s, -cp, --module-path, -sourcepath, --module-source-path,
// --patch-module.
func (fm *DefaultFileManager) Flags() []string {
	var flags []string
	if fm.classOutput != "" {
		flags = append(flags, "-d", fm.classOutput)
	}
	if fm.sourceOutput != "" {
		flags = append(flags, "-s", fm.sourceOutput)
	}
	if len(fm.classPaths) > 0 {
		flags = append(flags, "-cp", strings.Join(fm.classPaths, string(os.PathListSeparator)))
	}
	if len(fm.modulePaths) > 0 {
		flags = append(flags, "--module-path", strings.Join(fm.modulePaths, string(os.PathListSeparator)))
	}
	if len(fm.sourcePaths) > 0 {
		flags = append(flags, "-sourcepath", strings.Join(fm.sourcePaths, string(os.PathListSeparator)))
	}
	for _, module := range sortedKeys(fm.moduleSourcePaths) {
		dirs := fm.moduleSourcePaths[module]
		flags = append(flags, "--module-source-path", module+"="+strings.Join(dirs, string(os.PathListSeparator)))
	}
	for _, module := range sortedKeys(fm.patchModulePaths) {
		dirs := fm.patchModulePaths[module]
		flags = append(flags, "--patch-module", module+"="+strings.Join(dirs, string(os.PathListSeparator)))
	}
	return flags
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

type defaultCompileTask struct {
	compiler    *DefaultJavaCompiler
	auxOut      io.Writer
	fm          *DefaultFileManager
	diag        DiagnosticSink
	options     []string
	sourceFiles []string
}

// Call writes the accumulated options and source file list to
// @argsfiles and invokes javac, the teacher's "avoid command line
// length limits" technique from tools/default_compiler.go, then parses
// the combined output into diagnostics.
func (t *defaultCompileTask) Call() (bool, error) {
	if !t.compiler.IsAvailable() {
		return false, fmt.Errorf("javac not found in PATH")
	}

	flags := append(append([]string{}, t.options...), t.fm.Flags()...)

	tmpDir := os.TempDir()
	flagsFile := filepath.Join(tmpDir, fmt.Sprintf("jbc-javac-flags-%d.txt", os.Getpid()))
	defer os.Remove(flagsFile)
	if err := os.WriteFile(flagsFile, []byte(strings.Join(flags, "\n")), 0o644); err != nil {
		return false, fmt.Errorf("writing compiler flags file: %w", err)
	}

	sourcesFile := filepath.Join(tmpDir, fmt.Sprintf("jbc-javac-sources-%d.txt", os.Getpid()))
	defer os.Remove(sourcesFile)
	if err := os.WriteFile(sourcesFile, []byte(strings.Join(t.sourceFiles, "\n")), 0o644); err != nil {
		return false, fmt.Errorf("writing source file list: %w", err)
	}

	cmd := exec.Command(t.compiler.javacPath, "@"+flagsFile, "@"+sourcesFile)
	output, runErr := cmd.CombinedOutput()
	if t.auxOut != nil {
		_, _ = t.auxOut.Write(output)
	}
	if t.diag != nil {
		scanCompilerOutput(string(output), t.diag)
	}
	return runErr == nil, nil
}

var (
	diagWithColumn = regexp.MustCompile(`^(.+?):(\d+):(\d+):\s*(error|warning):\s*(.+)$`)
	diagNoColumn   = regexp.MustCompile(`^(.+?):(\d+):\s*(error|warning):\s*(.+)$`)
	summaryLine    = regexp.MustCompile(`^(\d+)\s+errors?$`)
)

// scanCompilerOutput parses javac's combined stdout/stderr, one line at
// a time, into Diagnostic reports. Ported from the teacher's
// parseCompilerOutput, generalized to report through a DiagnosticSink
// instead of accumulating into a CompileResult.
func scanCompilerOutput(output string, diag DiagnosticSink) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if m := diagWithColumn.FindStringSubmatch(line); m != nil {
			lineNum, _ := strconv.Atoi(m[2])
			col, _ := strconv.Atoi(m[3])
			diag.Report(Diagnostic{File: m[1], Line: lineNum, Column: col, Kind: m[4], Message: m[5]})
			continue
		}
		if m := diagNoColumn.FindStringSubmatch(line); m != nil {
			lineNum, _ := strconv.Atoi(m[2])
			diag.Report(Diagnostic{File: m[1], Line: lineNum, Kind: m[3], Message: m[4]})
			continue
		}
	}
	_ = summaryLine // reserved for a future "N errors" reconciliation pass
}
