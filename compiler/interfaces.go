package compiler

import "io"

// Location identifies one of the compiler's file-manager locations, the
// entire external contract spec.md §6 grants orchestrate over a
// compiler's source/class/module path configuration.
type Location string

const (
	SourcePath       Location = "SOURCE_PATH"
	ModuleSourcePath Location = "MODULE_SOURCE_PATH"
	ClassPath        Location = "CLASS_PATH"
	ModulePath       Location = "MODULE_PATH"
	PatchModulePath  Location = "PATCH_MODULE_PATH"
	ClassOutput      Location = "CLASS_OUTPUT"
	SourceOutput     Location = "SOURCE_OUTPUT"
)

// FileManager configures where a compilation task reads sources and
// dependencies from, and writes outputs to.
type FileManager interface {
	// SetLocationFromPaths configures a non-module-scoped location.
	SetLocationFromPaths(loc Location, paths []string) error
	// SetLocationForModule configures a location scoped to one module
	// (MODULE_SOURCE_PATH, PATCH_MODULE_PATH).
	SetLocationForModule(loc Location, module string, paths []string) error
	// Close releases any open handles/caches. Safe to call more than
	// once.
	Close() error
}

// Diagnostic is one compiler-reported error or warning.
type Diagnostic struct {
	File    string
	Line    int
	Column  int
	Kind    string // "error" or "warning"
	Message string
}

// DiagnosticSink receives diagnostics as a compilation task runs and
// can summarize them at the end of a multi-unit build.
type DiagnosticSink interface {
	Report(d Diagnostic)
	SupportsSummary() bool
	Summary() string
}

// CompileTask is a single "compile these files under this
// configuration" unit of work, built by JavaCompiler.NewTask and run
// exactly once.
type CompileTask interface {
	Call() (bool, error)
}

// JavaCompiler is the narrow compiler contract orchestrate depends on:
// a file-manager factory and a task factory, per spec.md §6.
type JavaCompiler interface {
	NewFileManager() FileManager
	NewTask(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask
	Version() (JavaVersion, error)
	IsAvailable() bool
}

// JarArgs are the parameters for assembling one jar file.
type JarArgs struct {
	JarFile      string
	BaseDir      string
	Files        []string
	MainClass    string
	ClassPath    []string
	ManifestFile string
	Date         string
	WorkDir      string
}

// JarTool is the narrow jar-assembly contract.
type JarTool interface {
	Create(args JarArgs) error
	Version() (JavaVersion, error)
	IsAvailable() bool
}

// RunArgs are the parameters for launching a compiled program.
type RunArgs struct {
	MainClass   string
	JarFile     string
	ClassPath   string
	JvmArgs     []string
	ProgramArgs []string
	WorkDir     string
	Env         []string
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// JavaRunner launches a compiled program.
type JavaRunner interface {
	Run(args RunArgs) error
	Version() (JavaVersion, error)
	IsAvailable() bool
}

// JDKInfo describes one detected JDK installation.
type JDKInfo struct {
	Version JavaVersion
	Home    string
	Vendor  string
	Arch    string
	OS      string
}

// ToolProvider hands out the compiler/jar/runner trio and JDK detection
// as one unit, so a build always talks to tools from the same JDK.
type ToolProvider interface {
	GetCompiler() JavaCompiler
	GetJarTool() JarTool
	GetRunner() JavaRunner
	DetectJDK() (*JDKInfo, error)
}
