package compiler

import (
	"bytes"
	"errors"
	"io"
)

// MockFileManager records every location set on it, for assertions in
// orchestrate's tests without spawning a file manager.
type MockFileManager struct {
	Paths       map[Location][]string
	ModulePaths map[Location]map[string][]string
	ClosedCalls int
}

func NewMockFileManager() *MockFileManager {
	return &MockFileManager{
		Paths:       map[Location][]string{},
		ModulePaths: map[Location]map[string][]string{},
	}
}

func (m *MockFileManager) SetLocationFromPaths(loc Location, paths []string) error {
	m.Paths[loc] = paths
	return nil
}

func (m *MockFileManager) SetLocationForModule(loc Location, module string, paths []string) error {
	if m.ModulePaths[loc] == nil {
		m.ModulePaths[loc] = map[string][]string{}
	}
	m.ModulePaths[loc][module] = paths
	return nil
}

func (m *MockFileManager) Close() error {
	m.ClosedCalls++
	return nil
}

// MockCompileTask returns a canned result when Call is invoked.
type MockCompileTask struct {
	Result  bool
	Err     error
	Invoked bool
}

func (t *MockCompileTask) Call() (bool, error) {
	t.Invoked = true
	return t.Result, t.Err
}

// MockJavaCompiler is a func-field test double mirroring the teacher's
// tools/mocks.go MockJavaCompiler: each interface method delegates to
// an overridable function field, defaulting to a working compiler.
type MockJavaCompiler struct {
	NewFileManagerFunc func() FileManager
	NewTaskFunc        func(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask
	VersionFunc        func() (JavaVersion, error)
	AvailableFunc      func() bool

	Calls []string
}

func NewSuccessfulCompilerMock() *MockJavaCompiler {
	return &MockJavaCompiler{
		NewTaskFunc: func(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask {
			return &MockCompileTask{Result: true}
		},
		AvailableFunc: func() bool { return true },
	}
}

func NewFailingCompilerMock(errMsg string) *MockJavaCompiler {
	return &MockJavaCompiler{
		NewTaskFunc: func(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask {
			if auxOut != nil {
				_, _ = auxOut.Write([]byte(errMsg))
			}
			return &MockCompileTask{Result: false}
		},
		AvailableFunc: func() bool { return true },
	}
}

func (m *MockJavaCompiler) NewFileManager() FileManager {
	m.Calls = append(m.Calls, "NewFileManager")
	if m.NewFileManagerFunc != nil {
		return m.NewFileManagerFunc()
	}
	return NewMockFileManager()
}

func (m *MockJavaCompiler) NewTask(auxOut io.Writer, fm FileManager, diag DiagnosticSink, options []string, classes []string, sourceFiles []string) CompileTask {
	m.Calls = append(m.Calls, "NewTask")
	if m.NewTaskFunc != nil {
		return m.NewTaskFunc(auxOut, fm, diag, options, classes, sourceFiles)
	}
	return &MockCompileTask{Result: true}
}

func (m *MockJavaCompiler) Version() (JavaVersion, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return JavaVersion{Major: 21, Full: "21"}, nil
}

func (m *MockJavaCompiler) IsAvailable() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

// MockJarTool is a func-field test double for JarTool.
type MockJarTool struct {
	CreateFunc    func(args JarArgs) error
	VersionFunc   func() (JavaVersion, error)
	AvailableFunc func() bool
	Calls         []JarArgs
}

func (m *MockJarTool) Create(args JarArgs) error {
	m.Calls = append(m.Calls, args)
	if m.CreateFunc != nil {
		return m.CreateFunc(args)
	}
	return nil
}

func (m *MockJarTool) Version() (JavaVersion, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return JavaVersion{Major: 21, Full: "21"}, nil
}

func (m *MockJarTool) IsAvailable() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

// MockJavaRunner is a func-field test double for JavaRunner.
type MockJavaRunner struct {
	RunFunc       func(args RunArgs) error
	VersionFunc   func() (JavaVersion, error)
	AvailableFunc func() bool
	Calls         []RunArgs
}

func (m *MockJavaRunner) Run(args RunArgs) error {
	m.Calls = append(m.Calls, args)
	if m.RunFunc != nil {
		return m.RunFunc(args)
	}
	return nil
}

func (m *MockJavaRunner) Version() (JavaVersion, error) {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return JavaVersion{Major: 21, Full: "21"}, nil
}

func (m *MockJavaRunner) IsAvailable() bool {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return true
}

// MockToolProvider bundles the three mocks plus a canned DetectJDK
// result, matching the teacher's MockToolProvider.
type MockToolProvider struct {
	Compiler     *MockJavaCompiler
	JarTool      *MockJarTool
	Runner       *MockJavaRunner
	JDKInfo      *JDKInfo
	DetectJDKErr error
}

func NewMockToolProvider() *MockToolProvider {
	return &MockToolProvider{
		Compiler: NewSuccessfulCompilerMock(),
		JarTool:  &MockJarTool{},
		Runner:   &MockJavaRunner{},
		JDKInfo:  &JDKInfo{Version: JavaVersion{Major: 21, Full: "21"}, Home: "/mock/jdk"},
	}
}

func (p *MockToolProvider) GetCompiler() JavaCompiler { return p.Compiler }
func (p *MockToolProvider) GetJarTool() JarTool       { return p.JarTool }
func (p *MockToolProvider) GetRunner() JavaRunner     { return p.Runner }

func (p *MockToolProvider) DetectJDK() (*JDKInfo, error) {
	if p.DetectJDKErr != nil {
		return nil, p.DetectJDKErr
	}
	return p.JDKInfo, nil
}

// CaptureWriter is an io.Writer that records everything written to it.
type CaptureWriter struct {
	buf bytes.Buffer
}

func (w *CaptureWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }
func (w *CaptureWriter) String() string              { return w.buf.String() }

// ErrorWriter always fails, for exercising error paths around auxiliary
// output plumbing.
type ErrorWriter struct{}

func (ErrorWriter) Write(p []byte) (int, error) { return 0, errors.New("simulated write error") }

// ErrorReader always fails, for exercising error paths around stdin
// plumbing.
type ErrorReader struct{}

func (ErrorReader) Read(p []byte) (int, error) { return 0, errors.New("simulated read error") }
