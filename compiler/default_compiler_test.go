package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	diagnostics []Diagnostic
}

func (s *recordingSink) Report(d Diagnostic)  { s.diagnostics = append(s.diagnostics, d) }
func (s *recordingSink) SupportsSummary() bool { return false }
func (s *recordingSink) Summary() string       { return "" }

func TestScanCompilerOutputWithColumn(t *testing.T) {
	output := "src/Main.java:10:5: error: cannot find symbol\n"
	sink := &recordingSink{}
	scanCompilerOutput(output, sink)

	require.Len(t, sink.diagnostics, 1)
	d := sink.diagnostics[0]
	assert.Equal(t, "src/Main.java", d.File)
	assert.Equal(t, 10, d.Line)
	assert.Equal(t, 5, d.Column)
	assert.Equal(t, "error", d.Kind)
	assert.Contains(t, d.Message, "cannot find symbol")
}

func TestScanCompilerOutputWithoutColumn(t *testing.T) {
	output := "src/Main.java:22: warning: deprecated API\n"
	sink := &recordingSink{}
	scanCompilerOutput(output, sink)

	require.Len(t, sink.diagnostics, 1)
	d := sink.diagnostics[0]
	assert.Equal(t, "src/Main.java", d.File)
	assert.Equal(t, 22, d.Line)
	assert.Equal(t, "warning", d.Kind)
}

func TestScanCompilerOutputIgnoresUnrelatedLines(t *testing.T) {
	output := "Note: Main.java uses unchecked or unsafe operations.\n"
	sink := &recordingSink{}
	scanCompilerOutput(output, sink)
	assert.Empty(t, sink.diagnostics)
}

func TestDefaultFileManagerFlagsIncludesEachLocation(t *testing.T) {
	fm := &DefaultFileManager{
		moduleSourcePaths: map[string][]string{},
		patchModulePaths:  map[string][]string{},
	}
	require.NoError(t, fm.SetLocationFromPaths(ClassOutput, []string{"out/classes"}))
	require.NoError(t, fm.SetLocationFromPaths(ClassPath, []string{"lib/a.jar", "lib/b.jar"}))
	require.NoError(t, fm.SetLocationForModule(PatchModulePath, "com.example", []string{"extra/src"}))

	flags := fm.Flags()
	assert.Contains(t, flags, "-d")
	assert.Contains(t, flags, "out/classes")
	assert.Contains(t, flags, "-cp")
	assert.Contains(t, flags, "--patch-module")
	assert.Contains(t, flags, "com.example=extra/src")
}

func TestDefaultFileManagerRejectsWrongSetterKind(t *testing.T) {
	fm := &DefaultFileManager{
		moduleSourcePaths: map[string][]string{},
		patchModulePaths:  map[string][]string{},
	}
	err := fm.SetLocationFromPaths(PatchModulePath, []string{"x"})
	assert.Error(t, err)

	err = fm.SetLocationForModule(ClassPath, "m", []string{"x"})
	assert.Error(t, err)
}
