package incremental

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsando/jbc/discover"
)

func mustSourceDir(t *testing.T, root, outDir string) *discover.SourceDirectory {
	t.Helper()
	dir, err := discover.NewSourceDirectory(root, "", discover.ReleaseUnset, outDir, ".java", ".class",
		[]string{"**/*.java"}, nil, nil)
	require.NoError(t, err)
	return dir
}

func TestApplyFirstBuildCompilesEverything(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
		{Directory: dir, Path: filepath.Join(root, "B.java"), LastModifiedMillis: 200},
		{Directory: dir, Path: filepath.Join(root, "C.java"), LastModifiedMillis: 300},
	}

	decision, err := Apply(nil, DefaultPolicySet(), files, nil, nil, 0, 0, ".class", 0)
	require.NoError(t, err)
	assert.True(t, decision.FullRebuild)
	assert.Len(t, decision.ToCompile, 3)
}

func TestApplyUnchangedRebuildCompilesNothing(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
		{Directory: dir, Path: filepath.Join(root, "B.java"), LastModifiedMillis: 200},
	}
	// CLASSES policy checks for output existence, so the outputs must be
	// present on disk for this to count as "up to date".
	for _, f := range files {
		outPath, err := f.OutputPath()
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
		require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))
	}

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	decision, err := Apply(cache, DefaultPolicySet(), files, nil, nil, 7, 50, ".class", 0)
	require.NoError(t, err)
	assert.False(t, decision.FullRebuild)
	assert.Empty(t, decision.ToCompile)
	assert.Equal(t, nothingToCompile, decision.Reason)
}

func TestApplyOneModifiedFileCompilesOnlyThatFile(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
		{Directory: dir, Path: filepath.Join(root, "B.java"), LastModifiedMillis: 200},
	}
	for _, f := range files {
		outPath, err := f.OutputPath()
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
		require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))
	}
	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	// B.java was touched after the prior build.
	files[1].LastModifiedMillis = 9999

	decision, err := Apply(cache, DefaultPolicySet(), files, nil, nil, 7, 50, ".class", 0)
	require.NoError(t, err)
	assert.False(t, decision.FullRebuild)
	require.Len(t, decision.ToCompile, 1)
	assert.Equal(t, filepath.Join(root, "B.java"), decision.ToCompile[0].Path)
}

func TestApplyRemovedFileTriggersFullRebuildAndDeletesOutputs(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	allFiles := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
		{Directory: dir, Path: filepath.Join(root, "B.java"), LastModifiedMillis: 200},
	}
	for _, f := range allFiles {
		outPath, err := f.OutputPath()
		require.NoError(t, err)
		require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
		require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))
	}
	// B.java compiled to a nested class too, e.g. an inner class.
	nestedClass := filepath.Join(out, "B$Inner.class")
	require.NoError(t, os.WriteFile(nestedClass, []byte("nested"), 0o644))

	entries, err := EntriesFromFiles(allFiles)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	// B.java was deleted from disk; only A.java remains in this build.
	remaining := allFiles[:1]

	decision, err := Apply(cache, DefaultPolicySet(), remaining, nil, nil, 7, 50, ".class", 0)
	require.NoError(t, err)
	assert.True(t, decision.FullRebuild)
	assert.Equal(t, "of added or removed source files", decision.Reason)
	assert.Contains(t, decision.ToDelete, filepath.Join(out, "B.class"))
	assert.Contains(t, decision.ToDelete, nestedClass)
}

func TestApplyDependenciesChangedTriggersFullRebuild(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
	}
	outPath, err := files[0].OutputPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	depJar := filepath.Join(root, "dep.jar")
	require.NoError(t, os.WriteFile(depJar, []byte("jar"), 0o644))

	decision, err := Apply(cache, DefaultPolicySet(), files, []string{depJar}, nil, 7, 50, ".class", 0)
	require.NoError(t, err)
	assert.True(t, decision.FullRebuild)
	assert.Equal(t, "of a changed dependency", decision.Reason)
}

func TestApplyOptionsChangedTriggersFullRebuild(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
	}
	outPath, err := files[0].OutputPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	decision, err := Apply(cache, DefaultPolicySet(), files, nil, nil, 999, 50, ".class", 0)
	require.NoError(t, err)
	assert.True(t, decision.FullRebuild)
	assert.Equal(t, "compiler options changed", decision.Reason)
}

func TestApplyMtimeWithinStaleGraceWindowCompilesNothing(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 1000},
	}
	outPath, err := files[0].OutputPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	// t1 > t0, but within the caller-supplied grace window.
	files[0].LastModifiedMillis = 1500

	decision, err := Apply(cache, DefaultPolicySet(), files, nil, nil, 7, 50, ".class", 1000)
	require.NoError(t, err)
	assert.False(t, decision.FullRebuild)
	assert.Empty(t, decision.ToCompile)
	assert.Equal(t, nothingToCompile, decision.Reason)
}

func TestApplyMtimeBeyondStaleGraceWindowCompilesFile(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 1000},
	}
	outPath, err := files[0].OutputPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	// t1 > t0 + stale-window.
	files[0].LastModifiedMillis = 3000

	decision, err := Apply(cache, DefaultPolicySet(), files, nil, nil, 7, 50, ".class", 1000)
	require.NoError(t, err)
	assert.False(t, decision.FullRebuild)
	require.Len(t, decision.ToCompile, 1)
}

func TestApplyDependencyExtensionFilterIgnoresNonMatchingFiles(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "out")
	dir := mustSourceDir(t, root, out)
	files := []*discover.SourceFile{
		{Directory: dir, Path: filepath.Join(root, "A.java"), LastModifiedMillis: 100},
	}
	outPath, err := files[0].OutputPath()
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("classfile"), 0o644))

	entries, err := EntriesFromFiles(files)
	require.NoError(t, err)
	cachePath := filepath.Join(root, "build.cache")
	require.NoError(t, Write(cachePath, 50, 7, entries))
	cache, err := Load(cachePath)
	require.NoError(t, err)

	// A newly-touched README alongside the dependency jar should not
	// count as a dependency change when the check is scoped to .jar.
	readme := filepath.Join(root, "README.txt")
	require.NoError(t, os.WriteFile(readme, []byte("notes"), 0o644))

	decision, err := Apply(cache, DefaultPolicySet(), files, []string{root}, []string{".jar"}, 7, 50, ".class", 0)
	require.NoError(t, err)
	assert.False(t, decision.FullRebuild)
	assert.Equal(t, nothingToCompile, decision.Reason)
}
