package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jsando/jbc/incremental"
	"github.com/jsando/jbc/orchestrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadResolvesRelativePathsAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	path := writeConfig(t, dir, "build.json", `{
		"source_roots": [{"root": "src"}],
		"output_dir": "out",
		"cache_file": "out/cache.json"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.SourceRoots, 1)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.SourceRoots[0].Root)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.OutputDir)
	assert.Equal(t, filepath.Join(dir, "out", "cache.json"), cfg.CacheFile)
}

func TestLoadRequiresAtLeastOneSourceRoot(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "build.json", `{"source_roots": []}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDefaultsIncrementalPolicyAndIncludes(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "build.json", `{
		"source_roots": [{"root": "src"}]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []incremental.Policy{incremental.PolicySources, incremental.PolicyClasses}, cfg.IncrementalPolicy)
	assert.Equal(t, []string{"**/*.java"}, cfg.SourceRoots[0].Includes)
	assert.Equal(t, []string{".class", ".jar"}, cfg.DependencyCheckExts)
}

func TestLoadRejectsInvalidIncrementalPolicyCombination(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "build.json", `{
		"source_roots": [{"root": "src"}],
		"incremental_policy": ["NONE", "SOURCES"]
	}`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSourceRootInheritsTopLevelOutputDirWhenUnset(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "build.json", `{
		"source_roots": [
			{"root": "src"},
			{"root": "src17", "release": "17", "output_dir": "out17"}
		],
		"output_dir": "out"
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "out"), cfg.SourceRoots[0].OutputDir)
	assert.Equal(t, filepath.Join(dir, "out17"), cfg.SourceRoots[1].OutputDir)
}

func TestToSourceDirectoriesParsesReleases(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	path := writeConfig(t, dir, "build.json", `{
		"source_roots": [
			{"root": "src"},
			{"root": "src", "release": "17"}
		]
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dirs, err := cfg.ToSourceDirectories(".java", ".class")
	require.NoError(t, err)
	require.Len(t, dirs, 2)
	assert.Equal(t, 0, int(dirs[0].TargetRelease))
	assert.Equal(t, 17, int(dirs[1].TargetRelease))
}

func TestParseReleaseRejectsGarbage(t *testing.T) {
	_, err := ParseRelease("latest")
	assert.Error(t, err)
}

func TestToDependencyMapParsesPlainAndModuleScopedKeys(t *testing.T) {
	cfg := &Config{
		Dependencies: map[string][]string{
			"CLASSES":            {"/libs/a.jar", "/libs/b.jar"},
			"PATCH_MODULE:mymod": {"/src/mymod"},
		},
	}

	deps, err := cfg.ToDependencyMap()
	require.NoError(t, err)
	assert.Equal(t, []string{"/libs/a.jar", "/libs/b.jar"}, deps.Get(orchestrate.ClassesPathType()))
	assert.Equal(t, []string{"/src/mymod"}, deps.Get(orchestrate.PatchModulePathType("mymod")))
}

func TestToDependencyMapRejectsPatchModuleWithoutModuleName(t *testing.T) {
	cfg := &Config{Dependencies: map[string][]string{"PATCH_MODULE": {"/x"}}}

	_, err := cfg.ToDependencyMap()
	assert.Error(t, err)
}

func TestToDependencyMapRejectsUnknownKind(t *testing.T) {
	cfg := &Config{Dependencies: map[string][]string{"BOGUS": {"/x"}}}

	_, err := cfg.ToDependencyMap()
	assert.Error(t, err)
}
