package jarbuild

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeClassFile(t *testing.T, dir, relPath, content string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func readZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	entries := map[string]string{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		content := make([]byte, f.UncompressedSize64)
		_, err = rc.Read(content)
		rc.Close()
		_ = err // EOF on exact-size read is fine
		entries[f.Name] = string(content)
	}
	return entries
}

func TestBuildSingleReleaseJar(t *testing.T) {
	base := t.TempDir()
	classes := filepath.Join(base, "classes")
	writeClassFile(t, classes, "com/example/Main.class", "main-bytes")

	jarPath := filepath.Join(base, "out.jar")
	err := Build(Args{
		JarPath:   jarPath,
		Releases:  []ReleaseOutput{{Release: 0, OutputDir: classes}},
		MainClass: "com.example.Main",
	})
	require.NoError(t, err)

	entries := readZipEntries(t, jarPath)
	assert.Equal(t, "main-bytes", entries["com/example/Main.class"])
	assert.Contains(t, entries["META-INF/MANIFEST.MF"], "Main-Class: com.example.Main")
	assert.NotContains(t, entries["META-INF/MANIFEST.MF"], "Multi-Release")
}

func TestBuildMultiReleaseJarLaysOutVersionsDirectory(t *testing.T) {
	base := t.TempDir()
	baseClasses := filepath.Join(base, "classes-base")
	r21Classes := filepath.Join(base, "classes-21")
	writeClassFile(t, baseClasses, "com/example/Main.class", "base-bytes")
	writeClassFile(t, r21Classes, "com/example/Main.class", "r21-bytes")

	jarPath := filepath.Join(base, "out.jar")
	err := Build(Args{
		JarPath: jarPath,
		Releases: []ReleaseOutput{
			{Release: 0, OutputDir: baseClasses},
			{Release: 21, OutputDir: r21Classes},
		},
	})
	require.NoError(t, err)

	entries := readZipEntries(t, jarPath)
	assert.Equal(t, "base-bytes", entries["com/example/Main.class"])
	assert.Equal(t, "r21-bytes", entries["META-INF/versions/21/com/example/Main.class"])
	assert.Contains(t, entries["META-INF/MANIFEST.MF"], "Multi-Release: true")
}

func TestBuildRequiresBaseRelease(t *testing.T) {
	base := t.TempDir()
	err := Build(Args{
		JarPath:  filepath.Join(base, "out.jar"),
		Releases: []ReleaseOutput{{Release: 21, OutputDir: base}},
	})
	assert.Error(t, err)
}

func TestBuildToleratesMissingReleaseOutputDir(t *testing.T) {
	base := t.TempDir()
	baseClasses := filepath.Join(base, "classes-base")
	writeClassFile(t, baseClasses, "A.class", "a")

	err := Build(Args{
		JarPath: filepath.Join(base, "out.jar"),
		Releases: []ReleaseOutput{
			{Release: 0, OutputDir: baseClasses},
			{Release: 21, OutputDir: filepath.Join(base, "never-created")},
		},
	})
	assert.NoError(t, err)
}
