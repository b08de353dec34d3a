// Package jarbuild assembles a (possibly multi-release) jar file from
// one or more compiled class-output directories, generalized from the
// teacher's builders/java.go createJar - a single filepath.Walk over
// one classes directory - into a directory-per-release walk that lays
// entries under META-INF/versions/<release> for every release beyond
// the base one.
package jarbuild

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// ReleaseOutput pairs one release number (0 for the base release) with
// the class-output directory compiled for it.
type ReleaseOutput struct {
	Release   int // 0 means the base release, not entered under META-INF/versions
	OutputDir string
}

// Args configures one jar assembly.
type Args struct {
	JarPath   string
	Releases  []ReleaseOutput // must include exactly one Release == 0 entry
	MainClass string
	ClassPath []string // jar names written into the manifest's Class-Path attribute
	JarTime   time.Time
}

// Build writes a jar file to args.JarPath containing the base release's
// classes at the jar root and every other release's classes under
// META-INF/versions/<release>, with Multi-Release: true in the
// manifest when more than one release is present, per spec.md §6.
func Build(args Args) error {
	if args.JarPath == "" {
		return fmt.Errorf("JarPath is required")
	}
	hasBase := false
	for _, r := range args.Releases {
		if r.Release == 0 {
			hasBase = true
		}
	}
	if !hasBase {
		return fmt.Errorf("jarbuild: no base release (Release == 0) output directory supplied")
	}

	jarTime := args.JarTime
	if jarTime.IsZero() {
		jarTime = time.Unix(0, 0).UTC()
	}

	zipFile, err := os.Create(args.JarPath)
	if err != nil {
		return fmt.Errorf("creating jar file: %w", err)
	}
	defer zipFile.Close()

	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	if err := writeManifest(zipWriter, args, jarTime); err != nil {
		return err
	}

	sorted := append([]ReleaseOutput{}, args.Releases...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Release < sorted[j].Release })

	for _, r := range sorted {
		prefix := ""
		if r.Release != 0 {
			prefix = fmt.Sprintf("META-INF/versions/%d/", r.Release)
		}
		if err := addTree(zipWriter, r.OutputDir, prefix, jarTime); err != nil {
			return fmt.Errorf("adding release %d output: %w", r.Release, err)
		}
	}

	return nil
}

func writeManifest(zipWriter *zip.Writer, args Args, jarTime time.Time) error {
	manifest := "Manifest-Version: 1.0\n"
	multiRelease := len(args.Releases) > 1
	if multiRelease {
		manifest += "Multi-Release: true\n"
	}
	if args.MainClass != "" {
		manifest += fmt.Sprintf("Main-Class: %s\n", args.MainClass)
	}
	if len(args.ClassPath) > 0 {
		cp := ""
		for i, entry := range args.ClassPath {
			if i > 0 {
				cp += " "
			}
			cp += entry
		}
		manifest += fmt.Sprintf("Class-Path: %s\n", cp)
	}

	header := &zip.FileHeader{Name: "META-INF/MANIFEST.MF", Method: zip.Deflate, Modified: jarTime}
	w, err := zipWriter.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("writing manifest entry: %w", err)
	}
	_, err = w.Write([]byte(manifest))
	return err
}

// addTree walks basedir and writes every file under it into the zip
// with the given entry-name prefix, the same reproducible-header shape
// (zip.Deflate, fixed Modified time) as the teacher's createJar.
func addTree(zipWriter *zip.Writer, basedir, prefix string, jarTime time.Time) error {
	info, err := os.Stat(basedir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // no sources targeted this release; nothing to add
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", basedir)
	}

	return filepath.Walk(basedir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(basedir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		zipHeader, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		if info.IsDir() {
			relPath += "/"
		}
		zipHeader.Name = prefix + relPath
		zipHeader.Method = zip.Deflate
		zipHeader.Modified = jarTime

		entry, err := zipWriter.CreateHeader(zipHeader)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(entry, file)
		return err
	})
}
