package incremental

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jsando/jbc/discover"
)

// Decision is the outcome of applying a PolicySet to one source
// directory's current file listing against its prior cache.
type Decision struct {
	// FullRebuild is true when every file in ToCompile must be
	// recompiled regardless of individual mtimes - triggered by a
	// changed option fingerprint, a changed dependency, an added or
	// removed source under PolicyAdditions, or a MODULES-policy directory
	// with any change at all. Without PolicyAdditions or PolicyModules a
	// removed source is not detected and ToDelete stays empty.
	FullRebuild bool
	// Reason is a short human-readable explanation, echoed in build
	// logs - e.g. "of added or removed source files".
	Reason string
	// ToCompile lists the files that need compiling, in discovery order.
	ToCompile []*discover.SourceFile
	// ToDelete lists output paths (and any nested-class siblings) that
	// no longer have a corresponding source and should be removed.
	ToDelete []string
}

// nothingToCompile is the Reason used when a Decision compiles zero
// files - the common case on a re-build with no changes.
const nothingToCompile = "all outputs are up to date"

// Apply decides what (if anything) needs to be compiled for one source
// directory's file listing, given a possibly-nil prior cache, the
// policies in force, and the flattened list of dependency paths to
// check under PolicyDependencies.
//
// dependencyPaths is a flattened []string rather than orchestrate's
// typed dependency map so this package never has to import orchestrate.
// dependencyCheckExts restricts which regular files found under those
// paths count as "changed" (typically {.class, .jar}); a nil/empty set
// means every regular file counts. staleGraceMillis is the maximum
// mtime difference from the prior recorded mtime that is still
// tolerated as "unchanged" - guards against filesystems and source
// control checkouts that don't reproduce mtimes exactly.
func Apply(cache *Cache, policies *PolicySet, files []*discover.SourceFile, dependencyPaths []string, dependencyCheckExts []string, optionsFingerprint uint32, buildEpochMillis int64, outputExt string, staleGraceMillis int64) (*Decision, error) {
	if policies.Has(PolicyNone) {
		return &Decision{FullRebuild: true, Reason: "incremental tracking disabled", ToCompile: files}, nil
	}
	if cache == nil {
		return &Decision{FullRebuild: true, Reason: "no prior build cache", ToCompile: files}, nil
	}

	if policies.Has(PolicyOptions) && optionsFingerprint != cache.OptionsFingerprint {
		return &Decision{FullRebuild: true, Reason: "compiler options changed", ToCompile: files}, nil
	}

	if policies.Has(PolicyDependencies) {
		changed, err := anyDependencyNewerThan(dependencyPaths, dependencyCheckExts, cache.BuildEpochMillis)
		if err != nil {
			return nil, err
		}
		if changed {
			return &Decision{FullRebuild: true, Reason: "of a changed dependency", ToCompile: files}, nil
		}
	}

	if policies.Has(PolicyModules) {
		if anyFileChanged(cache, files, staleGraceMillis) || fileSetChanged(cache, files) {
			return &Decision{FullRebuild: true, Reason: "module is out of date", ToCompile: files}, nil
		}
		return &Decision{Reason: nothingToCompile}, nil
	}

	if policies.Has(PolicyAdditions) && fileSetChanged(cache, files) {
		toDelete, err := removedOutputs(cache, files, outputExt)
		if err != nil {
			return nil, err
		}
		return &Decision{FullRebuild: true, Reason: "of added or removed source files", ToCompile: files, ToDelete: toDelete}, nil
	}

	var toCompile []*discover.SourceFile
	for _, f := range files {
		stale, err := fileIsStale(cache, policies, f, staleGraceMillis)
		if err != nil {
			return nil, err
		}
		if stale {
			toCompile = append(toCompile, f)
		}
	}
	if len(toCompile) == 0 {
		return &Decision{Reason: nothingToCompile}, nil
	}
	return &Decision{Reason: "of modified source files", ToCompile: toCompile}, nil
}

func fileIsStale(cache *Cache, policies *PolicySet, f *discover.SourceFile, staleGraceMillis int64) (bool, error) {
	prior, ok := cache.Records[f.Path]
	if !ok {
		return true, nil // new file: not in the prior build at all
	}
	if policies.Has(PolicyClasses) {
		out, err := f.OutputPath()
		if err != nil {
			return false, err
		}
		if _, err := os.Stat(out); os.IsNotExist(err) {
			return true, nil
		}
	}
	if f.IgnoreModification {
		return false, nil
	}
	if policies.Has(PolicySources) && mtimeStale(f.LastModifiedMillis, prior.ModTimeMillis, staleGraceMillis) {
		return true, nil
	}
	return false, nil
}

// mtimeStale reports whether current differs from prior by more than
// graceMillis, in either direction.
func mtimeStale(current, prior, graceMillis int64) bool {
	diff := current - prior
	if diff < 0 {
		diff = -diff
	}
	return diff > graceMillis
}

func anyFileChanged(cache *Cache, files []*discover.SourceFile, staleGraceMillis int64) bool {
	for _, f := range files {
		prior, ok := cache.Records[f.Path]
		if !ok {
			return true
		}
		if !f.IgnoreModification && mtimeStale(f.LastModifiedMillis, prior.ModTimeMillis, staleGraceMillis) {
			return true
		}
	}
	return false
}

func fileSetChanged(cache *Cache, files []*discover.SourceFile) bool {
	if len(files) != len(cache.Records) {
		return true
	}
	for _, f := range files {
		if _, ok := cache.Records[f.Path]; !ok {
			return true
		}
	}
	return false
}

// removedOutputs finds source paths present in cache but absent from
// the current file listing, and returns their output paths plus any
// nested-class siblings ("Outer$Inner.class") when the output extension
// is ".class".
func removedOutputs(cache *Cache, files []*discover.SourceFile, outputExt string) ([]string, error) {
	current := make(map[string]bool, len(files))
	for _, f := range files {
		current[f.Path] = true
	}
	var toDelete []string
	for path, prior := range cache.Records {
		if current[path] {
			continue
		}
		out := prior.ExplicitOutputPath
		if out == "" {
			rel, err := filepath.Rel(prior.SourceRoot, path)
			if err != nil {
				return nil, fmt.Errorf("relativizing removed source %s: %w", path, err)
			}
			ext := filepath.Ext(rel)
			out = filepath.Join(prior.OutputRoot, strings.TrimSuffix(rel, ext)+outputExt)
		}
		toDelete = append(toDelete, out)
		if filepath.Ext(out) == ".class" {
			siblings, err := nestedClassSiblings(out)
			if err != nil {
				return nil, err
			}
			toDelete = append(toDelete, siblings...)
		}
	}
	return toDelete, nil
}

// nestedClassSiblings finds "Outer$Inner.class" files alongside
// outputPath's "Outer.class" that belong to a now-removed top-level
// source file.
func nestedClassSiblings(outputPath string) ([]string, error) {
	dir := filepath.Dir(outputPath)
	base := strings.TrimSuffix(filepath.Base(outputPath), ".class")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning %s for nested-class siblings: %w", dir, err)
	}
	var siblings []string
	prefix := base + "$"
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".class") {
			siblings = append(siblings, filepath.Join(dir, name))
		}
	}
	return siblings, nil
}

func anyDependencyNewerThan(paths []string, exts []string, buildEpochMillis int64) (bool, error) {
	for _, p := range paths {
		newer, err := pathHasFileNewerThan(p, exts, buildEpochMillis)
		if err != nil {
			return false, err
		}
		if newer {
			return true, nil
		}
	}
	return false, nil
}

// pathHasFileNewerThan reports whether path - or, if path is a
// directory, any regular file found under it whose extension is in
// exts - has an mtime at or after buildEpochMillis. A nil/empty exts
// matches every regular file.
func pathHasFileNewerThan(path string, exts []string, buildEpochMillis int64) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stating dependency %s: %w", path, err)
	}
	if !info.IsDir() {
		if !extMatches(path, exts) {
			return false, nil
		}
		return info.ModTime().UnixNano()/int64(1e6) >= buildEpochMillis, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return false, fmt.Errorf("scanning dependency directory %s: %w", path, err)
	}
	for _, e := range entries {
		newer, err := pathHasFileNewerThan(filepath.Join(path, e.Name()), exts, buildEpochMillis)
		if err != nil {
			return false, err
		}
		if newer {
			return true, nil
		}
	}
	return false, nil
}

// extMatches reports whether path's extension is in exts, case
// insensitively. An empty exts set matches everything.
func extMatches(path string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// EntriesFromFiles builds the cache Entry list to persist after a
// successful build: one entry per current file, carrying forward each
// file's directory root/output root so Write can path-compress them.
func EntriesFromFiles(files []*discover.SourceFile) ([]Entry, error) {
	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		entries = append(entries, Entry{
			Path:          f.Path,
			SourceRoot:    f.Directory.Root,
			OutputRoot:    f.Directory.OutputDir,
			ModTimeMillis: f.LastModifiedMillis,
		})
	}
	return entries, nil
}
