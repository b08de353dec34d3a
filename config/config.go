// Package config loads a build's JSON configuration snapshot: the set
// of source roots, where to write output, pre-resolved dependency
// paths, and the incremental policy to apply. Grounded on the
// teacher's project/module.go ModuleLoader.GetModule: absolute-path
// resolution up front, JSON-unmarshal into a raw wire struct, then
// defaulting/validation into the struct the rest of the program uses.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jsando/jbc/discover"
	"github.com/jsando/jbc/incremental"
	"github.com/jsando/jbc/orchestrate"
)

// Config is one build's configuration snapshot, read from a JSON file
// on disk.
type Config struct {
	SourceRoots         []SourceRootConfig
	OutputDir           string
	Dependencies        map[string][]string // keyed by PathTypeKind, optionally ":module"; see parsePathTypeKey
	IncrementalPolicy   []incremental.Policy
	CacheFile           string
	StaleMillis         int64
	LegacyModuleName    string
	PreviousPhaseOutput string
	CompilerOptions     []string
	DependencyCheckExts []string

	// LegacyMultiReleaseScan opts into the deprecated "multi-release via
	// a separate MOJO execution" compatibility path, which reconstructs
	// a prior release's dependency list by walking its output tree
	// instead of carrying it forward in memory. Off by default; see
	// DESIGN.md's Open Question entry for why this is surfaced as a
	// named, explicitly-unsupported flag rather than implemented.
	LegacyMultiReleaseScan bool
}

// SourceRootConfig describes one configured source root, as read from
// the JSON file before it is turned into a discover.SourceDirectory.
type SourceRootConfig struct {
	Root                string
	Module              string
	Release             string
	OutputDir           string
	Includes            []string
	Excludes            []string
	IncrementalExcludes []string
}

// configFileJSON is the raw wire shape, kept separate from Config so
// defaulting/validation has a clear "before" and "after", the same
// split the teacher draws between ModuleFileJSON and Module.
type configFileJSON struct {
	SourceRoots         []sourceRootFileJSON `json:"source_roots"`
	OutputDir           string               `json:"output_dir"`
	Dependencies        map[string][]string  `json:"dependencies,omitempty"`
	IncrementalPolicy   []string             `json:"incremental_policy,omitempty"`
	CacheFile           string               `json:"cache_file,omitempty"`
	StaleMillis         int64                `json:"stale_millis,omitempty"`
	LegacyModuleName    string               `json:"legacy_module_name,omitempty"`
	PreviousPhaseOutput string               `json:"previous_phase_output,omitempty"`
	CompilerOptions     []string             `json:"compiler_options,omitempty"`
	DependencyCheckExts []string             `json:"dependency_check_exts,omitempty"`
	LegacyMultiReleaseScan bool              `json:"legacy_multi_release_scan,omitempty"`
}

type sourceRootFileJSON struct {
	Root                string   `json:"root"`
	Module              string   `json:"module,omitempty"`
	Release             string   `json:"release,omitempty"`
	OutputDir           string   `json:"output_dir,omitempty"`
	Includes            []string `json:"includes,omitempty"`
	Excludes            []string `json:"excludes,omitempty"`
	IncrementalExcludes []string `json:"incremental_excludes,omitempty"`
}

// Load reads and validates a configuration file. path is resolved to
// an absolute path first, mirroring GetModule's "relative paths are
// confusing once a build moves between working directories" rule, and
// every relative SourceRootConfig.Root is resolved relative to the
// config file's own directory, not the process cwd.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving config path %q: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading config %q: %w", absPath, err)
	}

	var raw configFileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", absPath, err)
	}

	baseDir := filepath.Dir(absPath)
	cfg, err := fromFileJSON(&raw, baseDir)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", absPath, err)
	}
	return cfg, nil
}

func fromFileJSON(raw *configFileJSON, baseDir string) (*Config, error) {
	if len(raw.SourceRoots) == 0 {
		return nil, fmt.Errorf("must declare at least one source root")
	}

	cfg := &Config{
		OutputDir:           resolveRelative(baseDir, raw.OutputDir),
		Dependencies:        raw.Dependencies,
		CacheFile:           resolveRelative(baseDir, raw.CacheFile),
		StaleMillis:         raw.StaleMillis,
		LegacyModuleName:    raw.LegacyModuleName,
		PreviousPhaseOutput: resolveRelative(baseDir, raw.PreviousPhaseOutput),
		CompilerOptions:        defaultSlice(raw.CompilerOptions),
		DependencyCheckExts:    defaultExts(raw.DependencyCheckExts),
		LegacyMultiReleaseScan: raw.LegacyMultiReleaseScan,
	}

	for _, p := range raw.IncrementalPolicy {
		cfg.IncrementalPolicy = append(cfg.IncrementalPolicy, incremental.Policy(p))
	}
	if len(cfg.IncrementalPolicy) == 0 {
		cfg.IncrementalPolicy = []incremental.Policy{incremental.PolicySources, incremental.PolicyClasses}
	}
	if _, err := incremental.NewPolicySet(cfg.IncrementalPolicy...); err != nil {
		return nil, fmt.Errorf("incremental_policy: %w", err)
	}

	for _, r := range raw.SourceRoots {
		if r.Root == "" {
			return nil, fmt.Errorf("source root must declare a root path")
		}
		root := SourceRootConfig{
			Root:                resolveRelative(baseDir, r.Root),
			Module:              r.Module,
			Release:             r.Release,
			OutputDir:           resolveRelative(baseDir, r.OutputDir),
			Includes:            defaultSlice(r.Includes),
			Excludes:            defaultSlice(r.Excludes),
			IncrementalExcludes: defaultSlice(r.IncrementalExcludes),
		}
		if root.OutputDir == "" {
			root.OutputDir = cfg.OutputDir
		}
		if len(root.Includes) == 0 {
			root.Includes = []string{"**/*.java"}
		}
		cfg.SourceRoots = append(cfg.SourceRoots, root)
	}

	return cfg, nil
}

func resolveRelative(baseDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func defaultSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func defaultExts(s []string) []string {
	if len(s) == 0 {
		return []string{".class", ".jar"}
	}
	return s
}

// ParseRelease converts a SourceRootConfig.Release string ("", "8",
// "11", "17", "21", ...) into a discover.Release, matching discover's
// "zero value means unset, sorts last" convention.
func ParseRelease(release string) (discover.Release, error) {
	if release == "" {
		return discover.ReleaseUnset, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(release))
	if err != nil {
		return 0, fmt.Errorf("invalid release %q: %w", release, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("invalid release %q: must be positive", release)
	}
	return discover.Release(n), nil
}

// ToSourceDirectories converts every configured SourceRootConfig into a
// discover.SourceDirectory, resolving each Release string along the
// way.
func (c *Config) ToSourceDirectories(sourceExt, outputExt string) ([]*discover.SourceDirectory, error) {
	dirs := make([]*discover.SourceDirectory, 0, len(c.SourceRoots))
	for _, r := range c.SourceRoots {
		release, err := ParseRelease(r.Release)
		if err != nil {
			return nil, fmt.Errorf("source root %q: %w", r.Root, err)
		}
		dir, err := discover.NewSourceDirectory(r.Root, r.Module, release, r.OutputDir, sourceExt, outputExt, r.Includes, r.Excludes, r.IncrementalExcludes)
		if err != nil {
			return nil, fmt.Errorf("source root %q: %w", r.Root, err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// ToDependencyMap renders the raw Dependencies map (keyed by PathType
// string form, e.g. "CLASSES" or "PATCH_MODULE:mymodule") into an
// orchestrate.DependencyMap, the shape ToolExecutor consumes.
func (c *Config) ToDependencyMap() (*orchestrate.DependencyMap, error) {
	deps := orchestrate.NewDependencyMap()
	for key, paths := range c.Dependencies {
		pt, err := parsePathTypeKey(key)
		if err != nil {
			return nil, fmt.Errorf("dependencies key %q: %w", key, err)
		}
		deps.Append(pt, paths...)
	}
	return deps, nil
}

func parsePathTypeKey(key string) (orchestrate.PathType, error) {
	kind, module, hasModule := strings.Cut(key, ":")
	switch orchestrate.PathTypeKind(kind) {
	case orchestrate.KindClasses:
		return orchestrate.ClassesPathType(), nil
	case orchestrate.KindModules:
		return orchestrate.ModulesPathType(), nil
	case orchestrate.KindPatchModule:
		if !hasModule || module == "" {
			return orchestrate.PathType{}, fmt.Errorf("PATCH_MODULE key requires a module name, e.g. PATCH_MODULE:mymodule")
		}
		return orchestrate.PatchModulePathType(module), nil
	case orchestrate.KindAnnotationProcessorPath:
		return orchestrate.PathType{Kind: orchestrate.KindAnnotationProcessorPath}, nil
	case orchestrate.KindAnnotationProcessorModulePath:
		return orchestrate.PathType{Kind: orchestrate.KindAnnotationProcessorModulePath}, nil
	case orchestrate.KindSourcePath:
		return orchestrate.PathType{Kind: orchestrate.KindSourcePath, Module: module}, nil
	default:
		return orchestrate.PathType{}, fmt.Errorf("unknown dependency kind %q", kind)
	}
}
