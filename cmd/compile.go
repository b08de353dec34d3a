/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jsando/jbc/buildlog"
	"github.com/jsando/jbc/compiler"
	"github.com/jsando/jbc/config"
	"github.com/jsando/jbc/discover"
	"github.com/jsando/jbc/incremental"
	"github.com/jsando/jbc/options"
	"github.com/jsando/jbc/orchestrate"
	"github.com/spf13/cobra"
)

var compileDebugArgsDir string

// CompileCmd drives a full build from a configuration file: discovery,
// project-type validation, per-release grouping, incremental pruning,
// and compilation, the end-to-end sequence spec.md §1 describes,
// grounded on the teacher's cmd/build.go Run function generalized from
// "load one jb-module.json and call builder.Build" to "load one
// Config and call orchestrate.ToolExecutor.Compile over every release
// unit".
var CompileCmd = &cobra.Command{
	Use:   "compile CONFIG.json",
	Short: "Compile the sources described by a build configuration file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCompile(args[0]); err != nil {
			buildlog.Fatal("BUILD FAILED: %s\n", err)
		}
	},
}

func init() {
	CompileCmd.Flags().StringVar(&compileDebugArgsDir, "debug-args-dir", "", "write an @argsfile-shaped debug dump for each release unit into this directory")
}

func runCompile(configPath string) error {
	log := buildlog.NewBuildLog()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.LegacyMultiReleaseScan {
		return fmt.Errorf("legacy_multi_release_scan is a named but unimplemented compatibility mode (see DESIGN.md); rerun without it")
	}

	dirs, err := cfg.ToSourceDirectories(".java", ".class")
	if err != nil {
		return fmt.Errorf("resolving source roots: %w", err)
	}

	filesByDir := map[*discover.SourceDirectory][]*discover.SourceFile{}
	filter := discover.NewPathFilter()
	for _, dir := range dirs {
		files, err := filter.Walk(dir)
		if err != nil {
			return fmt.Errorf("discovering sources under %s: %w", dir.Root, err)
		}
		filesByDir[dir] = files
	}

	projectType, err := orchestrate.DetermineProjectType(dirs, cfg.LegacyModuleName)
	if err != nil {
		return fmt.Errorf("determining project type: %w", err)
	}

	units, err := orchestrate.GroupSourcesForRelease(dirs, filesByDir)
	if err != nil {
		return fmt.Errorf("grouping sources by release: %w", err)
	}

	deps, err := cfg.ToDependencyMap()
	if err != nil {
		return fmt.Errorf("parsing dependencies: %w", err)
	}

	policies, err := incremental.NewPolicySet(cfg.IncrementalPolicy...)
	if err != nil {
		return fmt.Errorf("incremental policy: %w", err)
	}

	opts := options.New()
	opts.Append(cfg.CompilerOptions...)
	fingerprint := opts.Fingerprint()

	cache, cacheReason, err := loadCacheIfPresent(cfg.CacheFile)
	if err != nil {
		return fmt.Errorf("loading incremental cache: %w", err)
	}

	buildEpoch := time.Now().UnixMilli()
	allFilesByUnit := make([][]*discover.SourceFile, len(units))
	anyUnitNeedsCompile := false
	for i, unit := range units {
		allFilesByUnit[i] = unit.Files // ApplyIncrementalBuild prunes unit.Files in place; keep the full list for the cache write
		dependencyPaths := flattenDependencyPaths(deps)
		shouldCompile, reason, err := orchestrate.ApplyIncrementalBuild(cache, policies, unit, dependencyPaths, cfg.DependencyCheckExts, fingerprint, buildEpoch, ".class", cfg.StaleMillis)
		if err != nil {
			return fmt.Errorf("applying incremental build policy: %w", err)
		}
		if cacheReason != "" {
			reason = cacheReason
		}
		if shouldCompile {
			anyUnitNeedsCompile = true
			log.TaskStart(fmt.Sprintf("release %v", unit.Release)).Info(reason)
		}
	}
	if !anyUnitNeedsCompile {
		log.BuildFinish()
		return nil
	}

	provider := compiler.NewDefaultToolProvider()
	executor := orchestrate.NewToolExecutor(provider.GetCompiler(), projectType, cfg.OutputDir, deps)
	executor.PreviousPhaseOut = cfg.PreviousPhaseOutput

	if compileDebugArgsDir != "" {
		if err := os.MkdirAll(compileDebugArgsDir, 0o755); err != nil {
			return fmt.Errorf("creating debug-args-dir: %w", err)
		}
		for i, unit := range units {
			path := filepath.Join(compileDebugArgsDir, fmt.Sprintf("unit-%d.args", i))
			if err := orchestrate.WriteDebugArgsFile(path, unit, cfg.CompilerOptions); err != nil {
				return fmt.Errorf("writing debug args file: %w", err)
			}
		}
	}

	ok, err := executor.Compile(units, cfg.CompilerOptions, os.Stdout, log)
	if err != nil {
		return fmt.Errorf("compiling: %w", err)
	}
	if !ok {
		log.BuildFinish()
		if first := log.FirstError(); first != nil {
			location := first.File
			if first.Line > 0 {
				location = fmt.Sprintf("%s:%d", location, first.Line)
			}
			return fmt.Errorf("compilation failed: %s (%s: %s)", log.Summary(), location, first.Message)
		}
		return fmt.Errorf("compilation failed: %s", log.Summary())
	}

	if err := writeUpdatedCache(cfg.CacheFile, allFilesByUnit, fingerprint, buildEpoch); err != nil {
		return fmt.Errorf("writing incremental cache: %w", err)
	}

	log.BuildFinish()
	return nil
}

// loadCacheIfPresent loads the incremental cache at path, if any. A
// corrupt cache is treated the same as a missing one (triggering a
// full rebuild rather than a fatal error), but its parse error is
// returned as reason so it can be surfaced in the rebuild's log line.
func loadCacheIfPresent(path string) (cache *incremental.Cache, reason string, err error) {
	if path == "" {
		return nil, "", nil
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return nil, "", nil
	}
	cache, err = incremental.Load(path)
	if err != nil {
		var corrupt *incremental.CorruptError
		if errors.As(err, &corrupt) {
			return nil, fmt.Sprintf("of a corrupt build cache: %s", corrupt), nil
		}
		return nil, "", err
	}
	return cache, "", nil
}

func flattenDependencyPaths(deps *orchestrate.DependencyMap) []string {
	var paths []string
	for _, key := range deps.Keys() {
		paths = append(paths, deps.Get(key)...)
	}
	return paths
}

// writeUpdatedCache persists every discovered file's current state,
// not just the subset that was actually recompiled this build - an
// up-to-date file still needs a record, or the next build would see
// it as "missing from the cache" and force a full rebuild.
func writeUpdatedCache(path string, allFilesByUnit [][]*discover.SourceFile, fingerprint uint32, buildEpoch int64) error {
	if path == "" {
		return nil
	}
	var entries []incremental.Entry
	for _, files := range allFilesByUnit {
		for _, f := range files {
			entries = append(entries, incremental.Entry{
				Path:          f.Path,
				SourceRoot:    f.Directory.Root,
				OutputRoot:    f.Directory.OutputDir,
				ModTimeMillis: f.LastModifiedMillis,
			})
		}
	}
	return incremental.Write(path, buildEpoch, fingerprint, entries)
}
