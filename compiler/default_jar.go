package compiler

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultJarTool assembles jars by invoking the system jar binary,
// ported from the teacher's tools/default_jar.go.
type DefaultJarTool struct {
	jarPath string
	version *JavaVersion
}

func NewDefaultJarTool() *DefaultJarTool {
	return &DefaultJarTool{}
}

func (j *DefaultJarTool) IsAvailable() bool {
	if j.jarPath != "" {
		return true
	}
	path, err := exec.LookPath("jar")
	if err != nil {
		return false
	}
	j.jarPath = path
	return true
}

func (j *DefaultJarTool) Version() (JavaVersion, error) {
	if j.version != nil {
		return *j.version, nil
	}
	if !j.IsAvailable() {
		return JavaVersion{}, fmt.Errorf("jar not found")
	}
	cmd := exec.Command(j.jarPath, "--version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return JavaVersion{}, fmt.Errorf("failed to get jar version: %w", err)
	}
	v := parseJavaVersion(string(output))
	j.version = &v
	return v, nil
}

// Create builds one jar file, mapping JarArgs onto `jar` flags the way
// the teacher's DefaultJarTool.Create does: -c to create, -f for the
// target file, -C plus base dir to control entry paths, -e for the
// main class, an external manifest file when supplied.
func (j *DefaultJarTool) Create(args JarArgs) error {
	if !j.IsAvailable() {
		return fmt.Errorf("jar not found in PATH")
	}
	if args.JarFile == "" {
		return fmt.Errorf("JarArgs.JarFile is required")
	}

	cmdArgs := []string{"-c", "-f", args.JarFile}
	if args.ManifestFile != "" {
		cmdArgs = append(cmdArgs, "-m", args.ManifestFile)
	}
	if args.MainClass != "" {
		cmdArgs = append(cmdArgs, "-e", args.MainClass)
	}

	baseDir := args.BaseDir
	for _, f := range args.Files {
		rel := f
		if baseDir != "" {
			if r, err := filepath.Rel(baseDir, f); err == nil {
				rel = r
			}
		}
		if baseDir != "" {
			cmdArgs = append(cmdArgs, "-C", baseDir, rel)
		} else {
			cmdArgs = append(cmdArgs, rel)
		}
	}

	cmd := exec.Command(j.jarPath, cmdArgs...)
	if args.WorkDir != "" {
		cmd.Dir = args.WorkDir
	}
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("jar create failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
