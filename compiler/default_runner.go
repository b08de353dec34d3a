package compiler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// DefaultJavaRunner launches a compiled program via the system java
// binary, ported from the teacher's tools/default_runner.go.
type DefaultJavaRunner struct {
	javaPath string
	version  *JavaVersion
}

func NewDefaultJavaRunner() *DefaultJavaRunner {
	return &DefaultJavaRunner{}
}

func (r *DefaultJavaRunner) IsAvailable() bool {
	if r.javaPath != "" {
		return true
	}
	path, err := exec.LookPath("java")
	if err != nil {
		return false
	}
	r.javaPath = path
	return true
}

func (r *DefaultJavaRunner) Version() (JavaVersion, error) {
	if r.version != nil {
		return *r.version, nil
	}
	if !r.IsAvailable() {
		return JavaVersion{}, fmt.Errorf("java not found")
	}
	cmd := exec.Command(r.javaPath, "-version")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return JavaVersion{}, fmt.Errorf("failed to get java version: %w", err)
	}
	v := parseJavaVersion(string(output))
	r.version = &v
	return v, nil
}

func (r *DefaultJavaRunner) Run(args RunArgs) error {
	return r.RunWithTimeout(args, 0)
}

// RunWithTimeout mirrors Run but cancels the process after timeout if
// positive, mirroring the teacher's two-entrypoint shape.
func (r *DefaultJavaRunner) RunWithTimeout(args RunArgs, timeout time.Duration) error {
	if !r.IsAvailable() {
		return fmt.Errorf("java not found in PATH")
	}

	var jvmArgs []string
	jvmArgs = append(jvmArgs, args.JvmArgs...)
	if args.ClassPath != "" {
		jvmArgs = append(jvmArgs, "-cp", args.ClassPath)
	}
	if args.JarFile != "" {
		jvmArgs = append(jvmArgs, "-jar", args.JarFile)
	} else if args.MainClass != "" {
		jvmArgs = append(jvmArgs, args.MainClass)
	} else {
		return fmt.Errorf("RunArgs requires either JarFile or MainClass")
	}
	jvmArgs = append(jvmArgs, args.ProgramArgs...)

	var cmd *exec.Cmd
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		cmd = exec.CommandContext(ctx, r.javaPath, jvmArgs...)
	} else {
		cmd = exec.Command(r.javaPath, jvmArgs...)
	}

	if args.WorkDir != "" {
		cmd.Dir = args.WorkDir
	}
	if len(args.Env) > 0 {
		cmd.Env = append(os.Environ(), args.Env...)
	}
	if args.Stdin != nil {
		cmd.Stdin = args.Stdin
	}
	cmd.Stdout = args.Stdout
	cmd.Stderr = args.Stderr

	return cmd.Run()
}
