package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// DefaultToolProvider hands out forked-process compiler/jar/runner
// implementations backed by one detected JDK, ported from the
// teacher's builder/provider.go DefaultToolProvider.
type DefaultToolProvider struct {
	compiler *DefaultJavaCompiler
	jarTool  *DefaultJarTool
	runner   *DefaultJavaRunner
}

func NewDefaultToolProvider() *DefaultToolProvider {
	return &DefaultToolProvider{
		compiler: NewDefaultJavaCompiler(),
		jarTool:  NewDefaultJarTool(),
		runner:   NewDefaultJavaRunner(),
	}
}

func (p *DefaultToolProvider) GetCompiler() JavaCompiler { return p.compiler }
func (p *DefaultToolProvider) GetJarTool() JarTool       { return p.jarTool }
func (p *DefaultToolProvider) GetRunner() JavaRunner     { return p.runner }

// DetectJDK locates a JDK home directory, checking JAVA_HOME first and
// falling back to whichever javac is on PATH, the same order the
// teacher's DetectJDK uses.
func (p *DefaultToolProvider) DetectJDK() (*JDKInfo, error) {
	if home := os.Getenv("JAVA_HOME"); home != "" {
		if err := isValidJDKHome(home); err == nil {
			return p.jdkInfoFromHome(home)
		}
	}

	javacPath, err := exec.LookPath("javac")
	if err != nil {
		return nil, fmt.Errorf("no JDK found: JAVA_HOME not set and javac not on PATH")
	}
	// javac lives at <home>/bin/javac.
	home := filepath.Dir(filepath.Dir(javacPath))
	if err := isValidJDKHome(home); err != nil {
		return nil, fmt.Errorf("javac found on PATH but %s is not a valid JDK home: %w", home, err)
	}
	return p.jdkInfoFromHome(home)
}

func (p *DefaultToolProvider) jdkInfoFromHome(home string) (*JDKInfo, error) {
	version, err := p.compiler.Version()
	if err != nil {
		return nil, err
	}
	return &JDKInfo{
		Version: version,
		Home:    home,
		Vendor:  version.Vendor,
		Arch:    runtime.GOARCH,
		OS:      runtime.GOOS,
	}, nil
}

// isValidJDKHome checks for the executables and lib directory the
// teacher's isValidJDKHome requires of a real JDK installation.
func isValidJDKHome(home string) error {
	info, err := os.Stat(home)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", home)
	}

	exeSuffix := ""
	if runtime.GOOS == "windows" {
		exeSuffix = ".exe"
	}
	for _, name := range []string{"javac", "java", "jar"} {
		bin := filepath.Join(home, "bin", name+exeSuffix)
		if _, err := os.Stat(bin); err != nil {
			return fmt.Errorf("missing %s", bin)
		}
	}

	lib := filepath.Join(home, "lib")
	if info, err := os.Stat(lib); err != nil || !info.IsDir() {
		return fmt.Errorf("missing lib directory at %s", lib)
	}

	return nil
}

// NormalizePath converts path separators to the OS-native form and
// cleans the result, matching the teacher's NormalizePath helper used
// before handing paths to javac/jar/java subprocesses.
func NormalizePath(path string) string {
	return filepath.Clean(filepath.FromSlash(path))
}

// JoinClassPath joins classpath entries with the platform list
// separator, matching the teacher's JoinClassPath helper.
func JoinClassPath(entries []string) string {
	result := ""
	for i, e := range entries {
		if i > 0 {
			result += string(os.PathListSeparator)
		}
		result += e
	}
	return result
}
