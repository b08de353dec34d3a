package compiler

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultJavaRunnerIsAvailable(t *testing.T) {
	runner := NewDefaultJavaRunner()
	isAvailable := runner.IsAvailable()

	if _, err := exec.LookPath("java"); err == nil {
		assert.True(t, isAvailable)
		assert.NotEmpty(t, runner.javaPath)
	} else {
		assert.False(t, isAvailable)
	}
}

func TestDefaultJavaRunnerRunRequiresJarOrMainClass(t *testing.T) {
	runner := &DefaultJavaRunner{javaPath: "/mock/java"}
	if _, err := exec.LookPath("java"); err == nil {
		runner.javaPath, _ = exec.LookPath("java")
	}
	err := runner.Run(RunArgs{})
	assert.Error(t, err)
}

func TestDefaultJavaRunnerRunFailsWhenUnavailable(t *testing.T) {
	runner := &DefaultJavaRunner{}
	if _, err := exec.LookPath("java"); err == nil {
		t.Skip("java is on PATH; unavailable path not exercised")
	}
	err := runner.Run(RunArgs{MainClass: "Main"})
	assert.Error(t, err)
}
