package compiler

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultJarToolIsAvailable(t *testing.T) {
	tool := NewDefaultJarTool()
	isAvailable := tool.IsAvailable()

	if _, err := exec.LookPath("jar"); err == nil {
		assert.True(t, isAvailable)
		assert.NotEmpty(t, tool.jarPath)
	} else {
		assert.False(t, isAvailable)
	}
}

func TestDefaultJarToolCreateFailsWithoutJarFile(t *testing.T) {
	tool := &DefaultJarTool{jarPath: "/mock/jar"}
	err := tool.Create(JarArgs{})
	assert.Error(t, err)
}

func TestDefaultJarToolCreateFailsWhenUnavailable(t *testing.T) {
	tool := &DefaultJarTool{}
	if _, err := exec.LookPath("jar"); err == nil {
		t.Skip("jar is on PATH; unavailable path not exercised")
	}
	err := tool.Create(JarArgs{JarFile: "out.jar"})
	assert.Error(t, err)
}
