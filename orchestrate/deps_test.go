package orchestrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDependencyMapAppendAndPrepend(t *testing.T) {
	m := NewDependencyMap()
	m.Append(ClassesPathType(), "a.jar", "b.jar")
	m.Prepend(ClassesPathType(), "out/classes")

	assert.Equal(t, []string{"out/classes", "a.jar", "b.jar"}, m.Get(ClassesPathType()))
}

func TestDependencyMapKeysPreserveInsertionOrder(t *testing.T) {
	m := NewDependencyMap()
	m.Append(ModulesPathType(), "m1")
	m.Append(PatchModulePathType("com.example"), "extra")
	m.Append(ClassesPathType(), "a.jar")

	assert.Equal(t, []PathType{ModulesPathType(), PatchModulePathType("com.example"), ClassesPathType()}, m.Keys())
}

func TestDependencyMapSnapshotIsIndependent(t *testing.T) {
	m := NewDependencyMap()
	m.Append(ClassesPathType(), "a.jar")
	snap := m.Snapshot()

	m.Append(ClassesPathType(), "b.jar")

	assert.Equal(t, []string{"a.jar"}, snap.Get(ClassesPathType()))
	assert.Equal(t, []string{"a.jar", "b.jar"}, m.Get(ClassesPathType()))
}

func TestDependencyMapSetAndClear(t *testing.T) {
	m := NewDependencyMap()
	pt := PatchModulePathType("com.example")
	m.Set(pt, []string{"x", "y"})
	assert.Equal(t, []string{"x", "y"}, m.Get(pt))

	m.Clear(pt)
	assert.Empty(t, m.Get(pt))
}
