package orchestrate

import (
	"testing"

	"github.com/jsando/jbc/discover"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineProjectTypeAllModuleless(t *testing.T) {
	dirs := []*discover.SourceDirectory{
		mustDir(t, t.TempDir(), "", discover.ReleaseUnset),
	}
	pt, err := DetermineProjectType(dirs, "")
	require.NoError(t, err)
	assert.Equal(t, Classpath, pt)
}

func TestDetermineProjectTypeAllModular(t *testing.T) {
	dirs := []*discover.SourceDirectory{
		mustDir(t, t.TempDir(), "com.example", discover.ReleaseUnset),
	}
	pt, err := DetermineProjectType(dirs, "")
	require.NoError(t, err)
	assert.Equal(t, Modular, pt)
}

func TestDetermineProjectTypeMixedIsFatal(t *testing.T) {
	dirs := []*discover.SourceDirectory{
		mustDir(t, t.TempDir(), "", discover.ReleaseUnset),
		mustDir(t, t.TempDir(), "com.example", discover.ReleaseUnset),
	}
	_, err := DetermineProjectType(dirs, "")
	assert.Error(t, err)
}

func TestDetermineProjectTypeLegacyModuleNameRemapsModuleless(t *testing.T) {
	moduleless := mustDir(t, t.TempDir(), "", discover.ReleaseUnset)
	dirs := []*discover.SourceDirectory{moduleless}

	pt, err := DetermineProjectType(dirs, "com.legacy")
	require.NoError(t, err)
	assert.Equal(t, Modular, pt)
	assert.Equal(t, "com.legacy", moduleless.Module)
}

func TestDetermineProjectTypeLegacyModuleNameConflict(t *testing.T) {
	dirs := []*discover.SourceDirectory{
		mustDir(t, t.TempDir(), "", discover.ReleaseUnset),
		mustDir(t, t.TempDir(), "com.legacy", discover.ReleaseUnset),
	}
	_, err := DetermineProjectType(dirs, "com.legacy")
	assert.Error(t, err)
}
