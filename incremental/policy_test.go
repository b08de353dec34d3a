package incremental

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPolicySetEmptyIsError(t *testing.T) {
	_, err := NewPolicySet()
	assert.Error(t, err)
}

func TestNewPolicySetUnknownPolicyIsError(t *testing.T) {
	_, err := NewPolicySet(Policy("BOGUS"))
	assert.Error(t, err)
}

func TestNewPolicySetNoneMustBeAlone(t *testing.T) {
	_, err := NewPolicySet(PolicyNone, PolicyOptions)
	assert.Error(t, err)

	ps, err := NewPolicySet(PolicyNone)
	require.NoError(t, err)
	assert.True(t, ps.Has(PolicyNone))
}

func TestNewPolicySetModulesExcludesFileLevelPolicies(t *testing.T) {
	_, err := NewPolicySet(PolicyModules, PolicySources)
	assert.Error(t, err)
	_, err = NewPolicySet(PolicyModules, PolicyClasses)
	assert.Error(t, err)
	_, err = NewPolicySet(PolicyModules, PolicyAdditions)
	assert.Error(t, err)

	ps, err := NewPolicySet(PolicyModules, PolicyOptions)
	require.NoError(t, err)
	assert.True(t, ps.Has(PolicyModules))
	assert.True(t, ps.Has(PolicyOptions))
}

func TestNewPolicySetAdditionsRequiresSourcesOrClasses(t *testing.T) {
	_, err := NewPolicySet(PolicyAdditions, PolicyOptions)
	assert.Error(t, err)

	ps, err := NewPolicySet(PolicyAdditions, PolicySources)
	require.NoError(t, err)
	assert.True(t, ps.Has(PolicyAdditions))

	ps2, err := NewPolicySet(PolicyAdditions, PolicyClasses)
	require.NoError(t, err)
	assert.True(t, ps2.Has(PolicyAdditions))
}

func TestDefaultPolicySetIsValid(t *testing.T) {
	ps := DefaultPolicySet()
	assert.True(t, ps.Has(PolicyOptions))
	assert.True(t, ps.Has(PolicyDependencies))
	assert.True(t, ps.Has(PolicySources))
	assert.True(t, ps.Has(PolicyClasses))
	assert.True(t, ps.Has(PolicyAdditions))
	assert.False(t, ps.Has(PolicyModules))
	assert.False(t, ps.Has(PolicyNone))
}
