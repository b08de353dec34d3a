package incremental

import "fmt"

// Policy names one dimension of staleness this build cares about.
type Policy string

const (
	// PolicyOptions triggers a full rebuild when the compiler option
	// fingerprint differs from the prior build's.
	PolicyOptions Policy = "OPTIONS"
	// PolicyDependencies triggers a full rebuild when any file under a
	// tracked dependency path is newer than the prior build epoch.
	PolicyDependencies Policy = "DEPENDENCIES"
	// PolicySources triggers recompilation of individual files that are
	// new or modified since the prior build.
	PolicySources Policy = "SOURCES"
	// PolicyClasses treats a missing output file as "stale", even when
	// the source itself is unchanged.
	PolicyClasses Policy = "CLASSES"
	// PolicyAdditions triggers a full rebuild when the set of source
	// files has gained or lost members since the prior build - it only
	// makes sense layered on top of SOURCES or CLASSES.
	PolicyAdditions Policy = "ADDITIONS"
	// PolicyModules opts a source directory out of the usual
	// file-by-file comparisons entirely: any change at all forces a full
	// rebuild of that directory's module.
	PolicyModules Policy = "MODULES"
	// PolicyNone disables incremental tracking outright: always rebuild.
	PolicyNone Policy = "NONE"
)

// PolicySet is a validated, de-duplicated combination of policies
// governing one source directory's staleness checks.
type PolicySet struct {
	set map[Policy]bool
}

// NewPolicySet validates and builds a PolicySet from a list of policy
// names, enforcing the mutual-exclusion rules:
//
//   - the list must not be empty
//   - NONE must appear alone
//   - MODULES excludes SOURCES, CLASSES, and ADDITIONS
//   - ADDITIONS requires SOURCES or CLASSES to also be present
func NewPolicySet(policies ...Policy) (*PolicySet, error) {
	if len(policies) == 0 {
		return nil, fmt.Errorf("policy set must not be empty")
	}
	set := make(map[Policy]bool, len(policies))
	for _, p := range policies {
		switch p {
		case PolicyOptions, PolicyDependencies, PolicySources, PolicyClasses, PolicyAdditions, PolicyModules, PolicyNone:
			set[p] = true
		default:
			return nil, fmt.Errorf("unknown policy %q", p)
		}
	}
	if set[PolicyNone] && len(set) > 1 {
		return nil, fmt.Errorf("policy NONE must not be combined with any other policy")
	}
	if set[PolicyModules] && (set[PolicySources] || set[PolicyClasses] || set[PolicyAdditions]) {
		return nil, fmt.Errorf("policy MODULES excludes SOURCES, CLASSES, and ADDITIONS")
	}
	if set[PolicyAdditions] && !set[PolicySources] && !set[PolicyClasses] {
		return nil, fmt.Errorf("policy ADDITIONS requires SOURCES or CLASSES")
	}
	return &PolicySet{set: set}, nil
}

// Has reports whether p is a member of the set.
func (s *PolicySet) Has(p Policy) bool {
	return s.set[p]
}

// DefaultPolicySet is the policy combination used when a source
// directory's configuration does not name one explicitly: track
// options, dependencies, source modifications, missing outputs, and
// additions/removals.
func DefaultPolicySet() *PolicySet {
	s, err := NewPolicySet(PolicyOptions, PolicyDependencies, PolicySources, PolicyClasses, PolicyAdditions)
	if err != nil {
		panic(err) // unreachable: this combination is valid by construction
	}
	return s
}
