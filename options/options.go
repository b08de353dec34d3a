// Package options implements an accumulating, validated compiler option
// list with a stable fingerprint used by the incremental build engine to
// detect option changes between builds.
package options

import (
	"fmt"
	"hash/fnv"
)

// Checker validates a single option token (and its following value, if
// any) the way a real compiler's option-checker would. A compiler
// implementation supplies this; Options itself knows nothing about which
// flags are valid.
type Checker interface {
	// IsSupportedOption reports whether the given flag is recognized.
	IsSupportedOption(flag string) bool
}

// Options is an append-only sequence of string tokens, the flattened form
// of everything that will be handed to a compiler invocation (-d, -cp,
// --release, etc, plus each individual source file is NOT part of this
// list - Options only models flags).
type Options struct {
	tokens []string
}

// New returns an empty Options list.
func New() *Options {
	return &Options{}
}

// Append adds a token unconditionally, with no validation. Use for values
// that follow a flag, or for flags known to be correct by construction.
func (o *Options) Append(tokens ...string) {
	o.tokens = append(o.tokens, tokens...)
}

// AppendChecked validates flag against checker before appending it (and
// any trailing value tokens). Returns an error naming the unsupported
// flag rather than silently dropping it.
func (o *Options) AppendChecked(checker Checker, flag string, value ...string) error {
	if checker != nil && !checker.IsSupportedOption(flag) {
		return fmt.Errorf("option %q is not supported by this compiler", flag)
	}
	o.tokens = append(o.tokens, flag)
	o.tokens = append(o.tokens, value...)
	return nil
}

// Tokens returns the final token sequence, in append order. The returned
// slice must not be mutated by the caller.
func (o *Options) Tokens() []string {
	return o.tokens
}

// Fingerprint returns a stable 32-bit hash of the final token sequence.
// Stable means: given the same token sequence, on the same process
// architecture, this always returns the same value - it is persisted in
// the incremental cache and compared across build invocations.
func (o *Options) Fingerprint() uint32 {
	h := fnv.New32a()
	for _, tok := range o.tokens {
		_, _ = h.Write([]byte(tok))
		_, _ = h.Write([]byte{0}) // separator so "ab","c" != "a","bc"
	}
	return h.Sum32()
}

// Len reports the number of tokens appended so far.
func (o *Options) Len() int {
	return len(o.tokens)
}
