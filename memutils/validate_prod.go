//go:build !debug_mem_utils

package memutils

const (
	// DebugChecks is true when memutils was built with the debug_mem_utils build tag
	DebugChecks bool = false
)

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_mem_utils build tag is present
func DebugValidate(validatable Validatable) {
}

// DebugFailFast panics if err is not nil. Misuse such as freeing an unknown handle is reported as
// an ordinary error in production builds, so this method no-ops unless the debug_mem_utils build tag
// is present.
func DebugFailFast(err error) {
}
