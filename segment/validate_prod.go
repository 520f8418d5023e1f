//go:build !debug_segsim

package segment

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_segsim build tag is present
func DebugValidate(validatable Validatable) {
}
