package memutils

// Validatable is used by the DebugValidate method to allow it to act upon
// all types with a Validate method
type Validatable interface {
	Validate() error
}

const (
	// UninitializedFillPattern is written across a chunk's elements when it is allocated, freed, or
	// vacated by a relocation, so that stale data is easy to recognize. It is the byte-wise
	// equivalent of filling every element with -1.
	UninitializedFillPattern uint8 = 0xFF
)
