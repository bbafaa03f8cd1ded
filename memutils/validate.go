package memutils

// Validatable is anything that can check its own internal consistency, such as a BlockMetadata.
// DebugValidate accepts it.
type Validatable interface {
	Validate() error
}
