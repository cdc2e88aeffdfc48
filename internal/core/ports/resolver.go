package ports

// InputResolver defines the interface for resolving input files.
//
//go:generate mockgen -destination=mocks/mock_resolver.go -package=mocks -source=resolver.go
type InputResolver interface {
	// ResolveInputs expands the given patterns relative to root into a sorted,
	// de-duplicated list of concrete paths. A pattern matching nothing is an error.
	ResolveInputs(inputs []string, root string) ([]string, error)
}
