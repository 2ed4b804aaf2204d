package ecsgo

import "fmt"

// InvalidEntityError reports a lookup against a stale or out-of-range
// entity handle: the generation recorded in the registry no longer
// matches the handle's, or the id was never allocated.
type InvalidEntityError struct {
	Entity Entity
}

func (e InvalidEntityError) Error() string {
	return fmt.Sprintf("ecsgo: invalid entity %v", e.Entity)
}

// DuplicateComponentError is returned by an Add when the entity's current
// archetype already carries the component being added.
type DuplicateComponentError struct {
	Component string
}

func (e DuplicateComponentError) Error() string {
	return fmt.Sprintf("ecsgo: component already present: %s", e.Component)
}

// MissingComponentError is returned by Remove/Get/Set when the entity's
// archetype does not carry the named component.
type MissingComponentError struct {
	Component string
}

func (e MissingComponentError) Error() string {
	return fmt.Sprintf("ecsgo: component not present: %s", e.Component)
}

// ComponentBudgetExceededError is returned when an archetype's column
// layout cannot fit inside one chunk's payload budget, or an archetype
// would carry more than Config.MaxComponentsPerArchetype component types.
type ComponentBudgetExceededError struct {
	Reason string
}

func (e ComponentBudgetExceededError) Error() string {
	return fmt.Sprintf("ecsgo: component budget exceeded: %s", e.Reason)
}

// StructuralLockHeldError is returned when a structural mutation
// (Add/Remove/Destroy/SetEnabled) targets an archetype currently locked by
// an in-flight query iteration.
type StructuralLockHeldError struct{}

func (e StructuralLockHeldError) Error() string {
	return "ecsgo: structural change attempted while archetype is locked by an active query"
}

// ChunkAllocatorExhaustedError is returned when the chunk allocator cannot
// obtain a new page.
type ChunkAllocatorExhaustedError struct{}

func (e ChunkAllocatorExhaustedError) Error() string {
	return "ecsgo: chunk allocator could not satisfy the allocation"
}

// IdSpaceExhaustedError is returned once the entity registry has assigned
// every id the 20-bit id space allows.
type IdSpaceExhaustedError struct{}

func (e IdSpaceExhaustedError) Error() string {
	return "ecsgo: entity id space exhausted"
}

// ChunkFullError is an internal signal that a chunk has no free row left;
// callers always check capacity before reaching this, so it should never
// escape the package.
type ChunkFullError struct{}

func (e ChunkFullError) Error() string {
	return "ecsgo: chunk has no free row"
}
