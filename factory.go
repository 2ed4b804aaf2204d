package ecsgo

// factory implements the factory pattern for ecsgo's entry points, mirroring
// the package-level singleton the teacher exposes for storage construction.
type factory struct{}

// Factory is the package's global factory instance.
var Factory factory

// NewWorld creates a new, empty World.
func (f factory) NewWorld() *World {
	return NewWorld()
}
