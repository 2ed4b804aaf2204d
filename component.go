package ecsgo

import (
	"reflect"
	"unsafe"

	"github.com/TheBitDrifter/ecsgo/internal/idhash"
)

// ComponentID is the dense id a component type is assigned the first time
// it is seen by a particular World's component cache.
type ComponentID uint32

// ComponentKind distinguishes per-entity (Generic) components, stored one
// slot per row, from per-chunk (Chunk) components, stored once per chunk
// regardless of how many rows it holds.
type ComponentKind uint8

const (
	KindGeneric ComponentKind = iota
	KindChunk
)

// Finalizer is an optional interface a component type can implement to
// run cleanup logic when its value is destroyed: its entity is destroyed,
// or the component itself is removed from the entity. It does not run when
// a row is only relocated (adding or removing another component,
// SetEnabled, or a swap-remove filling a hole). Most component types need
// nothing here: Go's garbage collector already reclaims everything they
// own.
type Finalizer interface {
	ECSFinalize()
}

// SoAComponent is an optional marker a component type implements to
// request Structure-of-Arrays storage: three parallel sub-arrays instead
// of one array of the whole struct. The type must have exactly three
// identically-sized fields for the column layout math to make sense; see
// ViewSoA.
type SoAComponent interface {
	ECSSoA()
}

// componentDescriptor is the per-type layout record the component cache
// hands out. Component kind and size never change after registration, so
// archetypes can hold bare pointers to the descriptors they reference.
type componentDescriptor struct {
	id          ComponentID
	name        string
	typ         reflect.Type
	size        uintptr
	align       uintptr
	isSoA       bool
	kind        ComponentKind
	lookupHash  uint64
	matcherHash uint64
	finalizer   bool
}

func (d *componentDescriptor) finalize(ptr unsafe.Pointer) {
	if !d.finalizer {
		return
	}
	v := reflect.NewAt(d.typ, ptr).Interface().(Finalizer)
	v.ECSFinalize()
}

// Component is implemented by every Handle[T]; it lets World's query
// builder and raw entry points accept component handles without knowing
// their concrete T, resolved against the specific World doing the asking.
type Component interface {
	resolve(w *World) *componentDescriptor
}

// Handle[T] is a component type's reusable accessor. The common pattern
// is a package-level var, created once via NewComponent or
// NewChunkComponent and threaded through every World operation touching
// that type.
type Handle[T any] struct {
	lookupHash uint64
	kind       ComponentKind
}

// NewComponent returns the handle for T as a Generic (per-entity)
// component. Each World registers T the first time the handle is used
// with it. Safe to call more than once for the same T.
func NewComponent[T any]() Handle[T] {
	return newHandle[T](KindGeneric)
}

// NewChunkComponent returns the handle for T as a Chunk (per-chunk
// singleton) component. Each World registers T the first time the handle
// is used with it.
func NewChunkComponent[T any]() Handle[T] {
	return newHandle[T](KindChunk)
}

func newHandle[T any](kind ComponentKind) Handle[T] {
	var zero T
	name := reflect.TypeOf(zero).String()
	return Handle[T]{lookupHash: idhash.FNV64(name), kind: kind}
}

// Kind reports whether this handle names a Generic or Chunk component.
func (h Handle[T]) Kind() ComponentKind { return h.kind }

// LookupHash returns the type-name-derived hash identifying this
// component independent of any particular World's dense id assignment.
func (h Handle[T]) LookupHash() uint64 { return h.lookupHash }

func (h Handle[T]) resolve(w *World) *componentDescriptor { return h.describe(w) }

// describe returns (registering if necessary) this handle's descriptor in
// w's component cache.
func (h Handle[T]) describe(w *World) *componentDescriptor {
	return w.components.getOrRegister(h.lookupHash, h.kind, func() componentDescriptor {
		var zero T
		t := reflect.TypeOf(zero)
		// Checked against *T, not T: ECSFinalize/ECSSoA are commonly
		// implemented with a pointer receiver, whose method set a bare
		// value of T does not include.
		_, isFinalizer := any(&zero).(Finalizer)
		_, isSoA := any(&zero).(SoAComponent)
		return componentDescriptor{
			name:        t.String(),
			typ:         t,
			size:        t.Size(),
			align:       uintptr(t.Align()),
			isSoA:       isSoA,
			kind:        h.kind,
			lookupHash:  h.lookupHash,
			matcherHash: idhash.MatcherBit(h.lookupHash),
			finalizer:   isFinalizer,
		}
	})
}
