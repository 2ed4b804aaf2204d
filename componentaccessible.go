package ecsgo

import (
	"fmt"
	"unsafe"
)

// Get returns a pointer to e's value of this component, or an error if e
// is invalid or does not carry it. The pointer is only valid until the
// next structural mutation touching e's archetype.
func (h Handle[T]) Get(w *World, e Entity) (*T, error) {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return nil, err
	}
	d := h.describe(w)
	switch d.kind {
	case KindChunk:
		cl, ok := c.owner.layout.chunkComponents[d.id]
		if !ok {
			return nil, MissingComponentError{Component: d.name}
		}
		return (*T)(unsafe.Pointer(&c.block.Payload[cl.offset])), nil
	default:
		cl, ok := c.owner.layout.generic[d.id]
		if !ok {
			return nil, MissingComponentError{Component: d.name}
		}
		if cl.isSoA {
			return nil, fmt.Errorf("ecsgo: component %s is SoA; use ViewSoA", d.name)
		}
		ptr := unsafe.Pointer(&c.block.Payload[cl.offset+uintptr(row)*cl.elemSize])
		return (*T)(ptr), nil
	}
}

// Set writes v into e's value of this component, bumping the owning
// chunk's version counter for this column. Returns MissingComponentError
// if e does not carry the component.
func (h Handle[T]) Set(w *World, e Entity, v T) error {
	ptr, err := h.Get(w, e)
	if err != nil {
		return err
	}
	*ptr = v
	c, _, _ := w.registry.locate(e)
	d := h.describe(w)
	w.bumpVersion()
	c.bumpVersion(d.id, w.worldVersion)
	return nil
}

// Has reports whether e currently carries this component.
func (h Handle[T]) Has(w *World, e Entity) bool {
	c, _, err := w.registry.locate(e)
	if err != nil {
		return false
	}
	d := h.describe(w)
	if d.kind == KindChunk {
		_, ok := c.owner.layout.chunkComponents[d.id]
		return ok
	}
	_, ok := c.owner.layout.generic[d.id]
	return ok
}

// View returns a read-only slice over this component's live rows in cv's
// chunk, in row order matching cv.Entities().
func (h Handle[T]) View(w *World, cv *ChunkView) []T {
	d := h.describe(w)
	s, _ := columnSliceGeneric[T](cv.c, d.id)
	return s
}

// ViewMut returns a mutable slice over this component's live rows in cv's
// chunk, bumping the chunk's version counter for this column.
func (h Handle[T]) ViewMut(w *World, cv *ChunkView) []T {
	d := h.describe(w)
	s, _ := columnSliceGeneric[T](cv.c, d.id)
	w.bumpVersion()
	cv.c.bumpVersion(d.id, w.worldVersion)
	return s
}

// columnSliceGeneric views a chunk's AoS column for id as a live-row slice
// of T, using unsafe.Slice over the column's byte range the way
// reflect.MakeSlice-backed columns do in the wider ecosystem -- here the
// backing array is the chunk's own 16 KiB block rather than a
// freshly-allocated slice.
func columnSliceGeneric[T any](c *chunk, id ComponentID) ([]T, bool) {
	cl, ok := c.owner.layout.generic[id]
	if !ok || cl.isSoA {
		return nil, false
	}
	ptr := (*T)(unsafe.Pointer(&c.block.Payload[cl.offset]))
	full := unsafe.Slice(ptr, c.owner.capacity)
	return full[:c.size], true
}

// SoAView exposes a Structure-of-Arrays column as three parallel slices of
// field type F, keeping the same "slice of live rows" shape View/ViewMut
// return for the AoS case.
type SoAView[F any] struct {
	A, B, C []F
}

// ViewSoA returns the three parallel sub-arrays backing an SoA component's
// column in cv's chunk. F must be the component's field type (e.g. the
// element type of a 3-field vector component).
func ViewSoA[T any, F any](h Handle[T], w *World, cv *ChunkView) SoAView[F] {
	d := h.describe(w)
	cl, ok := cv.c.owner.layout.generic[d.id]
	if !ok || !cl.isSoA {
		return SoAView[F]{}
	}
	var zero F
	fieldSize := unsafe.Sizeof(zero)
	capc := uintptr(cv.c.owner.capacity)
	mk := func(fieldIdx uintptr) []F {
		ptr := (*F)(unsafe.Pointer(&cv.c.block.Payload[cl.offset+fieldIdx*capc*fieldSize]))
		return unsafe.Slice(ptr, cv.c.owner.capacity)[:cv.c.size]
	}
	return SoAView[F]{A: mk(0), B: mk(1), C: mk(2)}
}
