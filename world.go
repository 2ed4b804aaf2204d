package ecsgo

import (
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/ecsgo/chunkalloc"
	"github.com/TheBitDrifter/mask"
)

// World orchestrates the entity registry, component cache, archetype
// graph, chunk allocator and query cache: the single facade external code
// talks to. It owns all mutable ECS state; nothing here is a process-wide
// global.
type World struct {
	registry         *entityRegistry
	components       *componentCache
	allocator        *chunkalloc.Allocator
	archetypesSlice  []*archetype
	archetypesByMask map[mask.Mask256]*archetype
	rootAddEdge      map[ComponentID]*archetype
	root             *archetype
	queryCache       map[uint64]*compiledQuery
	worldVersion     uint32
}

// NewWorld returns an empty World with just its root (no-component)
// archetype created.
func NewWorld() *World {
	w := &World{
		registry:         newEntityRegistry(),
		components:       newComponentCache(),
		allocator:        chunkalloc.New(),
		archetypesByMask: make(map[mask.Mask256]*archetype),
		rootAddEdge:      make(map[ComponentID]*archetype),
		queryCache:       make(map[uint64]*compiledQuery),
	}
	root, err := newArchetype(0, w.components, nil, nil)
	if err != nil {
		panic(bark.AddTrace(err))
	}
	w.root = root
	w.archetypesSlice = append(w.archetypesSlice, root)
	return w
}

// Version returns the world's mutation counter, bumped on every
// structural or value change.
func (w *World) Version() uint32 { return w.worldVersion }

func (w *World) bumpVersion() { w.worldVersion++ }

// Valid reports whether e refers to a live entity in this World.
func (w *World) Valid(e Entity) bool { return w.registry.valid(e) }

// CreateEntity allocates a new entity with no components, placed in the
// root archetype.
func (w *World) CreateEntity() (Entity, error) {
	e, err := w.registry.alloc()
	if err != nil {
		return 0, err
	}
	c, err := w.root.findOrCreateFreeChunk(w, true)
	if err != nil {
		return 0, err
	}
	row, err := c.addRow(e, w.worldVersion)
	if err != nil {
		return 0, err
	}
	w.registry.setLocation(e, c, row, false)
	w.bumpVersion()
	return e, nil
}

// CreateEntityLike allocates a new entity in src's archetype, copying
// src's component values as the new entity's initial values.
func (w *World) CreateEntityLike(src Entity) (Entity, error) {
	srcChunk, srcRow, err := w.registry.locate(src)
	if err != nil {
		return 0, err
	}
	arch := srcChunk.owner
	dst, err := w.registry.alloc()
	if err != nil {
		return 0, err
	}
	c, err := arch.findOrCreateFreeChunk(w, true)
	if err != nil {
		return 0, err
	}
	row, err := c.addRow(dst, w.worldVersion)
	if err != nil {
		return 0, err
	}
	for _, id := range arch.genericIDs {
		cl := arch.layout.generic[id]
		copyColumnElem(srcChunk, cl, c, cl, srcRow, row)
	}
	w.registry.setLocation(dst, c, row, false)
	w.bumpVersion()
	return dst, nil
}

// Destroy removes e from its archetype and recycles its id. Destroying an
// already-invalid handle is a no-op.
func (w *World) Destroy(e Entity) error {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return nil
	}
	if c.owner.structuralLock > 0 {
		return StructuralLockHeldError{}
	}
	c.destructRow(row)
	// Free the slot while e still validates against its row; after the
	// swap-remove below that row no longer holds e.
	if err := w.registry.free(e); err != nil {
		return err
	}
	c.removeRow(row, func(moved Entity, newRow uint32) {
		w.registry.setLocation(moved, c, newRow, w.registry.slots[moved.Id()].disabled)
	})
	if c.size == 0 {
		c.lifespan = Config.DefaultLifespan
	}
	w.bumpVersion()
	return nil
}

// SetEnabled moves e between its archetype's enabled and disabled chunk
// lists. Setting the state it is already in is a no-op.
func (w *World) SetEnabled(e Entity, enabled bool) error {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return err
	}
	slot := &w.registry.slots[e.Id()]
	if slot.disabled == !enabled {
		return nil
	}
	if c.owner.structuralLock > 0 {
		return StructuralLockHeldError{}
	}
	arch := c.owner
	dst, err := arch.findOrCreateFreeChunk(w, enabled)
	if err != nil {
		return err
	}
	dstRow, err := dst.addRow(e, w.worldVersion)
	if err != nil {
		return err
	}
	for _, id := range arch.genericIDs {
		cl := arch.layout.generic[id]
		copyColumnElem(c, cl, dst, cl, row, dstRow)
	}
	wasDisabled := slot.disabled
	c.removeRow(row, func(moved Entity, newRow uint32) {
		w.registry.setLocation(moved, c, newRow, w.registry.slots[moved.Id()].disabled)
	})
	_ = wasDisabled
	if c.size == 0 {
		c.lifespan = Config.DefaultLifespan
	}
	w.registry.setLocation(e, dst, dstRow, !enabled)
	w.bumpVersion()
	return nil
}

// Query starts a new query against this world.
func (w *World) Query() *QueryBuilder { return newQueryBuilder(w) }

// GC ticks every empty chunk's lifespan countdown, returning emptied
// chunks whose countdown reached zero to the chunk allocator.
func (w *World) GC() {
	for _, a := range w.archetypesSlice {
		a.enabled = w.gcList(a, a.enabled)
		a.disabled = w.gcList(a, a.disabled)
	}
}

func (w *World) gcList(a *archetype, chunks []*chunk) []*chunk {
	kept := chunks[:0]
	for _, c := range chunks {
		if c.size == 0 {
			c.lifespan--
			if c.lifespan <= 0 {
				if err := w.allocator.Free(c.block); err == nil && Config.events.OnChunkFreed != nil {
					Config.events.OnChunkFreed(uint32(a.id))
				}
				continue
			}
		}
		kept = append(kept, c)
	}
	return kept
}

// Flush releases fully-empty chunk-allocator pages back to the Go
// runtime, returning how many were released.
func (w *World) Flush() int { return w.allocator.Flush() }

// --- generic convenience wrappers ---------------------------------------

// Add attaches h's zero-valued component to e.
func Add[T any](w *World, e Entity, h Handle[T]) error {
	d := h.describe(w)
	return w.addComponentByID(e, d.id, h.kind, nil)
}

// AddWithValue attaches h's component to e, initialized to value.
func AddWithValue[T any](w *World, e Entity, h Handle[T], value T) error {
	d := h.describe(w)
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&value)), int(unsafe.Sizeof(value)))
	return w.addComponentByID(e, d.id, h.kind, raw)
}

// Remove detaches h's component from e.
func Remove[T any](w *World, e Entity, h Handle[T]) error {
	d := h.describe(w)
	return w.removeComponentByID(e, d.id)
}

// Get returns a pointer to e's value of h's component.
func Get[T any](w *World, e Entity, h Handle[T]) (*T, error) { return h.Get(w, e) }

// Set writes value into e's value of h's component.
func Set[T any](w *World, e Entity, h Handle[T], value T) error { return h.Set(w, e, value) }

// Has reports whether e carries h's component.
func Has[T any](w *World, e Entity, h Handle[T]) bool { return h.Has(w, e) }

// ComponentIDOf resolves h's dense id in w, registering it if this is the
// first time w has seen the type.
func ComponentIDOf[T any](w *World, h Handle[T]) ComponentID { return h.describe(w).id }

// --- structural mutation core -------------------------------------------

func (w *World) addComponentByID(e Entity, id ComponentID, kind ComponentKind, initial []byte) error {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return err
	}
	src := c.owner
	if src.structuralLock > 0 {
		return StructuralLockHeldError{}
	}
	if hasComponent(src, id) {
		return DuplicateComponentError{Component: w.components.get(id).name}
	}
	tgt, err := w.resolveAddEdge(src, id, kind)
	if err != nil {
		return err
	}
	disabled := w.registry.slots[e.Id()].disabled
	dst, err := tgt.findOrCreateFreeChunk(w, !disabled)
	if err != nil {
		return err
	}
	dstRow, err := dst.addRow(e, w.worldVersion)
	if err != nil {
		return err
	}
	for _, gid := range src.genericIDs {
		copyColumnElem(c, src.layout.generic[gid], dst, tgt.layout.generic[gid], row, dstRow)
	}
	switch kind {
	case KindGeneric:
		if cl, ok := tgt.layout.generic[id]; ok {
			if initial == nil {
				// dstRow may hold bytes left by an earlier swap-removed row.
				initial = make([]byte, cl.elemSize)
			}
			blitColumn(dst, cl, dstRow, initial)
		}
	case KindChunk:
		if cl, ok := tgt.layout.chunkComponents[id]; ok && initial != nil {
			blitChunkComponent(dst, cl, initial)
		}
	}
	c.removeRow(row, func(moved Entity, newRow uint32) {
		w.registry.setLocation(moved, c, newRow, w.registry.slots[moved.Id()].disabled)
	})
	if c.size == 0 {
		c.lifespan = Config.DefaultLifespan
	}
	w.registry.setLocation(e, dst, dstRow, disabled)
	w.bumpVersion()
	return nil
}

func (w *World) removeComponentByID(e Entity, id ComponentID) error {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return err
	}
	src := c.owner
	if src.structuralLock > 0 {
		return StructuralLockHeldError{}
	}
	if !hasComponent(src, id) {
		return MissingComponentError{Component: w.components.get(id).name}
	}
	tgt, err := w.resolveDelEdge(src, id)
	if err != nil {
		return err
	}
	disabled := w.registry.slots[e.Id()].disabled
	dst, err := tgt.findOrCreateFreeChunk(w, !disabled)
	if err != nil {
		return err
	}
	dstRow, err := dst.addRow(e, w.worldVersion)
	if err != nil {
		return err
	}
	for _, gid := range tgt.genericIDs {
		copyColumnElem(c, src.layout.generic[gid], dst, tgt.layout.generic[gid], row, dstRow)
	}
	if cl, ok := src.layout.generic[id]; ok {
		d := w.components.get(id)
		if d.finalizer && !cl.isSoA {
			ptr := unsafe.Pointer(&c.block.Payload[cl.offset+uintptr(row)*cl.elemSize])
			d.finalize(ptr)
		}
	}
	c.removeRow(row, func(moved Entity, newRow uint32) {
		w.registry.setLocation(moved, c, newRow, w.registry.slots[moved.Id()].disabled)
	})
	if c.size == 0 {
		c.lifespan = Config.DefaultLifespan
	}
	w.registry.setLocation(e, dst, dstRow, disabled)
	w.bumpVersion()
	return nil
}

// --- raw entry points for the commandbuffer package ----------------------
//
// CommandBuffer replays its wire-format log against already-resolved
// component ids (a CommandBuffer is bound to one World for its whole
// life), not typed Handle[T] values, since the buffer has long since
// erased T by the time it commits. These are the only entry points that
// accept a bare ComponentID from outside the package.

// ComponentSizeByID returns the registered size in bytes of component id,
// used by the commandbuffer package to know how many payload bytes follow
// a SetComponent record.
func (w *World) ComponentSizeByID(id ComponentID) int {
	return int(w.components.get(id).size)
}

// AddComponentRaw attaches the zero value of component id/kind to e.
func (w *World) AddComponentRaw(e Entity, id ComponentID, kind ComponentKind) error {
	return w.addComponentByID(e, id, kind, nil)
}

// SetComponentRaw writes payload into e's value of component id/kind,
// adding the component first if e does not already carry it.
func (w *World) SetComponentRaw(e Entity, id ComponentID, kind ComponentKind, payload []byte) error {
	c, row, err := w.registry.locate(e)
	if err != nil {
		return err
	}
	if !hasComponent(c.owner, id) {
		return w.addComponentByID(e, id, kind, payload)
	}
	switch kind {
	case KindGeneric:
		cl, ok := c.owner.layout.generic[id]
		if !ok {
			return fmt.Errorf("ecsgo: component %d not generic on this archetype", id)
		}
		blitColumn(c, cl, row, payload)
	case KindChunk:
		cl, ok := c.owner.layout.chunkComponents[id]
		if !ok {
			return fmt.Errorf("ecsgo: component %d not a chunk component on this archetype", id)
		}
		blitChunkComponent(c, cl, payload)
	}
	w.bumpVersion()
	c.bumpVersion(id, w.worldVersion)
	return nil
}

// RemoveComponentRaw detaches component id from e.
func (w *World) RemoveComponentRaw(e Entity, id ComponentID, _ ComponentKind) error {
	return w.removeComponentByID(e, id)
}
