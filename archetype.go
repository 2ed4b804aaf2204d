package ecsgo

import (
	"sort"

	"github.com/TheBitDrifter/ecsgo/chunkalloc"
	"github.com/TheBitDrifter/ecsgo/internal/idhash"
)

type archetypeID uint32

const (
	reservedTail = 128
	soaAlign     = 16
)

// columnLayout describes where one component's column sits inside a
// chunk's payload: a single byte offset for AoS columns, or the base of
// three equal-width sub-arrays for SoA columns (see computeLayout).
type columnLayout struct {
	offset   uintptr
	elemSize uintptr
	isSoA    bool
}

type archetypeLayout struct {
	entityOffset    uintptr
	generic         map[ComponentID]columnLayout
	chunkComponents map[ComponentID]columnLayout
}

// archetype is the equivalence class of every entity sharing one
// component signature: a sorted list of generic ids plus a sorted list of
// chunk ids. Archetypes are created once and never destroyed or moved;
// pointers to them stay valid for the lifetime of their World.
type archetype struct {
	id                 archetypeID
	cache              *componentCache
	genericIDs         []ComponentID
	chunkIDs           []ComponentID
	lookupHash         uint64
	matcherHashGeneric uint64
	matcherHashChunk   uint64
	capacity           uint32
	layout             archetypeLayout

	enabled  []*chunk
	disabled []*chunk

	addEdge map[ComponentID]*archetype
	delEdge map[ComponentID]*archetype

	structuralLock int32
}

func newArchetype(id archetypeID, cache *componentCache, genericIDs, chunkIDs []ComponentID) (*archetype, error) {
	gIDs := append([]ComponentID(nil), genericIDs...)
	cIDs := append([]ComponentID(nil), chunkIDs...)
	sort.Slice(gIDs, func(i, j int) bool { return gIDs[i] < gIDs[j] })
	sort.Slice(cIDs, func(i, j int) bool { return cIDs[i] < cIDs[j] })

	if len(gIDs)+len(cIDs) > Config.MaxComponentsPerArchetype {
		return nil, ComponentBudgetExceededError{Reason: "archetype would carry too many component types"}
	}

	layout, capacity, err := computeLayout(cache, gIDs, cIDs)
	if err != nil {
		return nil, err
	}

	var lookupHash, mGeneric, mChunk uint64
	for _, id := range gIDs {
		d := cache.get(id)
		lookupHash = idhash.Combine(lookupHash, d.lookupHash)
		mGeneric |= d.matcherHash
	}
	for _, id := range cIDs {
		d := cache.get(id)
		lookupHash = idhash.Combine(lookupHash, d.lookupHash)
		mChunk |= d.matcherHash
	}

	return &archetype{
		id:                 id,
		cache:              cache,
		genericIDs:         gIDs,
		chunkIDs:           cIDs,
		lookupHash:         lookupHash,
		matcherHashGeneric: mGeneric,
		matcherHashChunk:   mChunk,
		capacity:           capacity,
		layout:             layout,
		addEdge:            make(map[ComponentID]*archetype),
		delEdge:            make(map[ComponentID]*archetype),
	}, nil
}

// allComponentIDs returns this archetype's generic and chunk component ids
// merged into one sorted slice, for query membership checks that don't
// care which kind a component is.
func (a *archetype) allComponentIDs() []ComponentID {
	out := make([]ComponentID, 0, len(a.genericIDs)+len(a.chunkIDs))
	out = append(out, a.genericIDs...)
	out = append(out, a.chunkIDs...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func hasComponent(a *archetype, id ComponentID) bool {
	if _, ok := a.layout.generic[id]; ok {
		return true
	}
	_, ok := a.layout.chunkComponents[id]
	return ok
}

// findOrCreateFreeChunk returns the chunk new rows should land in: the
// last chunk in the enabled/disabled list if it has room (only the last
// chunk can be non-full by construction), else a freshly allocated one.
func (a *archetype) findOrCreateFreeChunk(w *World, enabled bool) (*chunk, error) {
	list := &a.enabled
	if !enabled {
		list = &a.disabled
	}
	if n := len(*list); n > 0 {
		if last := (*list)[n-1]; !last.full() {
			return last, nil
		}
	}
	block, err := w.allocator.Allocate()
	if err != nil {
		return nil, ChunkAllocatorExhaustedError{}
	}
	c := newChunk(a, block)
	c.indexInArchetype = len(*list)
	c.disabled = !enabled
	*list = append(*list, c)
	if Config.events.OnChunkCreated != nil {
		Config.events.OnChunkCreated(uint32(a.id))
	}
	return c, nil
}

// computeLayout lays out the entity-id column and every generic/chunk
// component column inside one chunk's payload budget, returning the
// resulting per-row capacity.
func computeLayout(cache *componentCache, gIDs, cIDs []ComponentID) (archetypeLayout, uint32, error) {
	layout := archetypeLayout{
		generic:         make(map[ComponentID]columnLayout, len(gIDs)),
		chunkComponents: make(map[ComponentID]columnLayout, len(cIDs)),
	}

	// Chunk-components are per-chunk singletons: their cost is independent
	// of capacity, so lay them out first and subtract their total from the
	// budget before solving for capacity.
	var chunkBytes uintptr
	offset := uintptr(0)
	for _, id := range cIDs {
		d := cache.get(id)
		align := d.align
		if d.isSoA {
			align = soaAlign
		}
		offset = alignUp(offset, align)
		layout.chunkComponents[id] = columnLayout{offset: offset, elemSize: d.size, isSoA: d.isSoA}
		offset += d.size
		chunkBytes = offset
	}

	budget := uintptr(chunkalloc.PayloadSize) - reservedTail - chunkBytes
	if int(budget) < 0 {
		return layout, 0, ComponentBudgetExceededError{Reason: "chunk components alone exceed the chunk payload budget"}
	}

	type rowCol struct {
		id    ComponentID
		align uintptr
		size  uintptr
	}
	cols := make([]rowCol, 0, len(gIDs))
	perRow := uintptr(4) // the entity-id column itself
	for _, id := range gIDs {
		d := cache.get(id)
		align := d.align
		if d.isSoA {
			align = soaAlign
		}
		cols = append(cols, rowCol{id, align, d.size})
		perRow += d.size
	}

	capacity := uint32(budget / perRow)
	if capacity == 0 {
		return layout, 0, ComponentBudgetExceededError{Reason: "columns do not fit in the chunk payload budget"}
	}

	rowOffset := uintptr(0)
	layout.entityOffset = rowOffset
	rowOffset += uintptr(capacity) * 4
	for _, c := range cols {
		rowOffset = alignUp(rowOffset, c.align)
		layout.generic[c.id] = columnLayout{offset: rowOffset, elemSize: c.size, isSoA: cache.get(c.id).isSoA}
		rowOffset += uintptr(capacity) * c.size
	}

	chunkBase := alignUp(rowOffset, 16)
	for id, cl := range layout.chunkComponents {
		cl.offset += chunkBase
		layout.chunkComponents[id] = cl
	}

	total := chunkBase + chunkBytes
	if total > uintptr(chunkalloc.PayloadSize)-reservedTail {
		return layout, 0, ComponentBudgetExceededError{Reason: "layout exceeds the chunk payload budget after alignment"}
	}

	return layout, capacity, nil
}

func alignUp(v, align uintptr) uintptr {
	if align <= 1 {
		return v
	}
	return (v + align - 1) &^ (align - 1)
}
