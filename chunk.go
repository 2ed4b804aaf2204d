package ecsgo

import (
	"unsafe"

	"github.com/TheBitDrifter/ecsgo/chunkalloc"
)

// chunk is the columnar store for up to capacity() entities of one
// archetype, backed by a single 16 KiB block from the chunk allocator.
// Component types stored in a chunk must not contain Go pointers, slices,
// maps or interfaces: their bytes are addressed directly inside the
// block's backing array, which the garbage collector does not scan for
// pointers hidden inside raw byte storage. This mirrors the same
// constraint real archetype-based Go ECS libraries (e.g. mlange-42/arche)
// document for their own byte-packed columns.
type chunk struct {
	owner            *archetype
	block            *chunkalloc.Block
	size             uint32
	indexInArchetype int
	lifespan         int32
	disabled         bool
	versions         map[ComponentID]uint32
}

func newChunk(owner *archetype, block *chunkalloc.Block) *chunk {
	c := &chunk{
		owner:    owner,
		block:    block,
		versions: make(map[ComponentID]uint32, len(owner.genericIDs)+len(owner.chunkIDs)),
	}
	return c
}

func (c *chunk) capacity() uint32 { return c.owner.capacity }

func (c *chunk) full() bool { return c.size >= c.capacity() }

func (c *chunk) entityPtr(row uint32) *Entity {
	off := c.owner.layout.entityOffset + uintptr(row)*4
	return (*Entity)(unsafe.Pointer(&c.block.Payload[off]))
}

func (c *chunk) entityAt(row uint32) Entity { return *c.entityPtr(row) }

func (c *chunk) setEntityAt(row uint32, e Entity) { *c.entityPtr(row) = e }

// addRow appends e as a new row. When the chunk was empty it also stamps
// every column's version to stampVersion, so a fresh chunk's data reads as
// "changed" the first time any Changed-filtered query observes it; rows
// added to a non-empty chunk leave the column versions as they are.
func (c *chunk) addRow(e Entity, stampVersion uint32) (uint32, error) {
	if c.full() {
		return 0, ChunkFullError{}
	}
	if c.size == 0 {
		for _, id := range c.owner.genericIDs {
			c.versions[id] = stampVersion
		}
		for _, id := range c.owner.chunkIDs {
			c.versions[id] = stampVersion
		}
	}
	row := c.size
	c.setEntityAt(row, e)
	c.size++
	return row, nil
}

// removeRow swap-removes row: the last live row takes its place (the
// caller's relocate callback must update the moved entity's registry
// location). It does not run finalizers — most callers relocate row's
// data into a different archetype's chunk first, where it is still
// live. A caller that means to actually destroy row's data must call
// destructRow(row) itself before removeRow.
func (c *chunk) removeRow(row uint32, relocate func(moved Entity, newRow uint32)) {
	last := c.size - 1
	if row != last {
		moved := c.entityAt(last)
		c.copyRowWithin(last, row)
		c.setEntityAt(row, moved)
		relocate(moved, row)
	}
	c.size--
}

func (c *chunk) copyRowWithin(src, dst uint32) {
	for _, id := range c.owner.genericIDs {
		cl := c.owner.layout.generic[id]
		copyColumnElem(c, cl, c, cl, src, dst)
	}
}

func (c *chunk) destructRow(row uint32) {
	for _, id := range c.owner.genericIDs {
		d := c.owner.cache.get(id)
		if !d.finalizer {
			continue
		}
		cl := c.owner.layout.generic[id]
		if cl.isSoA {
			continue // Finalizer is only supported on AoS components.
		}
		ptr := unsafe.Pointer(&c.block.Payload[cl.offset+uintptr(row)*cl.elemSize])
		d.finalize(ptr)
	}
}

func (c *chunk) bumpVersion(id ComponentID, v uint32) {
	c.versions[id] = v
}

func (c *chunk) didChange(id ComponentID, since uint32) bool {
	cur, ok := c.versions[id]
	if !ok {
		return false
	}
	return int32(cur-since) > 0
}

// copyColumnElem copies one row's worth of bytes for a column from src to
// dst, which may be the same chunk (row move) or different chunks sharing
// the same archetype (CreateEntityLike, SetEnabled) or different
// archetypes with independently computed layouts (Add/Remove component).
func copyColumnElem(src *chunk, srcCl columnLayout, dst *chunk, dstCl columnLayout, srcRow, dstRow uint32) {
	if !srcCl.isSoA {
		size := srcCl.elemSize
		so := srcCl.offset + uintptr(srcRow)*size
		do := dstCl.offset + uintptr(dstRow)*size
		copy(dst.block.Payload[do:do+size], src.block.Payload[so:so+size])
		return
	}
	fieldSize := srcCl.elemSize / 3
	srcCap := uintptr(src.capacity())
	dstCap := uintptr(dst.capacity())
	for f := uintptr(0); f < 3; f++ {
		so := srcCl.offset + f*srcCap*fieldSize + uintptr(srcRow)*fieldSize
		do := dstCl.offset + f*dstCap*fieldSize + uintptr(dstRow)*fieldSize
		copy(dst.block.Payload[do:do+fieldSize], src.block.Payload[so:so+fieldSize])
	}
}

func blitColumn(c *chunk, cl columnLayout, row uint32, data []byte) {
	if !cl.isSoA {
		off := cl.offset + uintptr(row)*cl.elemSize
		copy(c.block.Payload[off:off+cl.elemSize], data)
		return
	}
	fieldSize := cl.elemSize / 3
	capc := uintptr(c.capacity())
	for f := uintptr(0); f < 3; f++ {
		off := cl.offset + f*capc*fieldSize + uintptr(row)*fieldSize
		copy(c.block.Payload[off:off+fieldSize], data[f*fieldSize:(f+1)*fieldSize])
	}
}

func blitChunkComponent(c *chunk, cl columnLayout, data []byte) {
	copy(c.block.Payload[cl.offset:cl.offset+cl.elemSize], data)
}

// ChunkView is the handle for_each/ForEach hands to a callback: a
// read/write window onto one chunk's live rows, scoped so callers can
// never reach the chunk type itself.
type ChunkView struct {
	world *World
	c     *chunk
}

// Len returns the number of live rows in this chunk.
func (cv *ChunkView) Len() int { return int(cv.c.size) }

// Entities returns the entity handles for this chunk's live rows, in the
// same row order every component View/ViewMut uses.
func (cv *ChunkView) Entities() []Entity {
	ptr := (*Entity)(unsafe.Pointer(&cv.c.block.Payload[cv.c.owner.layout.entityOffset]))
	full := unsafe.Slice(ptr, cv.c.owner.capacity)
	return full[:cv.c.size]
}

// Disabled reports whether this chunk holds disabled entities.
func (cv *ChunkView) Disabled() bool { return cv.c.disabled }
