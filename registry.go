package ecsgo

// entityContainer is the per-slot bookkeeping record the registry keeps
// for every id it has ever handed out. While a slot is free, row doubles
// as the index of the next free slot (an implicit free list, the same
// trick the chunk allocator uses for its own blocks).
type entityContainer struct {
	chunk      *chunk
	row        uint32
	generation uint32
	disabled   bool
}

// entityRegistry is a generation-stamped handle allocator with an
// implicit free list. It is per-World state: two Worlds never share one.
type entityRegistry struct {
	slots     []entityContainer
	nextFree  uint32
	freeCount int
}

func newEntityRegistry() *entityRegistry {
	return &entityRegistry{nextFree: IdBad}
}

// alloc assigns a fresh id at generation 0, or recycles the most recently
// freed one at the generation free already bumped it to.
func (r *entityRegistry) alloc() (Entity, error) {
	if r.freeCount > 0 {
		id := r.nextFree
		slot := &r.slots[id]
		r.nextFree = slot.row
		r.freeCount--
		slot.chunk = nil
		slot.row = 0
		slot.disabled = false
		return newEntity(id, slot.generation), nil
	}
	if len(r.slots) >= int(idMask) {
		return 0, IdSpaceExhaustedError{}
	}
	id := uint32(len(r.slots))
	r.slots = append(r.slots, entityContainer{})
	return newEntity(id, 0), nil
}

// free recycles e's slot, bumping its generation so stale handles fail
// Valid from then on.
func (r *entityRegistry) free(e Entity) error {
	if !r.valid(e) {
		return InvalidEntityError{Entity: e}
	}
	slot := &r.slots[e.Id()]
	slot.generation = (slot.generation + 1) & genMask
	slot.chunk = nil
	slot.row = r.nextFree
	slot.disabled = false
	r.nextFree = e.Id()
	r.freeCount++
	return nil
}

func (r *entityRegistry) valid(e Entity) bool {
	id := e.Id()
	if id == IdBad || int(id) >= len(r.slots) {
		return false
	}
	slot := &r.slots[id]
	if slot.generation != e.Gen() {
		return false
	}
	if slot.chunk != nil {
		if slot.row >= slot.chunk.size || slot.chunk.entityAt(slot.row) != e {
			return false
		}
	}
	return true
}

// locate returns the chunk and row an entity currently lives at.
func (r *entityRegistry) locate(e Entity) (*chunk, uint32, error) {
	if !r.valid(e) {
		return nil, 0, InvalidEntityError{Entity: e}
	}
	slot := &r.slots[e.Id()]
	return slot.chunk, slot.row, nil
}

func (r *entityRegistry) setLocation(e Entity, c *chunk, row uint32, disabled bool) {
	slot := &r.slots[e.Id()]
	slot.chunk = c
	slot.row = row
	slot.disabled = disabled
}
