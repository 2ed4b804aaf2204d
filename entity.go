package ecsgo

import "fmt"

const (
	entityIDBits  = 20
	entityGenBits = 12

	// IdBad is the sentinel id value meaning "no entity". No World ever
	// assigns it as a live id, so it doubles as the id half of the zero
	// Entity's complement -- see EntityNone.
	IdBad uint32 = 1<<entityIDBits - 1

	genMask = 1<<entityGenBits - 1
	idMask  = 1<<entityIDBits - 1
)

// Entity is a 32-bit handle packed as {id: 20 bits, generation: 12 bits}.
// Handles are only ever meaningful relative to the World that minted
// them; comparing handles from different Worlds is a programmer error.
type Entity uint32

// EntityNone is the handle that never resolves to a live entity in any
// World.
var EntityNone = newEntity(IdBad, 0)

func newEntity(id, gen uint32) Entity {
	return Entity((gen&genMask)<<entityIDBits | (id & idMask))
}

// Id returns the dense registry slot this handle refers to.
func (e Entity) Id() uint32 { return uint32(e) & idMask }

// Gen returns the handle's generation tag.
func (e Entity) Gen() uint32 { return uint32(e) >> entityIDBits & genMask }

func (e Entity) String() string {
	return fmt.Sprintf("Entity(id=%d, gen=%d)", e.Id(), e.Gen())
}
