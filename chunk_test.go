package ecsgo

import "testing"

type chunkTestComp struct{ V int32 }

func newTestChunk(t *testing.T, w *World, ids []ComponentID) *chunk {
	t.Helper()
	a, err := newArchetype(9, w.components, ids, nil)
	if err != nil {
		t.Fatalf("newArchetype: %v", err)
	}
	c, err := a.findOrCreateFreeChunk(w, true)
	if err != nil {
		t.Fatalf("findOrCreateFreeChunk: %v", err)
	}
	return c
}

func TestAddRowStampsVersionOnFirstRow(t *testing.T) {
	w := NewWorld()
	h := NewComponent[chunkTestComp]()
	d := h.describe(w)
	c := newTestChunk(t, w, []ComponentID{d.id})

	if _, err := c.addRow(Entity(1), 42); err != nil {
		t.Fatalf("addRow: %v", err)
	}
	if !c.didChange(d.id, 41) {
		t.Errorf("expected column to read as changed relative to version 41")
	}
	if c.didChange(d.id, 42) {
		t.Errorf("expected column to read as unchanged relative to the stamped version itself")
	}
}

func TestRemoveRowSwapsLastIntoHole(t *testing.T) {
	w := NewWorld()
	h := NewComponent[chunkTestComp]()
	d := h.describe(w)
	c := newTestChunk(t, w, []ComponentID{d.id})

	e0, e1, e2 := Entity(10), Entity(11), Entity(12)
	r0, _ := c.addRow(e0, 0)
	_, _ = c.addRow(e1, 0)
	r2, _ := c.addRow(e2, 0)

	var movedEntity Entity
	var movedRow uint32
	c.removeRow(r0, func(moved Entity, newRow uint32) {
		movedEntity = moved
		movedRow = newRow
	})

	if movedEntity != e2 {
		t.Errorf("expected the last row's entity (%v) to move, got %v", e2, movedEntity)
	}
	if movedRow != r0 {
		t.Errorf("moved row = %d, want %d", movedRow, r0)
	}
	if c.entityAt(r0) != e2 {
		t.Errorf("entity at row %d = %v, want %v", r0, c.entityAt(r0), e2)
	}
	if c.size != 2 {
		t.Errorf("size after remove = %d, want 2", c.size)
	}
	_ = r2
}

func TestColumnSliceGenericReflectsWrites(t *testing.T) {
	w := NewWorld()
	h := NewComponent[chunkTestComp]()
	d := h.describe(w)
	c := newTestChunk(t, w, []ComponentID{d.id})

	row, _ := c.addRow(Entity(1), 0)
	cl := c.owner.layout.generic[d.id]
	blitColumn(c, cl, row, []byte{7, 0, 0, 0})

	s, ok := columnSliceGeneric[chunkTestComp](c, d.id)
	if !ok {
		t.Fatalf("columnSliceGeneric returned ok=false")
	}
	if len(s) != 1 {
		t.Fatalf("len(s) = %d, want 1", len(s))
	}
	if s[0].V != 7 {
		t.Errorf("s[0].V = %d, want 7", s[0].V)
	}
}
