package ecsgo

import "testing"

type archTestA struct{ V int64 }
type archTestB struct{ V [3]float64 }

func TestComputeLayoutFitsWithinBudget(t *testing.T) {
	w := NewWorld()
	ha := NewComponent[archTestA]()
	hb := NewComponent[archTestB]()
	da := ha.describe(w)
	db := hb.describe(w)

	layout, capacity, err := computeLayout(w.components, []ComponentID{da.id, db.id}, nil)
	if err != nil {
		t.Fatalf("computeLayout: %v", err)
	}
	if capacity == 0 {
		t.Fatalf("capacity = 0")
	}
	if _, ok := layout.generic[da.id]; !ok {
		t.Errorf("layout missing column for component A")
	}
	if _, ok := layout.generic[db.id]; !ok {
		t.Errorf("layout missing column for component B")
	}

	// Columns must not overlap.
	colA := layout.generic[da.id]
	colB := layout.generic[db.id]
	aEnd := colA.offset + uintptr(capacity)*colA.elemSize
	bEnd := colB.offset + uintptr(capacity)*colB.elemSize
	overlap := colA.offset < bEnd && colB.offset < aEnd
	if overlap {
		t.Errorf("columns overlap: A=[%d,%d) B=[%d,%d)", colA.offset, aEnd, colB.offset, bEnd)
	}
}

func TestNewArchetypeRejectsTooManyComponents(t *testing.T) {
	w := NewWorld()
	old := Config.MaxComponentsPerArchetype
	Config.MaxComponentsPerArchetype = 1
	defer func() { Config.MaxComponentsPerArchetype = old }()

	ha := NewComponent[archTestA]()
	hb := NewComponent[archTestB]()
	da := ha.describe(w)
	db := hb.describe(w)

	_, err := newArchetype(1, w.components, []ComponentID{da.id, db.id}, nil)
	if err == nil {
		t.Errorf("expected ComponentBudgetExceededError")
	}
}

func TestFindOrCreateFreeChunkReusesLastNonFullChunk(t *testing.T) {
	w := NewWorld()
	ha := NewComponent[archTestA]()
	da := ha.describe(w)
	a, err := newArchetype(1, w.components, []ComponentID{da.id}, nil)
	if err != nil {
		t.Fatalf("newArchetype: %v", err)
	}

	c1, err := a.findOrCreateFreeChunk(w, true)
	if err != nil {
		t.Fatalf("findOrCreateFreeChunk: %v", err)
	}
	c2, err := a.findOrCreateFreeChunk(w, true)
	if err != nil {
		t.Fatalf("findOrCreateFreeChunk: %v", err)
	}
	if c1 != c2 {
		t.Errorf("expected the same non-full chunk to be reused")
	}

	for !c1.full() {
		if _, err := c1.addRow(Entity(0), 0); err != nil {
			t.Fatalf("addRow: %v", err)
		}
	}
	c3, err := a.findOrCreateFreeChunk(w, true)
	if err != nil {
		t.Fatalf("findOrCreateFreeChunk after filling: %v", err)
	}
	if c3 == c1 {
		t.Errorf("expected a new chunk once the previous one was full")
	}
}
