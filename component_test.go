package ecsgo

import "testing"

type testPosition struct {
	X, Y float64
}

type testTag struct{}

var finalizedFlags [4]bool

type testFinalized struct {
	slot int
}

func (t *testFinalized) ECSFinalize() { finalizedFlags[t.slot] = true }

func TestNewComponentAssignsStableID(t *testing.T) {
	w := NewWorld()
	h := NewComponent[testPosition]()

	d1 := h.describe(w)
	d2 := h.describe(w)
	if d1.id != d2.id {
		t.Errorf("describe() returned different ids across calls: %d != %d", d1.id, d2.id)
	}
	if d1.kind != KindGeneric {
		t.Errorf("kind = %v, want KindGeneric", d1.kind)
	}
}

func TestGenericAndChunkHandlesForSameTypeDoNotCollide(t *testing.T) {
	w := NewWorld()
	generic := NewComponent[testPosition]()
	chunkComp := NewChunkComponent[testPosition]()

	gd := generic.describe(w)
	cd := chunkComp.describe(w)
	if gd.id == cd.id {
		t.Errorf("generic and chunk registrations of the same type share id %d", gd.id)
	}
	if gd.kind != KindGeneric || cd.kind != KindChunk {
		t.Errorf("kinds = %v, %v, want KindGeneric, KindChunk", gd.kind, cd.kind)
	}
}

func TestComponentIDOfMatchesHandleDescribe(t *testing.T) {
	w := NewWorld()
	h := NewComponent[testPosition]()
	if ComponentIDOf(w, h) != h.describe(w).id {
		t.Errorf("ComponentIDOf and describe disagree on id")
	}
}

func TestFinalizerRunsOnDestroy(t *testing.T) {
	w := NewWorld()
	h := NewComponent[testFinalized]()

	e, _ := w.CreateEntity()
	if err := AddWithValue(w, e, h, testFinalized{slot: 0}); err != nil {
		t.Fatalf("AddWithValue: %v", err)
	}

	if err := w.Destroy(e); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if !finalizedFlags[0] {
		t.Errorf("ECSFinalize was not invoked on destroy")
	}
}
