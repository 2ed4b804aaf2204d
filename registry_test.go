package ecsgo

import "testing"

func TestRegistryAllocIsSequentialUntilRecycled(t *testing.T) {
	r := newEntityRegistry()

	a, err := r.alloc()
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	b, err := r.alloc()
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	if a.Id() != 0 || b.Id() != 1 {
		t.Errorf("ids = %d, %d, want 0, 1", a.Id(), b.Id())
	}
	if a.Gen() != 0 || b.Gen() != 0 {
		t.Errorf("fresh slots should start at generation 0")
	}
}

func TestRegistryFreeBumpsGenerationAndInvalidatesOldHandle(t *testing.T) {
	r := newEntityRegistry()
	e, _ := r.alloc()

	if !r.valid(e) {
		t.Fatalf("freshly allocated entity reported invalid")
	}
	if err := r.free(e); err != nil {
		t.Fatalf("free: %v", err)
	}
	if r.valid(e) {
		t.Errorf("stale handle still reports valid after free")
	}

	recycled, err := r.alloc()
	if err != nil {
		t.Fatalf("alloc after free: %v", err)
	}
	if recycled.Id() != e.Id() {
		t.Errorf("recycled id = %d, want %d (the freed slot)", recycled.Id(), e.Id())
	}
	if recycled.Gen() != e.Gen()+1 {
		t.Errorf("recycled gen = %d, want %d", recycled.Gen(), e.Gen()+1)
	}
}

func TestRegistryFreeOfInvalidHandleErrors(t *testing.T) {
	r := newEntityRegistry()
	e, _ := r.alloc()
	_ = r.free(e)
	if err := r.free(e); err == nil {
		t.Errorf("expected error freeing an already-free handle")
	}
}

func TestRegistryLocateReflectsSetLocation(t *testing.T) {
	r := newEntityRegistry()
	e, _ := r.alloc()

	r.setLocation(e, nil, 5, true)
	c, row, err := r.locate(e)
	if err != nil {
		t.Fatalf("locate: %v", err)
	}
	if c != nil || row != 5 {
		t.Errorf("locate() = %v, %d, want nil, 5", c, row)
	}
	if !r.slots[e.Id()].disabled {
		t.Errorf("setLocation did not record disabled state")
	}
}

func TestRegistryFreeListReusesSlotsInLIFOOrder(t *testing.T) {
	r := newEntityRegistry()
	a, _ := r.alloc()
	b, _ := r.alloc()
	c, _ := r.alloc()

	_ = r.free(b)
	_ = r.free(c)

	first, _ := r.alloc()
	second, _ := r.alloc()

	if first.Id() != c.Id() {
		t.Errorf("first recycled id = %d, want %d", first.Id(), c.Id())
	}
	if second.Id() != b.Id() {
		t.Errorf("second recycled id = %d, want %d", second.Id(), b.Id())
	}
	_ = a
}
