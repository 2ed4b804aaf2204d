package ecsgo

import "testing"

func TestIndexedCacheRegisterAndLookup(t *testing.T) {
	c := newIndexedCache[string, int](4)

	idx, err := c.Register("a", 1)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if idx != 0 {
		t.Errorf("first index = %d, want 0", idx)
	}

	got, ok := c.GetIndex("a")
	if !ok || got != idx {
		t.Errorf("GetIndex(%q) = %d, %v, want %d, true", "a", got, ok, idx)
	}
	if *c.GetItem(idx) != 1 {
		t.Errorf("GetItem(%d) = %d, want 1", idx, *c.GetItem(idx))
	}
	if *c.GetItem32(uint32(idx)) != 1 {
		t.Errorf("GetItem32(%d) = %d, want 1", idx, *c.GetItem32(uint32(idx)))
	}
}

func TestIndexedCacheRejectsBeyondCapacity(t *testing.T) {
	c := newIndexedCache[string, int](2)
	if _, err := c.Register("a", 1); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := c.Register("b", 2); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := c.Register("c", 3); err == nil {
		t.Errorf("expected error registering past capacity")
	}
}

func TestIndexedCacheClearResetsState(t *testing.T) {
	c := newIndexedCache[string, int](4)
	_, _ = c.Register("a", 1)
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	if _, ok := c.GetIndex("a"); ok {
		t.Errorf("GetIndex found an entry after Clear")
	}
}
