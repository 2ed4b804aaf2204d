package chunkalloc

import "testing"

func TestAllocateReturnsZeroedBlock(t *testing.T) {
	a := New()
	blk, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	blk.Payload[0] = 0xff
	blk.Payload[100] = 0xff
	if err := a.Free(blk); err != nil {
		t.Fatalf("Free: %v", err)
	}
	again, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if again.Payload[100] != 0 {
		t.Errorf("recycled block payload not zeroed: got %d", again.Payload[100])
	}
}

func TestPageGrowsOnlyWhenFull(t *testing.T) {
	a := New()
	blocks := make([]*Block, 0, BlocksPerPage)
	for i := 0; i < BlocksPerPage; i++ {
		blk, err := a.Allocate()
		if err != nil {
			t.Fatalf("Allocate %d: %v", i, err)
		}
		blocks = append(blocks, blk)
	}
	stats := a.Stats()
	if stats.Pages != 1 {
		t.Fatalf("expected 1 page after filling it, got %d", stats.Pages)
	}

	if _, err := a.Allocate(); err != nil {
		t.Fatalf("Allocate overflow: %v", err)
	}
	stats = a.Stats()
	if stats.Pages != 2 {
		t.Fatalf("expected a second page once the first filled, got %d", stats.Pages)
	}

	for _, blk := range blocks {
		if err := a.Free(blk); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
}

func TestFlushReleasesEmptyPages(t *testing.T) {
	a := New()
	blk, err := a.Allocate()
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if released := a.Flush(); released != 0 {
		t.Fatalf("expected no pages released while a block is in use, got %d", released)
	}
	if err := a.Free(blk); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if released := a.Flush(); released != 1 {
		t.Fatalf("expected 1 page released once empty, got %d", released)
	}
	if stats := a.Stats(); stats.Pages != 0 {
		t.Fatalf("expected 0 pages after flush, got %d", stats.Pages)
	}
}
