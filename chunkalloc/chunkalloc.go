// Package chunkalloc implements the fixed-size block allocator backing
// every ecsgo Chunk: 16 KiB blocks carved out of 64-block (1 MiB) pages,
// recycled through an implicit free list threaded through the blocks'
// own (currently unused) payload bytes.
package chunkalloc

import "fmt"

const (
	// BlockSize is the physical size of one chunk's backing memory.
	BlockSize = 16384
	// blockReserved mirrors the 8-byte page back-pointer prefix the
	// original allocator reserves at the front of every block. Go can't
	// safely encode a GC-tracked pointer into a raw byte array and read
	// it back, so the back-pointer itself lives in the typed Block.owner
	// field instead; this constant is kept so PayloadSize still matches
	// the budget every other layout computation is written against.
	blockReserved = 8
	// PayloadSize is the usable budget a Chunk may spend on its entity
	// column, component columns and reserved tail.
	PayloadSize = BlockSize - blockReserved

	// BlocksPerPage is the number of blocks carved from one page.
	BlocksPerPage = 64
	// PageSize is one page's total size (64 blocks * 16 KiB = 1 MiB).
	PageSize = BlocksPerPage * BlockSize

	noBlock = BlocksPerPage
)

// Block is one chunk-sized unit of memory handed out by the Allocator.
type Block struct {
	Payload [PayloadSize]byte
	owner   *page
	index   uint8
}

type page struct {
	blocks    [BlocksPerPage]Block
	nextFree  uint8
	freeCount uint8
	used      uint8
}

func newPage() *page {
	p := &page{freeCount: BlocksPerPage}
	for i := range p.blocks {
		p.blocks[i].owner = p
		p.blocks[i].index = uint8(i)
		next := uint8(i + 1)
		if i == BlocksPerPage-1 {
			next = noBlock
		}
		p.blocks[i].Payload[0] = next
	}
	return p
}

func (p *page) isFull() bool { return p.freeCount == 0 }

func (p *page) alloc() *Block {
	idx := p.nextFree
	blk := &p.blocks[idx]
	p.nextFree = blk.Payload[0]
	p.freeCount--
	p.used++
	blk.Payload = [PayloadSize]byte{}
	return blk
}

func (p *page) free(b *Block) {
	b.Payload[0] = p.nextFree
	p.nextFree = b.index
	p.freeCount++
	p.used--
}

// Allocator hands out and recycles Blocks a page at a time. One Allocator
// belongs to exactly one World; it holds no package-level state.
type Allocator struct {
	freePages []*page
	fullPages []*page
}

// New returns an empty allocator with no pages yet committed.
func New() *Allocator {
	return &Allocator{}
}

// Allocate returns a zeroed block, growing the page pool if every existing
// page is full.
func (a *Allocator) Allocate() (*Block, error) {
	if len(a.freePages) == 0 {
		a.freePages = append(a.freePages, newPage())
	}
	p := a.freePages[len(a.freePages)-1]
	blk := p.alloc()
	if p.isFull() {
		a.freePages = a.freePages[:len(a.freePages)-1]
		a.fullPages = append(a.fullPages, p)
	}
	return blk, nil
}

// Free returns a block to its owning page's free list.
func (a *Allocator) Free(b *Block) error {
	p := b.owner
	if p == nil {
		return fmt.Errorf("chunkalloc: block has no owning page")
	}
	wasFull := p.isFull()
	p.free(b)
	if wasFull {
		a.fullPages = removePage(a.fullPages, p)
		a.freePages = append(a.freePages, p)
	}
	return nil
}

func removePage(pages []*page, target *page) []*page {
	for i, p := range pages {
		if p == target {
			pages[i] = pages[len(pages)-1]
			return pages[:len(pages)-1]
		}
	}
	return pages
}

// Flush drops fully-empty pages from the free pool so the host garbage
// collector can reclaim their backing arrays, and reports how many pages
// were released.
func (a *Allocator) Flush() int {
	kept := a.freePages[:0]
	released := 0
	for _, p := range a.freePages {
		if p.used == 0 {
			released++
			continue
		}
		kept = append(kept, p)
	}
	a.freePages = kept
	return released
}

// Stats reports current allocator occupancy.
type Stats struct {
	Pages      int
	FreePages  int
	UsedBlocks int
}

// Stats returns a snapshot of page/block occupancy, mainly for tests and GC.
func (a *Allocator) Stats() Stats {
	used := 0
	for _, p := range a.freePages {
		used += int(p.used)
	}
	for _, p := range a.fullPages {
		used += int(p.used)
	}
	return Stats{
		Pages:      len(a.freePages) + len(a.fullPages),
		FreePages:  len(a.freePages),
		UsedBlocks: used,
	}
}
