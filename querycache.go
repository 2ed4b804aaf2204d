package ecsgo

import "github.com/TheBitDrifter/ecsgo/internal/idhash"

// compiledQuery is the cached, incrementally-maintained match set for one
// lookupContext: new archetypes created after the first run are folded in
// without rescanning the ones already known to match or not.
type compiledQuery struct {
	ctx              lookupContext
	matched          []*archetype
	lastScanned      int
	lastWorldVersion uint32
}

func (cq *compiledQuery) refresh(w *World) {
	for cq.lastScanned < len(w.archetypesSlice) {
		a := w.archetypesSlice[cq.lastScanned]
		if matchArchetype(a, cq.ctx) {
			cq.matched = append(cq.matched, a)
		}
		cq.lastScanned++
	}
}

func (ctx lookupContext) hash() uint64 {
	h := idhash.FNV64("ecsgo.query")
	combine := func(h uint64, ids []ComponentID) uint64 {
		for _, id := range ids {
			h = idhash.Combine(h, uint64(id))
		}
		return idhash.Combine(h, uint64(len(ids)))
	}
	h = combine(h, ctx.all.ids)
	h = combine(h, ctx.any.ids)
	h = combine(h, ctx.none.ids)
	h = combine(h, ctx.changed.ids)
	if ctx.enabledOnly {
		h = idhash.Combine(h, 1)
	}
	if ctx.disabledOnly {
		h = idhash.Combine(h, 2)
	}
	return h
}

// CompiledQuery is a reusable, world-cached query: building the same rule
// set twice (even from unrelated QueryBuilder calls) returns a handle onto
// the same incrementally-maintained match set.
type CompiledQuery struct {
	world    *World
	compiled *compiledQuery
}

// Compile finalizes the builder into a CompiledQuery, reusing the World's
// cached entry for this exact rule set if one already exists.
func (q *QueryBuilder) Compile() *CompiledQuery {
	ctx := q.buildContext()
	h := ctx.hash()
	cq, ok := q.world.queryCache[h]
	if !ok {
		cq = &compiledQuery{ctx: ctx}
		q.world.queryCache[h] = cq
	}
	return &CompiledQuery{world: q.world, compiled: cq}
}

func (cq *CompiledQuery) chunkLists(a *archetype) []*chunk {
	switch {
	case cq.compiled.ctx.enabledOnly:
		return a.enabled
	case cq.compiled.ctx.disabledOnly:
		return a.disabled
	default:
		out := make([]*chunk, 0, len(a.enabled)+len(a.disabled))
		out = append(out, a.enabled...)
		out = append(out, a.disabled...)
		return out
	}
}

func (cq *CompiledQuery) passesChanged(c *chunk) bool {
	if len(cq.compiled.ctx.changed.ids) == 0 {
		return true
	}
	for _, id := range cq.compiled.ctx.changed.ids {
		if c.didChange(id, cq.compiled.lastWorldVersion) {
			return true
		}
	}
	return false
}

// ForEach compiles (if needed), then dispatches fn once per matching,
// non-empty chunk, batching Config.QueryBatchSize chunks under one
// structural-lock raise/lower cycle so mutations can be queued (via a
// CommandBuffer) without racing the in-flight iteration.
func (cq *CompiledQuery) ForEach(fn func(*ChunkView)) {
	cq.compiled.refresh(cq.world)

	batch := make([]*chunk, 0, Config.QueryBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		seen := make(map[*archetype]bool)
		for _, c := range batch {
			if !seen[c.owner] {
				c.owner.structuralLock++
				seen[c.owner] = true
			}
		}
		for _, c := range batch {
			fn(&ChunkView{world: cq.world, c: c})
		}
		for a := range seen {
			a.structuralLock--
		}
		batch = batch[:0]
	}

	for _, a := range cq.compiled.matched {
		for _, c := range cq.chunkLists(a) {
			if c.size == 0 || !cq.passesChanged(c) {
				continue
			}
			batch = append(batch, c)
			if len(batch) == Config.QueryBatchSize {
				flush()
			}
		}
	}
	flush()
	cq.compiled.lastWorldVersion = cq.world.worldVersion
}

// Count returns the number of entities matched, without invoking a
// callback.
func (cq *CompiledQuery) Count() int {
	cq.compiled.refresh(cq.world)
	n := 0
	for _, a := range cq.compiled.matched {
		for _, c := range cq.chunkLists(a) {
			if cq.passesChanged(c) {
				n += int(c.size)
			}
		}
	}
	return n
}

// Empty reports whether Count() would return 0, without bumping the
// query's changed-tracking watermark.
func (cq *CompiledQuery) Empty() bool {
	cq.compiled.refresh(cq.world)
	for _, a := range cq.compiled.matched {
		for _, c := range cq.chunkLists(a) {
			if c.size > 0 && cq.passesChanged(c) {
				return false
			}
		}
	}
	return true
}

// ToArray collects a single component's values across every matched row
// into one freshly-allocated slice, in no particular cross-chunk order.
func ToArray[T any](cq *CompiledQuery, h Handle[T]) []T {
	var out []T
	cq.ForEach(func(cv *ChunkView) {
		out = append(out, h.View(cq.world, cv)...)
	})
	return out
}

// ForEach1 is a small ergonomic wrapper around ForEach for the common
// single-component case, in the spirit of the generated per-arity
// iteration helpers found elsewhere in the ecosystem.
func ForEach1[A any](cq *CompiledQuery, ha Handle[A], fn func(e Entity, a *A)) {
	cq.ForEach(func(cv *ChunkView) {
		as := ha.ViewMut(cq.world, cv)
		ents := cv.Entities()
		for i := range as {
			fn(ents[i], &as[i])
		}
	})
}

// ForEach2 is the two-component counterpart of ForEach1.
func ForEach2[A, B any](cq *CompiledQuery, ha Handle[A], hb Handle[B], fn func(e Entity, a *A, b *B)) {
	cq.ForEach(func(cv *ChunkView) {
		as := ha.ViewMut(cq.world, cv)
		bs := hb.ViewMut(cq.world, cv)
		ents := cv.Entities()
		for i := range ents {
			fn(ents[i], &as[i], &bs[i])
		}
	})
}
