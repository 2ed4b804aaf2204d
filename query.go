package ecsgo

import "sort"

// QueryBuilder composes All/Any/None/Changed rules, mirroring the
// teacher's Query/QueryNode tree (a fluent And/Or/Not builder) but
// compiling into the World's cached LookupContext instead of walking
// every archetype live on each call.
type QueryBuilder struct {
	world *World

	allIDs     []ComponentID
	anyIDs     []ComponentID
	noneIDs    []ComponentID
	changedIDs []ComponentID

	writeMask map[ComponentID]bool

	enabledOnly  bool
	disabledOnly bool
}

func newQueryBuilder(w *World) *QueryBuilder {
	return &QueryBuilder{world: w, writeMask: make(map[ComponentID]bool)}
}

func idsOf(w *World, comps []Component) []ComponentID {
	ids := make([]ComponentID, len(comps))
	for i, c := range comps {
		ids[i] = c.resolve(w).id
	}
	return ids
}

// All requires every listed component to be present. write marks the
// listed components as accessed mutably by the eventual ForEach callback
// (informational only -- ecsgo does not enforce aliasing rules).
func (q *QueryBuilder) All(write bool, comps ...Component) *QueryBuilder {
	ids := idsOf(q.world, comps)
	q.allIDs = append(q.allIDs, ids...)
	for _, id := range ids {
		q.writeMask[id] = write
	}
	return q
}

// Any requires at least one listed component to be present.
func (q *QueryBuilder) Any(comps ...Component) *QueryBuilder {
	q.anyIDs = append(q.anyIDs, idsOf(q.world, comps)...)
	return q
}

// None excludes any archetype carrying a listed component.
func (q *QueryBuilder) None(comps ...Component) *QueryBuilder {
	q.noneIDs = append(q.noneIDs, idsOf(q.world, comps)...)
	return q
}

// Changed additionally requires the listed components (implicitly added
// to All) to have been written since this query was last run.
func (q *QueryBuilder) Changed(comps ...Component) *QueryBuilder {
	ids := idsOf(q.world, comps)
	q.allIDs = append(q.allIDs, ids...)
	q.changedIDs = append(q.changedIDs, ids...)
	for _, id := range ids {
		q.writeMask[id] = false
	}
	return q
}

// EnabledOnly restricts matching to enabled entities. Without EnabledOnly
// or DisabledOnly a query visits both enabled and disabled entities.
func (q *QueryBuilder) EnabledOnly() *QueryBuilder {
	q.enabledOnly = true
	q.disabledOnly = false
	return q
}

// DisabledOnly restricts matching to disabled entities.
func (q *QueryBuilder) DisabledOnly() *QueryBuilder {
	q.disabledOnly = true
	q.enabledOnly = false
	return q
}

type ruleSet struct {
	ids         []ComponentID
	matcherHash uint64
}

type lookupContext struct {
	all, any, none, changed  ruleSet
	enabledOnly, disabledOnly bool
}

func sortedDedup(ids []ComponentID) []ComponentID {
	if len(ids) == 0 {
		return nil
	}
	out := append([]ComponentID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:1]
	for _, id := range out[1:] {
		if id != dedup[len(dedup)-1] {
			dedup = append(dedup, id)
		}
	}
	return dedup
}

func (q *QueryBuilder) buildContext() lookupContext {
	mk := func(ids []ComponentID) ruleSet {
		sorted := sortedDedup(ids)
		var m uint64
		for _, id := range sorted {
			m |= q.world.components.get(id).matcherHash
		}
		return ruleSet{ids: sorted, matcherHash: m}
	}
	return lookupContext{
		all:          mk(q.allIDs),
		any:          mk(q.anyIDs),
		none:         mk(q.noneIDs),
		changed:      mk(q.changedIDs),
		enabledOnly:  q.enabledOnly,
		disabledOnly: q.disabledOnly,
	}
}

func intersectsSorted(a, b []ComponentID) bool {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			return true
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return false
}

func containsAllSorted(a, b []ComponentID) bool {
	i, j := 0, 0
	for j < len(b) {
		if i >= len(a) {
			return false
		}
		switch {
		case a[i] == b[j]:
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			return false
		}
	}
	return true
}

func matchArchetype(a *archetype, ctx lookupContext) bool {
	m := a.matcherHashGeneric | a.matcherHashChunk
	if ctx.all.matcherHash != 0 && m&ctx.all.matcherHash != ctx.all.matcherHash {
		return false
	}
	if ctx.any.matcherHash != 0 && m&ctx.any.matcherHash == 0 {
		return false
	}

	ids := a.allComponentIDs()
	if len(ctx.none.ids) > 0 && intersectsSorted(ids, ctx.none.ids) {
		return false
	}
	if len(ctx.any.ids) > 0 && !intersectsSorted(ids, ctx.any.ids) {
		return false
	}
	if len(ctx.all.ids) > 0 && !containsAllSorted(ids, ctx.all.ids) {
		return false
	}
	return true
}
