package ecsgo

import "github.com/TheBitDrifter/mask"

// signatureFor builds the exact-match key used to find an archetype by
// its component set: every generic and chunk component id marked into one
// 256-bit mask, independent of declaration order.
func signatureFor(gIDs, cIDs []ComponentID) mask.Mask256 {
	var m mask.Mask256
	for _, id := range gIDs {
		m.Mark(uint32(id))
	}
	for _, id := range cIDs {
		m.Mark(uint32(id))
	}
	return m
}

// resolveAddEdge returns the archetype reached from src by adding id,
// creating it (and caching the edge both directions) if it doesn't exist
// yet.
func (w *World) resolveAddEdge(src *archetype, id ComponentID, kind ComponentKind) (*archetype, error) {
	if e, ok := src.addEdge[id]; ok {
		return e, nil
	}
	if src == w.root {
		if e, ok := w.rootAddEdge[id]; ok {
			src.addEdge[id] = e
			e.delEdge[id] = src
			return e, nil
		}
	}

	gIDs := append([]ComponentID(nil), src.genericIDs...)
	cIDs := append([]ComponentID(nil), src.chunkIDs...)
	if kind == KindGeneric {
		gIDs = append(gIDs, id)
	} else {
		cIDs = append(cIDs, id)
	}

	tgt, err := w.findOrCreateArchetype(gIDs, cIDs)
	if err != nil {
		return nil, err
	}
	src.addEdge[id] = tgt
	tgt.delEdge[id] = src
	if src == w.root {
		w.rootAddEdge[id] = tgt
	}
	return tgt, nil
}

// resolveDelEdge returns the archetype reached from src by removing id.
func (w *World) resolveDelEdge(src *archetype, id ComponentID) (*archetype, error) {
	if e, ok := src.delEdge[id]; ok {
		return e, nil
	}

	var gIDs, cIDs []ComponentID
	for _, gid := range src.genericIDs {
		if gid != id {
			gIDs = append(gIDs, gid)
		}
	}
	for _, cid := range src.chunkIDs {
		if cid != id {
			cIDs = append(cIDs, cid)
		}
	}

	tgt, err := w.findOrCreateArchetype(gIDs, cIDs)
	if err != nil {
		return nil, err
	}
	src.delEdge[id] = tgt
	tgt.addEdge[id] = src
	return tgt, nil
}

func (w *World) findOrCreateArchetype(gIDs, cIDs []ComponentID) (*archetype, error) {
	sig := signatureFor(gIDs, cIDs)
	if existing, ok := w.archetypesByMask[sig]; ok {
		return existing, nil
	}
	created, err := newArchetype(archetypeID(len(w.archetypesSlice)), w.components, gIDs, cIDs)
	if err != nil {
		return nil, err
	}
	w.archetypesSlice = append(w.archetypesSlice, created)
	w.archetypesByMask[sig] = created
	return created, nil
}
