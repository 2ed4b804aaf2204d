package ecsgo

import "strconv"

// maxComponentTypesPerWorld bounds how many distinct (type, kind) pairs
// one World's component cache can register across its lifetime. It is
// independent of Config.MaxComponentsPerArchetype, which bounds how many
// of those types one archetype may combine.
const maxComponentTypesPerWorld = 4096

// componentCache maps a component's stable lookup hash (folded together
// with its kind, since the same Go type may be registered once as Generic
// and once as Chunk) to its dense id and descriptor. One instance per
// World; never process-global.
type componentCache struct {
	cache *indexedCache[string, componentDescriptor]
}

func newComponentCache() *componentCache {
	return &componentCache{cache: newIndexedCache[string, componentDescriptor](maxComponentTypesPerWorld)}
}

func cacheKey(lookupHash uint64, kind ComponentKind) string {
	return strconv.FormatUint(lookupHash, 36) + ":" + strconv.Itoa(int(kind))
}

func (c *componentCache) getOrRegister(lookupHash uint64, kind ComponentKind, build func() componentDescriptor) *componentDescriptor {
	key := cacheKey(lookupHash, kind)
	if idx, ok := c.cache.GetIndex(key); ok {
		return c.cache.GetItem(idx)
	}
	desc := build()
	idx, err := c.cache.Register(key, desc)
	if err != nil {
		panic(err)
	}
	d := c.cache.GetItem(idx)
	d.id = ComponentID(idx)
	return d
}

func (c *componentCache) get(id ComponentID) *componentDescriptor {
	return c.cache.GetItem32(uint32(id))
}

func (c *componentCache) has(lookupHash uint64, kind ComponentKind) bool {
	_, ok := c.cache.GetIndex(cacheKey(lookupHash, kind))
	return ok
}
