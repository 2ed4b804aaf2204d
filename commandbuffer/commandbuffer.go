// Package commandbuffer provides a deferred mirror of a World's entity
// mutations: Create/Add/Set/Remove calls are recorded as a tagged byte
// stream instead of applied immediately, then replayed all at once on
// Commit. This is the buffered counterpart to the teacher's in-process
// EntityOperation queue (NewEntityOperation/AddComponentOperation/
// RemoveComponentOperation/Apply), generalized from a slice of live
// operation structs holding real pointers into a serialized byte stream a
// caller can build from any goroutine and commit later without racing an
// in-flight query.
package commandbuffer

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/TheBitDrifter/ecsgo"
)

type opcode uint8

const (
	opCreateEntity opcode = iota
	opAddComponent
	opSetComponent
	opRemoveComponent
)

// tempRefBit marks a Ref as a temporary id minted by CreateEntity within
// this same Buffer, rather than a real entity handle. A real Entity's bit
// 31 can in principle also be set (it packs a 12-bit generation into the
// high bits), so a Ref built from a very long-lived, many-times-recycled
// slot could theoretically collide with this marker; in practice a slot
// would need on the order of two thousand destroy/recreate cycles before
// its generation reaches that bit, the same bound real-world deferred
// command buffers (e.g. Bevy's Entity/CommandQueue) accept.
const tempRefBit uint32 = 1 << 31

// Ref identifies an entity within a Buffer: either a committed
// ecsgo.Entity handle cast directly to Ref, or a temporary id returned by
// CreateEntity for an entity that does not exist yet.
type Ref uint32

// Buffer accumulates deferred entity operations against one bound World,
// recording each as a tagged record in an internal byte stream.
type Buffer struct {
	world    *ecsgo.World
	wire     []byte
	nextTemp uint32
}

// New returns an empty Buffer bound to w. Component ids referenced by
// later Add/Set/Remove calls are resolved against w immediately, so every
// call recorded into one Buffer must name components of the same World
// Commit will eventually target.
func New(w *ecsgo.World) *Buffer {
	return &Buffer{world: w}
}

func (b *Buffer) putU8(v uint8) { b.wire = append(b.wire, v) }

func (b *Buffer) putU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.wire = append(b.wire, tmp[:]...)
}

func (b *Buffer) putBytes(v []byte) { b.wire = append(b.wire, v...) }

// CreateEntity records a deferred entity creation and returns a temporary
// Ref other calls in this Buffer can target before Commit resolves it to
// a real ecsgo.Entity.
func (b *Buffer) CreateEntity() Ref {
	b.putU8(uint8(opCreateEntity))
	ref := tempRefBit | b.nextTemp
	b.nextTemp++
	return Ref(ref)
}

// AddComponent records a deferred Add of h's zero-valued component to e.
func AddComponent[T any](b *Buffer, e Ref, h ecsgo.Handle[T]) {
	id := ecsgo.ComponentIDOf(b.world, h)
	b.putU8(uint8(opAddComponent))
	b.putU8(uint8(h.Kind()))
	b.putU32(uint32(e))
	b.putU8(1)
	b.putU32(uint32(id))
}

// SetComponent records a deferred Set of h's component on e to value,
// adding the component first if e turns out not to carry it yet at
// commit time. The value's bytes are copied into the wire stream now, so
// later mutation of value after this call has no effect on what commits.
func SetComponent[T any](b *Buffer, e Ref, h ecsgo.Handle[T], value T) {
	id := ecsgo.ComponentIDOf(b.world, h)
	size := uint32(unsafe.Sizeof(value))
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&value)), int(size))

	b.putU8(uint8(opSetComponent))
	b.putU8(uint8(h.Kind()))
	b.putU32(uint32(e))
	b.putU8(1)
	b.putU32(uint32(id))
	b.putBytes(raw)
}

// RemoveComponent records a deferred Remove of h's component from e.
func RemoveComponent[T any](b *Buffer, e Ref, h ecsgo.Handle[T]) {
	id := ecsgo.ComponentIDOf(b.world, h)
	b.putU8(uint8(opRemoveComponent))
	b.putU8(uint8(h.Kind()))
	b.putU32(uint32(e))
	b.putU8(1)
	b.putU32(uint32(id))
}

// reader walks a Buffer's wire stream one record at a time.
type reader struct {
	data []byte
	pos  int
}

func (r *reader) more() bool { return r.pos < len(r.data) }

func (r *reader) u8() uint8 {
	v := r.data[r.pos]
	r.pos++
	return v
}

func (r *reader) u32() uint32 {
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v
}

func (r *reader) bytes(n int) []byte {
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v
}

// Commit replays every recorded operation against w in order, resolving
// temporary Refs against the entities CreateEntity records mint along the
// way. Commit does not clear the Buffer; discard it and start a new one
// for the next frame.
func (b *Buffer) Commit(w *ecsgo.World) error {
	tempToReal := make(map[uint32]ecsgo.Entity, b.nextTemp)
	resolve := func(ref uint32) (ecsgo.Entity, error) {
		if ref&tempRefBit != 0 {
			real, ok := tempToReal[ref&^tempRefBit]
			if !ok {
				return 0, fmt.Errorf("commandbuffer: temporary ref %d was never created in this buffer", ref&^tempRefBit)
			}
			return real, nil
		}
		return ecsgo.Entity(ref), nil
	}

	r := &reader{data: b.wire}
	nextTemp := uint32(0)
	for r.more() {
		switch opcode(r.u8()) {
		case opCreateEntity:
			e, err := w.CreateEntity()
			if err != nil {
				return err
			}
			tempToReal[nextTemp] = e
			nextTemp++

		case opAddComponent:
			kind := ecsgo.ComponentKind(r.u8())
			eref := r.u32()
			count := r.u8()
			e, err := resolve(eref)
			if err != nil {
				return err
			}
			for i := uint8(0); i < count; i++ {
				id := ecsgo.ComponentID(r.u32())
				if err := w.AddComponentRaw(e, id, kind); err != nil {
					return err
				}
			}

		case opSetComponent:
			kind := ecsgo.ComponentKind(r.u8())
			eref := r.u32()
			count := r.u8()
			e, err := resolve(eref)
			if err != nil {
				return err
			}
			for i := uint8(0); i < count; i++ {
				id := ecsgo.ComponentID(r.u32())
				size := w.ComponentSizeByID(id)
				payload := r.bytes(size)
				if err := w.SetComponentRaw(e, id, kind, payload); err != nil {
					return err
				}
			}

		case opRemoveComponent:
			kind := ecsgo.ComponentKind(r.u8())
			eref := r.u32()
			count := r.u8()
			e, err := resolve(eref)
			if err != nil {
				return err
			}
			for i := uint8(0); i < count; i++ {
				id := ecsgo.ComponentID(r.u32())
				if err := w.RemoveComponentRaw(e, id, kind); err != nil {
					return err
				}
			}

		default:
			return fmt.Errorf("commandbuffer: corrupt wire stream")
		}
	}
	return nil
}
