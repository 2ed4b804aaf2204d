/*
Package ecsgo provides an Entity-Component-System (ECS) runtime for games and
simulations.

ecsgo keeps entities with the same component signature packed together in
fixed-size chunks, carved from pooled pages, so iterating a query walks
contiguous memory instead of chasing pointers.

Core Concepts:

  - Entity: a generation-stamped handle identifying one object in a World.
  - Component: a plain data type attached to entities via a Handle[T].
  - Archetype: the set of entities sharing one exact component signature.
  - Chunk: a fixed-capacity, 16 KiB slab holding one archetype's rows.
  - Query: a builder over All/Any/None/Changed rules, compiled once and
    incrementally matched against new archetypes as they appear.

Basic Usage:

	world := ecsgo.NewWorld()

	position := ecsgo.NewComponent[Position]()
	velocity := ecsgo.NewComponent[Velocity]()

	e, _ := world.CreateEntity()
	ecsgo.AddWithValue(world, e, position, Position{})
	ecsgo.AddWithValue(world, e, velocity, Velocity{X: 1})

	query := world.Query().All(true, position).All(false, velocity).Compile()
	ecsgo.ForEach2(query, position, velocity, func(e ecsgo.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

Component values stored in ecsgo must not contain Go pointers, slices, maps
or interfaces: they are addressed directly inside a chunk's backing array,
which the garbage collector does not scan for pointers hidden in raw bytes.
Types needing cleanup beyond what the garbage collector already reclaims can
implement Finalizer.
*/
package ecsgo
