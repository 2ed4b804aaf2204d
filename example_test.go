package ecsgo_test

import (
	"fmt"

	"github.com/TheBitDrifter/ecsgo"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

func Example() {
	world := ecsgo.NewWorld()

	position := ecsgo.NewComponent[Position]()
	velocity := ecsgo.NewComponent[Velocity]()

	e, _ := world.CreateEntity()
	_ = ecsgo.AddWithValue(world, e, position, Position{X: 0, Y: 0})
	_ = ecsgo.AddWithValue(world, e, velocity, Velocity{X: 1, Y: 2})

	query := world.Query().All(true, position).All(false, velocity).Compile()
	ecsgo.ForEach2(query, position, velocity, func(e ecsgo.Entity, pos *Position, vel *Velocity) {
		pos.X += vel.X
		pos.Y += vel.Y
	})

	pos, _ := ecsgo.Get(world, e, position)
	fmt.Printf("%.0f %.0f\n", pos.X, pos.Y)
	// Output: 1 2
}
