package ecs_test

import (
	"fmt"

	"github.com/plus3/storm/ecs"
)

// ExampleWorld shows the basic entity and component lifecycle.
// Component stores are created the first time a type is used, so no
// registration is required for the generic helpers.
func ExampleWorld() {
	world := ecs.NewWorld()

	player := world.CreateEntity()
	ecs.AddComponent(world, player, Position{X: 10, Y: 20})
	ecs.AddComponent(world, player, Health{Current: 80, Max: 100})

	if hp := ecs.GetComponentMut[Health](world, player); hp != nil {
		hp.Current += 15
	}

	hp, _ := ecs.GetComponent[Health](world, player)
	fmt.Printf("health %d/%d\n", hp.Current, hp.Max)

	world.DestroyEntity(player)
	fmt.Println("alive:", world.Alive(player))
	fmt.Println("has position:", ecs.HasComponent[Position](world, player))

	// Output:
	// health 95/100
	// alive: false
	// has position: false
}

// ExampleQuery shows cached queries. A second query within the freshness
// window is served from the cache until a component of that kind changes.
func ExampleQuery() {
	world := ecs.NewWorld()
	for i := range 3 {
		ecs.AddComponent(world, world.CreateEntity(), Health{Current: 10 * (i + 1), Max: 100})
	}

	result := ecs.Query[Health](world)
	fmt.Println("matches:", result.Len())

	ecs.Query[Health](world)
	fmt.Println("cache hits:", world.Cache().Stats().Hits)

	total := 0
	for _, hp := range ecs.QueryComponents[Health](world, result) {
		total += hp.Current
	}
	fmt.Println("total health:", total)

	// Output:
	// matches: 3
	// cache hits: 1
	// total health: 60
}

// ExampleEntityId shows how stale handles are detected after an id is reused.
func ExampleEntityId() {
	world := ecs.NewWorld()

	old := world.CreateEntity()
	world.DestroyEntity(old)
	reused := world.CreateEntity()

	fmt.Println(old, reused)
	fmt.Println("same index:", old.Index() == reused.Index())
	fmt.Println("old alive:", world.Alive(old))

	// Output:
	// 1#0 1#1
	// same index: true
	// old alive: false
}
