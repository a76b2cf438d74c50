// Command ecs-stress-gen writes the components and systems exercised by ecs-stress.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"text/template"

	"golang.org/x/tools/imports"
)

type systemSpec struct {
	Index    int
	Write    int
	Read     int
	Priority int
	Parallel bool
	CPU      bool
	Memory   bool
}

type genData struct {
	Components int
	Systems    []systemSpec
}

func (d genData) ComponentIndexes() []int {
	out := make([]int, d.Components)
	for i := range out {
		out[i] = i
	}
	return out
}

// plan derives each system's component pair and scheduling traits from its index.
func plan(components, systems int) genData {
	data := genData{Components: components}
	for i := range systems {
		write := i % components
		read := (i*7 + 3) % components
		if read == write {
			read = (write + 1) % components
		}
		data.Systems = append(data.Systems, systemSpec{
			Index:    i,
			Write:    write,
			Read:     read,
			Priority: i % 5,
			Parallel: i%3 != 0,
			CPU:      i%4 == 0,
			Memory:   i%4 == 1,
		})
	}
	return data
}

const source = `// Code generated by ecs-stress-gen. DO NOT EDIT.

package main

import (
	"math/rand"

	"github.com/plus3/storm/ecs"
)

const (
	componentCount = {{.Components}}
	systemCount    = {{len .Systems}}
)
{{range .ComponentIndexes}}
type Component{{.}} struct {
	Value float64
	Ticks int
}
{{end}}
func RegisterAllGeneratedComponents(world *ecs.World) {
{{- range .ComponentIndexes}}
	ecs.RegisterComponent[Component{{.}}](world)
{{- end}}
}

var componentFactories = [componentCount]func(rng *rand.Rand) any{
{{- range .ComponentIndexes}}
	func(rng *rand.Rand) any { return Component{{.}}{Value: rng.Float64()} },
{{- end}}
}

// RandomComponents returns n distinct random components.
func RandomComponents(rng *rand.Rand, n int) []any {
	n = min(max(n, 1), componentCount)
	components := make([]any, 0, n)
	for _, i := range rng.Perm(componentCount)[:n] {
		components = append(components, componentFactories[i](rng))
	}
	return components
}

// SpawnRandomEntity spawns an entity with n distinct random components.
func SpawnRandomEntity(world *ecs.World, rng *rand.Rand, n int) ecs.EntityId {
	return world.Spawn(RandomComponents(rng, n)...)
}
{{range .Systems}}
type System{{.Index}} struct {
	Entities ecs.View[struct {
		*Component{{.Write}}
		*Component{{.Read}}
	}]
}

func (s *System{{.Index}}) Execute(frame *ecs.UpdateFrame) {
	for e := range s.Entities.Values() {
		e.Component{{.Write}}.Value += e.Component{{.Read}}.Value * frame.DeltaTime
		e.Component{{.Write}}.Ticks++
	}
}
{{end}}
func RegisterAllGeneratedSystems(scheduler *ecs.Scheduler) {
{{- range .Systems}}
	scheduler.Register(&System{{.Index}}{},
		ecs.WithPriority(ecs.Priority({{.Priority}})),
		ecs.WithParallel({{.Parallel}}),
		ecs.WithResources(ecs.ResourceHints{CPUIntensive: {{.CPU}}, MemoryIntensive: {{.Memory}}}),
	)
{{- end}}
}
`

var tmpl = template.Must(template.New("generated").Parse(source))

// generate renders and formats the generated file.
func generate(components, systems int) ([]byte, error) {
	if components < 2 {
		return nil, fmt.Errorf("need at least 2 components, got %d", components)
	}
	if systems < 0 {
		return nil, fmt.Errorf("negative system count %d", systems)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, plan(components, systems)); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	out, err := imports.Process("generated.go", buf.Bytes(), nil)
	if err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}
	return out, nil
}

func main() {
	components := flag.Int("components", 250, "Number of component types to generate.")
	systems := flag.Int("systems", 50, "Number of systems to generate.")
	out := flag.String("out", "cmd/ecs-stress/generated.go", "Output file.")
	flag.Parse()

	src, err := generate(*components, *systems)
	if err != nil {
		log.Fatalf("generate: %v", err)
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	log.Printf("wrote %s: %d components, %d systems", *out, *components, *systems)
}
