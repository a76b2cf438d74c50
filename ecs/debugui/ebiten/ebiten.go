// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	"time"

	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/storm/ecs"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
// Use this to integrate Dear ImGui rendering into Ebiten game loops.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Game implements ebiten.Game by running one scheduler frame per tick inside
// an ImGui frame. The backend is read from the world's ImguiBackend singleton.
type Game struct {
	Scheduler *ecs.Scheduler
	Backend   *ecs.Singleton[ImguiBackend]

	// FrameContext supplies the context for each frame. When nil the default
	// context is used with a budget of one tick.
	FrameContext func() ecs.FrameContext

	// DrawWorld renders game content beneath the ImGui overlay.
	DrawWorld func(screen *ebiten.Image)

	last ecs.FrameMetrics
}

func NewGame(scheduler *ecs.Scheduler) *Game {
	return &Game{
		Scheduler: scheduler,
		Backend:   ecs.NewSingleton[ImguiBackend](scheduler.World()),
	}
}

// TickContext returns the default frame context with the budget set to one Ebiten tick.
func TickContext() ecs.FrameContext {
	fc := ecs.DefaultFrameContext()
	if tps := ebiten.TPS(); tps > 0 {
		fc.FrameTimeBudget = time.Second / time.Duration(tps)
	}
	return fc
}

func (g *Game) Update() error {
	backend := g.Backend.Get()
	if backend != nil && backend.EbitenBackend != nil {
		backend.BeginFrame()
		defer backend.EndFrame()
	}

	fc := TickContext()
	if g.FrameContext != nil {
		fc = g.FrameContext()
	}
	dt := 1.0 / 60.0
	if tps := ebiten.TPS(); tps > 0 {
		dt = 1.0 / float64(tps)
	}
	g.last = g.Scheduler.Once(dt, fc)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.DrawWorld != nil {
		g.DrawWorld(screen)
	}
	if backend := g.Backend.Get(); backend != nil && backend.EbitenBackend != nil {
		backend.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if backend := g.Backend.Get(); backend != nil && backend.EbitenBackend != nil {
		backend.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}

// LastFrame returns the metrics of the most recent Update.
func (g *Game) LastFrame() ecs.FrameMetrics { return g.last }
