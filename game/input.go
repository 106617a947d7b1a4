package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"
)

// handleInput processes mouse and keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpdate > 1 {
		g.stepsPerUpdate--
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpdate < 10 {
		g.stepsPerUpdate++
	}

	switch {
	case rl.IsKeyPressed(rl.KeyRight), rl.IsKeyPressed(rl.KeyN):
		g.switchLevel(true)
	case rl.IsKeyPressed(rl.KeyLeft), rl.IsKeyPressed(rl.KeyP):
		g.switchLevel(false)
	case rl.IsKeyPressed(rl.KeyR):
		g.restart()
	}
	if rl.IsKeyPressed(rl.KeyC) {
		g.copyState()
	}
	if rl.IsKeyPressed(rl.KeyI) {
		g.inspect.Toggle()
	}

	g.handleCameraInput()

	if g.autoplay != nil {
		return
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		g.session.SelectAt(g.toWorld(rl.GetMousePosition()))
	}
	g.session.SetHeld(rl.IsMouseButtonDown(rl.MouseButtonLeft))
}

// handleResize propagates window size changes to the camera.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	g.camera.Resize(float32(rl.GetScreenWidth()), float32(rl.GetScreenHeight()))
}

// handleCameraInput zooms with the mouse wheel and pans with the middle button.
func (g *Game) handleCameraInput() {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		g.camera.ZoomBy(1 + wheel*0.1)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonMiddle) {
		d := rl.GetMouseDelta()
		g.camera.Pan(-d.X, -d.Y)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		g.camera.Reset()
	}
}

func (g *Game) toScreen(p r2.Vec) rl.Vector2 {
	sx, sy := g.camera.WorldToScreen(float32(p.X), float32(p.Y))
	return rl.NewVector2(sx, sy)
}

func (g *Game) toWorld(v rl.Vector2) r2.Vec {
	wx, wy := g.camera.ScreenToWorld(v.X, v.Y)
	return r2.Vec{X: float64(wx), Y: float64(wy)}
}
