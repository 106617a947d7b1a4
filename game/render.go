package game

import (
	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/physics"
	"github.com/pthm-cable/circles/ui"
)

var (
	backgroundColor = rl.Color{R: 18, G: 20, B: 28, A: 255}
	fieldColor      = rl.Color{R: 26, G: 30, B: 40, A: 255}
	obstacleColor   = rl.Color{R: 90, G: 96, B: 110, A: 255}
	markerColor     = rl.Color{R: 200, G: 200, B: 200, A: 90}
	selectColor     = rl.Color{R: 255, G: 220, B: 80, A: 255}
)

const controlsText = "Click+Hold: Grow | < >: Speed | Left/Right: Level | R: Restart | C: Copy state | I: Inspect | SPACE: Pause"

func toRL(c components.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Draw renders the current frame.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(backgroundColor)

	g.drawField()
	g.drawBodies()
	g.drawCircles()
	g.drawPreview()
	g.drawUI()

	rl.EndDrawing()
}

// drawField draws the playfield rectangle.
func (g *Game) drawField() {
	x0, y0 := g.camera.WorldToScreen(0, 0)
	x1, y1 := g.camera.WorldToScreen(float32(g.cfg.World.Width), float32(g.cfg.World.Height))
	rl.DrawRectangleRec(rl.NewRectangle(x0, y0, x1-x0, y1-y0), fieldColor)
}

// drawBodies draws obstacles and ghost markers. Circles are drawn from their
// entities.
func (g *Game) drawBodies() {
	for _, b := range g.session.Bodies() {
		if !b.HasShape() {
			continue
		}
		pos := g.toScreen(b.Position)
		r := g.camera.Scale(float32(b.Radius))
		switch b.Role {
		case physics.RoleObstacle:
			rl.DrawCircleV(pos, r, obstacleColor)
		case physics.RoleGhost:
			rl.DrawCircleLinesV(pos, r, markerColor)
		}
	}
}

func (g *Game) drawCircles() {
	sel := g.session.Selected()
	for e := range g.session.Entities() {
		pos := g.toScreen(e.Position())
		r := g.camera.Scale(float32(e.Radius()))
		c := toRL(e.Profile().Display)
		if e.Disabled() {
			c = rl.Fade(c, 0.5)
		}
		rl.DrawCircleV(pos, r, c)

		if e == sel {
			rl.DrawRing(pos, r+2, r+4, 0, 360, 48, selectColor)
		}
	}
}

// drawPreview draws the predicted paths of the circles near the pointer.
func (g *Game) drawPreview() {
	pc := g.cfg.Preview
	r := max(g.camera.Scale(float32(pc.DotRadius)), 1)
	for _, s := range g.preview {
		c := rl.Fade(toRL(g.session.Palette().Profile(s.Color).Display), float32(pc.Alpha))
		rl.DrawCircleV(g.toScreen(s.Position), r, c)
	}
}

func (g *Game) drawUI() {
	s := g.session
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())

	status := ""
	if g.statusTicks > 0 {
		status = g.status
	}
	g.hud.Draw(ui.HUDData{
		Level:        s.Level(),
		LevelName:    s.LevelName(),
		Seconds:      s.Seconds(),
		ShowTimer:    s.Level() > 0,
		Speed:        g.stepsPerUpdate,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		Status:       status,
		ScreenWidth:  w,
		ScreenHeight: h,
	})

	var rows []ui.GroupRow
	sel := s.Selected()
	for grp := range s.Groups() {
		if len(grp.Members) == 0 {
			continue
		}
		p := s.Palette().Profile(grp.Color)
		row := ui.GroupRow{Name: p.Name, Color: toRL(p.Display), Members: len(grp.Members), Power: grp.Power}
		if sel != nil && sel.Color() == grp.Color {
			row.Selected = sel.Effective()
		}
		rows = append(rows, row)
	}
	g.hud.DrawGroups(rows, w)

	if view := s.View(); view != nil {
		g.inspect.Draw("CIRCLE", view, h)
	}
	g.hud.DrawIntro(s.IntroMessage(), s.IntroAlpha(), w, h)
	g.hud.DrawControls(w, h, controlsText)

	if !s.Completed() {
		return
	}
	msg := "Level complete"
	if !s.HasNext() {
		msg = "All levels complete"
	}
	tw := rl.MeasureText(msg, 28)
	rl.DrawText(msg, (w-tw)/2, h/2-50, 28, rl.White)
	if s.HasNext() && gui.Button(rl.NewRectangle(float32(w)/2-60, float32(h)/2, 120, 30), "Continue") {
		g.switchLevel(true)
	}
}
