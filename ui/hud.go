package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Level        int
	LevelName    string
	Seconds      int
	ShowTimer    bool
	Speed        int
	FPS          int32
	Paused       bool
	Status       string
	ScreenWidth  int32
	ScreenHeight int32
}

// GroupRow is one color group in the group panel.
type GroupRow struct {
	Name     string
	Color    rl.Color
	Members  int
	Power    float64
	Selected float64 // radius of the selected member, 0 if none
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the level title, timer and status line.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme
	rl.DrawText(fmt.Sprintf("%d. %s", data.Level+1, data.LevelName), t.Padding, t.Padding, t.TitleSize, t.Text)
	rl.DrawText(fmt.Sprintf("Speed: %dx | FPS: %d", data.Speed, data.FPS),
		t.Padding, t.Padding+t.TitleSize+5, t.HeaderSize, t.TextDim)

	if data.ShowTimer {
		h.renderer.DrawCentered(fmt.Sprintf("%d:%02d", data.Seconds/60, data.Seconds%60),
			t.Padding, t.TimerSize, data.ScreenWidth, t.Text)
	}

	statusY := t.Padding + t.TitleSize + t.HeaderSize + 10
	switch {
	case data.Paused:
		rl.DrawText("PAUSED", t.Padding, statusY, t.HeaderSize, t.Status)
	case data.Status != "":
		rl.DrawText(data.Status, t.Padding, statusY, t.HeaderSize, t.Status)
	}
}

// DrawIntro renders the level intro message with the given opacity.
func (h *HUD) DrawIntro(msg string, alpha float64, screenWidth, screenHeight int32) {
	if msg == "" || alpha <= 0 {
		return
	}
	t := h.renderer.Theme
	h.renderer.DrawCentered(msg, screenHeight/3, t.IntroSize, screenWidth, rl.Fade(t.Text, float32(alpha)))
}

// DrawGroups renders one power bar per group. The bar shows the share of the
// group's power held by the selected circle.
func (h *HUD) DrawGroups(rows []GroupRow, screenWidth int32) {
	if len(rows) == 0 {
		return
	}
	r := h.renderer
	width := r.Theme.GroupWidth
	height := int32(len(rows))*(r.Theme.LineHeight+2) + r.Theme.LineHeight + r.Theme.Padding*2
	x := screenWidth - width - 10
	y := int32(10)

	r.DrawPanel(x, y, width, height)
	y = r.DrawSectionHeader(x+r.Theme.Padding, y+r.Theme.Padding, "Groups")
	for _, row := range rows {
		share := float32(0)
		if row.Power > 0 {
			share = float32(row.Selected / row.Power)
		}
		y = r.DrawBar(x+r.Theme.Padding, y, fmt.Sprintf("%s x%d", row.Name, row.Members), share,
			width-2*r.Theme.Padding, row.Color)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	t := h.renderer.Theme
	rl.DrawText(controls, t.Padding, screenHeight-25, t.HeaderSize, t.TextDim)
}
