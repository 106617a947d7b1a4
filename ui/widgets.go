package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderSize, r.Theme.Header)
	return y + r.Theme.LineHeight
}

// DrawBar draws a labeled [0, 1] bar filled with color and returns the new Y
// position. A zero color uses the theme fill.
func (r *Renderer) DrawBar(x, y int32, label string, value float32, width int32, color rl.Color) int32 {
	value = min(max(value, 0), 1)
	if color == (rl.Color{}) {
		color = r.Theme.BarFill
	}

	barX := x + r.Theme.LabelWidth
	barWidth := width - r.Theme.LabelWidth - 50

	rl.DrawText(label, x, y, r.Theme.FontSize, r.Theme.TextDim)
	rl.DrawRectangle(barX, y+2, barWidth, r.Theme.BarHeight, r.Theme.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*value), r.Theme.BarHeight, color)
	rl.DrawText(fmt.Sprintf("%.2f", value), barX+barWidth+5, y, r.Theme.FontSize, r.Theme.Text)

	return y + r.Theme.LineHeight + 2
}

// DrawCentered draws text centered horizontally at y.
func (r *Renderer) DrawCentered(text string, y, fontSize, screenWidth int32, color rl.Color) {
	w := rl.MeasureText(text, fontSize)
	rl.DrawText(text, (screenWidth-w)/2, y, fontSize, color)
}
