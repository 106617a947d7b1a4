// Package inspector draws a panel of struct fields described by inspect tags.
package inspector

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Panel dimensions
const (
	PanelWidth   = 260
	PanelPadding = 10
	HeaderHeight = 26
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 230}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
)

// Inspector shows the fields of one view struct in a panel anchored to the
// bottom left of the screen.
type Inspector struct {
	visible bool
}

// NewInspector creates a hidden inspector.
func NewInspector() *Inspector {
	return &Inspector{}
}

// Toggle shows or hides the panel.
func (ins *Inspector) Toggle() { ins.visible = !ins.visible }

// Visible reports whether the panel is shown.
func (ins *Inspector) Visible() bool { return ins.visible }

// Draw renders view under title. A nil view draws nothing.
func (ins *Inspector) Draw(title string, view any, screenHeight int32) {
	if !ins.visible {
		return
	}
	fields := ExtractFields(view)
	if fields == nil {
		return
	}

	height := int32(HeaderHeight + 2*PanelPadding)
	for _, f := range fields {
		height += FieldHeight(f)
	}
	x, y := int32(10), screenHeight-height-40

	rl.DrawRectangle(x, y, PanelWidth, height, ColorPanelBg)
	rl.DrawRectangleLinesEx(rl.NewRectangle(float32(x), float32(y), PanelWidth, float32(height)), 1, ColorPanelBorder)
	rl.DrawRectangle(x, y, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText(title, x+PanelPadding, y+6, 16, ColorHeaderText)

	y += HeaderHeight + PanelPadding
	for _, f := range fields {
		y += DrawField(x+PanelPadding, y, f)
	}
}
