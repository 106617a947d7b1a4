// Package ui draws the heads-up display over the playfield.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds HUD colors and sizes.
type Theme struct {
	PanelBg     rl.Color
	PanelBorder rl.Color
	Header      rl.Color
	Text        rl.Color
	TextDim     rl.Color
	Status      rl.Color
	BarBg       rl.Color
	BarFill     rl.Color

	Padding    int32
	LineHeight int32
	LabelWidth int32
	BarHeight  int32
	GroupWidth int32

	FontSize   int32
	HeaderSize int32
	TitleSize  int32
	TimerSize  int32
	IntroSize  int32
}

// DefaultTheme returns the HUD theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:     rl.Color{R: 18, G: 22, B: 30, A: 220},
		PanelBorder: rl.Color{R: 60, G: 68, B: 84, A: 255},
		Header:      rl.Color{R: 255, G: 220, B: 80, A: 255},
		Text:        rl.RayWhite,
		TextDim:     rl.LightGray,
		Status:      rl.Yellow,
		BarBg:       rl.Color{R: 40, G: 44, B: 52, A: 255},
		BarFill:     rl.Color{R: 100, G: 150, B: 200, A: 255},

		Padding:    10,
		LineHeight: 16,
		LabelWidth: 80,
		BarHeight:  12,
		GroupWidth: 240,

		FontSize:   12,
		HeaderSize: 14,
		TitleSize:  20,
		TimerSize:  24,
		IntroSize:  28,
	}
}
