package inspector

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Widget colors
var (
	ColorBarBg       = rl.Color{R: 40, G: 40, B: 40, A: 255}
	ColorBarFill     = rl.Color{R: 100, G: 180, B: 100, A: 255}
	ColorText        = rl.Color{R: 220, G: 220, B: 220, A: 255}
	ColorTextDim     = rl.Color{R: 150, G: 150, B: 150, A: 255}
	ColorAngleBg     = rl.Color{R: 50, G: 50, B: 60, A: 255}
	ColorAngleNeedle = rl.Color{R: 255, G: 200, B: 100, A: 255}
	ColorBoolOn      = rl.Color{R: 100, G: 200, B: 100, A: 255}
	ColorBoolOff     = rl.Color{R: 80, G: 80, B: 80, A: 255}
)

// DrawLabel renders a text value and returns the row height.
func DrawLabel(x, y int32, name string, value any, options map[string]string) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)
	rl.DrawText(FormatValue(value, options["fmt"]), x+100, y, 14, ColorText)
	return 18
}

// DrawBar renders a horizontal bar scaled to the max option.
func DrawBar(x, y int32, name string, value float64, options map[string]string) int32 {
	ratio := float32(min(max(value/GetMax(options), 0), 1))
	const barWidth, barHeight = 110, 14

	rl.DrawText(name, x, y, 14, ColorTextDim)
	barX := x + 100
	rl.DrawRectangle(barX, y, barWidth, barHeight, ColorBarBg)
	rl.DrawRectangle(barX, y, int32(barWidth*ratio), barHeight, ColorBarFill)
	rl.DrawText(FormatValue(value, options["fmt"]), barX+barWidth+6, y, 14, ColorText)
	return 18
}

// DrawAngle renders a heading dial for an angle in radians.
func DrawAngle(x, y int32, name string, radians float64) int32 {
	const r = 14
	rl.DrawText(name, x, y+r-7, 14, ColorTextDim)

	cx, cy := float32(x+100+r), float32(y+r)
	rl.DrawCircle(int32(cx), int32(cy), r, ColorAngleBg)
	end := rl.NewVector2(cx+r*float32(math.Cos(radians)), cy+r*float32(math.Sin(radians)))
	rl.DrawLineEx(rl.NewVector2(cx, cy), end, 2, ColorAngleNeedle)
	rl.DrawText(fmt.Sprintf("%.0f°", radians*180/math.Pi), x+100+2*r+8, y+r-7, 14, ColorText)
	return 2*r + 4
}

// DrawBool renders an on/off indicator.
func DrawBool(x, y int32, name string, value bool) int32 {
	rl.DrawText(name, x, y, 14, ColorTextDim)

	color, text := ColorBoolOff, "no"
	if value {
		color, text = ColorBoolOn, "yes"
	}
	rl.DrawRectangle(x+100, y, 14, 14, color)
	rl.DrawText(text, x+119, y, 14, color)
	return 18
}

// DrawField renders a field using its widget type and returns its height.
func DrawField(x, y int32, f Field) int32 {
	switch f.Widget {
	case WidgetBar:
		if v, ok := GetFloatValue(f.Value); ok {
			return DrawBar(x, y, f.Name, v, f.Options)
		}
	case WidgetAngle:
		if v, ok := GetFloatValue(f.Value); ok {
			return DrawAngle(x, y, f.Name, v)
		}
	case WidgetBool:
		if v, ok := f.Value.(bool); ok {
			return DrawBool(x, y, f.Name, v)
		}
	}
	return DrawLabel(x, y, f.Name, f.Value, f.Options)
}

// FieldHeight returns the height DrawField uses for f.
func FieldHeight(f Field) int32 {
	if f.Widget == WidgetAngle {
		if _, ok := GetFloatValue(f.Value); ok {
			return 32
		}
	}
	return 18
}
