// Package camera maps the playfield to the window.
package camera

// Camera fits the world rectangle into the viewport, keeping its aspect ratio,
// and optionally magnifies around a point of the world.
type Camera struct {
	// Position is the camera center in world units
	X, Y float32

	// Zoom multiplies the fitted scale (1.0 = whole world visible)
	Zoom float32

	// Viewport dimensions in pixels
	ViewportW, ViewportH float32

	// World dimensions in world units
	WorldW, WorldH float32

	MaxZoom float32
}

// New creates a camera showing the whole world.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	return &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		Zoom:      1.0,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   4.0,
	}
}

// PixelsPerUnit returns the current world-to-screen scale.
func (c *Camera) PixelsPerUnit() float32 {
	return min(c.ViewportW/c.WorldW, c.ViewportH/c.WorldH) * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	ppu := c.PixelsPerUnit()
	sx = c.ViewportW/2 + (wx-c.X)*ppu
	sy = c.ViewportH/2 + (wy-c.Y)*ppu
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates. Points
// outside the letterboxed world map outside [0, WorldW] x [0, WorldH].
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	ppu := c.PixelsPerUnit()
	wx = c.X + (sx-c.ViewportW/2)/ppu
	wy = c.Y + (sy-c.ViewportH/2)/ppu
	return wx, wy
}

// Scale converts a world length to pixels.
func (c *Camera) Scale(length float32) float32 {
	return length * c.PixelsPerUnit()
}

// Resize updates viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH float32) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// Pan moves the camera by the given delta in screen pixels. The center stays
// inside the world.
func (c *Camera) Pan(dx, dy float32) {
	ppu := c.PixelsPerUnit()
	c.X = clamp(c.X+dx/ppu, 0, c.WorldW)
	c.Y = clamp(c.Y+dy/ppu, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to [1, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, 1, c.MaxZoom)
	if c.Zoom == 1 {
		c.X, c.Y = c.WorldW/2, c.WorldH/2
	}
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset shows the whole world again.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = 1.0
}

// clamp restricts a value to a range.
func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
