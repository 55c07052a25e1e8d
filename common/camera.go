package common

import "github.com/jakecoffman/cp"

// Camera maps world units onto a ViewW x ViewH pixel view. HScope is the
// width of the visible world.
type Camera struct {
	Center       cp.Vector
	HScope       float64
	ViewW, ViewH float64
}

// Scale returns pixels per world unit.
func (c Camera) Scale() float64 {
	if c.HScope <= 0 {
		return 1
	}
	return c.ViewW / c.HScope
}

// VScope is the height of the visible world.
func (c Camera) VScope() float64 {
	return c.ViewH / c.Scale()
}

func (c Camera) ToScreen(v cp.Vector) (float64, float64) {
	s := c.Scale()
	return (v.X-c.Center.X)*s + c.ViewW/2, (v.Y-c.Center.Y)*s + c.ViewH/2
}

func (c Camera) ToWorld(x, y float64) cp.Vector {
	s := c.Scale()
	return cp.Vector{X: (x-c.ViewW/2)/s + c.Center.X, Y: (y-c.ViewH/2)/s + c.Center.Y}
}

// Bounds returns the visible world rectangle as min and max corners.
func (c Camera) Bounds() (cp.Vector, cp.Vector) {
	half := cp.Vector{X: c.HScope / 2, Y: c.VScope() / 2}
	return c.Center.Sub(half), c.Center.Add(half)
}
