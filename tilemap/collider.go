package tilemap

import "github.com/jakecoffman/cp"

// Collider is a static collision shape in world units. Boxes are rotated by
// Angle around Center.
type Collider struct {
	Circle bool
	Center cp.Vector
	Width  float64
	Height float64
	Radius float64
	Angle  float64
}

// Vertices returns the corners of a box collider, counter-clockwise.
func (c Collider) Vertices() []cp.Vector {
	hw, hh := c.Width/2, c.Height/2
	rot := cp.ForAngle(c.Angle)
	corners := []cp.Vector{{X: -hw, Y: -hh}, {X: -hw, Y: hh}, {X: hw, Y: hh}, {X: hw, Y: -hh}}
	for i, v := range corners {
		corners[i] = c.Center.Add(v.Rotate(rot))
	}
	return corners
}

// BorderThickness is the half width of the walls around the map.
const BorderThickness = 0.2

// Borders returns the four walls enclosing the map.
func (m *Map) Borders() []Collider {
	w, h := m.WorldWidth, m.WorldHeight
	t := BorderThickness * 2
	return []Collider{
		{Center: cp.Vector{X: w / 2, Y: 0}, Width: w, Height: t},
		{Center: cp.Vector{X: w / 2, Y: h}, Width: w, Height: t},
		{Center: cp.Vector{X: 0, Y: h / 2}, Width: t, Height: h},
		{Center: cp.Vector{X: w, Y: h / 2}, Width: t, Height: h},
	}
}

// Colliders lays out the collision shapes of every placed tile.
func (m *Map) Colliders(ts *Tileset) []Collider {
	var out []Collider
	for _, p := range m.Placements() {
		tile := ts.Tile(p.TileID)
		if tile == nil || !tile.Solid() {
			continue
		}
		center := m.TileCenter(p, tile)
		for _, b := range tile.Boxes {
			w, h := b.Width, b.Height
			if p.FlippedDiagonally() {
				w, h = h, w
			}
			out = append(out, Collider{Center: center, Width: w, Height: h, Radius: b.Radius, Angle: p.Rotation})
		}
		for _, c := range tile.Circles {
			out = append(out, Collider{Circle: true, Center: center, Radius: c.Radius})
		}
	}
	return out
}

// TileCenter returns the world center of a placed tile.
func (m *Map) TileCenter(p Placement, tile *Tile) cp.Vector {
	if p.FlippedDiagonally() {
		// Diagonal tiles are anchored one tile higher.
		return cp.Vector{X: p.Position.X + tile.Height/2, Y: p.Position.Y + tile.Width/2 - m.TileSize}
	}
	return cp.Vector{X: p.Position.X + tile.Width/2, Y: p.Position.Y + tile.Height/2}
}
