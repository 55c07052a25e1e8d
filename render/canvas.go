// Package render draws a world with ebiten.
package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/ecs/entity"
	"github.com/milk9111/tankgame/world"
)

// Canvas is the world.Canvas that draws onto an ebiten image. Call Begin
// with the frame's target before World.Render.
type Canvas struct {
	textures   *TextureCache
	pixelScale float64

	screen *ebiten.Image
	cam    common.Camera
}

func NewCanvas(textures *TextureCache, pixelScale float64) *Canvas {
	if pixelScale <= 0 {
		pixelScale = assets.PixelScale
	}
	return &Canvas{textures: textures, pixelScale: pixelScale}
}

func (c *Canvas) Begin(screen *ebiten.Image, cam common.Camera) {
	c.screen = screen
	c.cam = cam
}

func (c *Canvas) Camera() common.Camera { return c.cam }

// sprite returns a GeoM that centers t and converts its pixels to world
// units. Callers append the object transform and then call draw.
func (c *Canvas) sprite(t *assets.Texture) ebiten.GeoM {
	var g ebiten.GeoM
	g.Translate(-float64(t.Width())/2, -float64(t.Height())/2)
	g.Scale(1/c.pixelScale, 1/c.pixelScale)
	return g
}

func (c *Canvas) draw(t *assets.Texture, g ebiten.GeoM) {
	g.Translate(-c.cam.Center.X, -c.cam.Center.Y)
	s := c.cam.Scale()
	g.Scale(s, s)
	g.Translate(c.cam.ViewW/2, c.cam.ViewH/2)

	op := &ebiten.DrawImageOptions{GeoM: g}
	op.Filter = ebiten.FilterLinear
	c.screen.DrawImage(c.textures.Image(t), op)
}

func (c *Canvas) DrawMap(w *world.World) {
	r := w.Registry()
	for _, v := range ecs.View2(r, component.MapComponent.Kind(), component.MapRenderableComponent.Kind()) {
		m, rend := v.A, v.B
		for _, p := range m.Map.Placements() {
			h, ok := rend.Tiles[p.TileID]
			if !ok || !h.Valid() {
				continue
			}
			tile := m.Tileset.Tile(p.TileID)
			if tile == nil {
				continue
			}
			tex := h.Get()
			g := c.sprite(tex)
			if p.FlippedDiagonally() {
				g.Scale(1, -1)
				g.Rotate(math.Pi / 2)
			}
			if p.FlippedHorizontally() {
				g.Scale(-1, 1)
			}
			if p.FlippedVertically() {
				g.Scale(1, -1)
			}
			g.Rotate(p.Rotation)
			center := m.Map.TileCenter(p, tile)
			g.Translate(center.X, center.Y)
			c.draw(tex, g)
		}
	}
}

func (c *Canvas) DrawTanks(w *world.World) {
	r := w.Registry()
	for _, v := range ecs.View3(r, component.TankComponent.Kind(), component.TankRenderableComponent.Kind(), component.TransformComponent.Kind()) {
		tank, rend, t := v.A, v.B, v.C
		hull := tank.Hull.Get()
		turret := tank.Turret.Get()
		k := entity.TankScale * hull.Scale

		for i, side := range [2]float64{-1, 1} {
			tex := rend.Tracks[trackFrame(rend.TrackAnimation[i])].Get()
			g := c.sprite(tex)
			g.Translate(side*hull.TracksOffX, hull.TracksOffY)
			g.Scale(hull.TracksScale*k, hull.TracksScale*k)
			g.Rotate(t.Rotation)
			g.Translate(t.Position.X, t.Position.Y)
			c.draw(tex, g)
		}

		tex := rend.Hull.Get()
		g := c.sprite(tex)
		g.Scale(k, k)
		g.Rotate(t.Rotation)
		g.Translate(t.Position.X, t.Position.Y)
		c.draw(tex, g)

		kt := entity.TankScale * turret.Scale
		tex = rend.Turret.Get()
		g = c.sprite(tex)
		g.Translate(0, -turret.PivotY)
		g.Rotate(rend.TurretRotation - t.Rotation)
		g.Translate(0, hull.TurretPivotY)
		g.Scale(kt, kt)
		g.Rotate(t.Rotation)
		g.Translate(t.Position.X, t.Position.Y)
		c.draw(tex, g)
	}
}

// trackFrame alternates the two track textures as the animation counter
// advances in either direction.
func trackFrame(anim float64) int {
	return int(math.Abs(math.Floor(anim))) % 2
}

func (c *Canvas) DrawProjectiles(w *world.World) {
	r := w.Registry()
	for _, v := range ecs.View2(r, component.ProjectileRenderableComponent.Kind(), component.TransformComponent.Kind()) {
		rend, t := v.A, v.B
		tex := rend.Texture.Get()
		g := c.sprite(tex)
		g.Scale(rend.Scale, rend.Scale)
		g.Rotate(t.Rotation)
		g.Translate(t.Position.X, t.Position.Y)
		c.draw(tex, g)
	}
}

func (c *Canvas) DrawParticles(w *world.World) {
	r := w.Registry()
	for _, v := range ecs.View2(r, component.ParticleComponent.Kind(), component.TransformComponent.Kind()) {
		p, t := v.A, v.B
		frames := p.Textures.Get()
		i := p.Frame()
		if i < 0 || i >= frames.Len() {
			continue
		}
		tex := frames.Frames[i]
		g := c.sprite(tex)
		g.Scale(p.Scale, p.Scale)
		g.Rotate(t.Rotation)
		g.Translate(t.Position.X, t.Position.Y)
		c.draw(tex, g)
	}
}

var _ world.Canvas = (*Canvas)(nil)
