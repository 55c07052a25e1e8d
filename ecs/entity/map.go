package entity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/tilemap"
	"github.com/milk9111/tankgame/world"
)

// SpawnMap creates the map entity: a static body holding the border walls
// and every tile collider, plus the tile textures the map draws.
func SpawnMap(w *world.World, cat *assets.Catalog, m *tilemap.Map, ts *tilemap.Tileset) (ecs.Entity, error) {
	tiles := make(map[uint32]asset.Handle[assets.Texture])
	for _, id := range m.UsedTiles() {
		tile := ts.Tile(id)
		if tile == nil || tile.Image == "" {
			continue
		}
		h, err := cat.Tile(tile.Image).Acquire()
		if err != nil {
			for _, h := range tiles {
				h.Release()
			}
			return 0, fmt.Errorf("map: tile %d: %w", id, err)
		}
		tiles[id] = h
	}

	r := w.Registry()
	e := r.Create()
	ecs.Add(r, e, component.MapComponent, component.Map{Map: m, Tileset: ts})
	ecs.Add(r, e, component.MapRenderableComponent, component.MapRenderable{Tiles: tiles})
	ecs.Add(r, e, component.PhysicsComponent, component.Physics{})

	def := physics.DefaultShapeDef()
	def.Filter.Categories = physics.CategoryMap

	colliders := append(m.Borders(), m.Colliders(ts)...)
	for _, c := range colliders {
		if c.Circle {
			w.Bridge().AddCircle(e, def, c.Radius, c.Center)
			continue
		}
		w.Bridge().AddPolygon(e, def, c.Vertices(), c.Radius)
	}
	w.Logger().Info("map spawned",
		zap.Int("width", m.HTiles),
		zap.Int("height", m.VTiles),
		zap.Int("colliders", len(colliders)),
		zap.Int("textures", len(tiles)))
	return e, nil
}

// LoadMap reads a map and its tileset from the catalog filesystem and
// spawns it.
func LoadMap(w *world.World, cat *assets.Catalog, mapPath, tilesetPath string) (ecs.Entity, error) {
	m, err := tilemap.LoadMap(cat.FS(), mapPath, cat.PixelScale())
	if err != nil {
		return 0, err
	}
	ts, err := tilemap.LoadTileset(cat.FS(), tilesetPath, cat.PixelScale())
	if err != nil {
		return 0, err
	}
	return SpawnMap(w, cat, m, ts)
}
