package tilemap

import (
	"encoding/xml"
	"fmt"
	"io/fs"
	"path"
)

// CollisionBox is a rounded rectangle in world units centered on its tile.
type CollisionBox struct {
	Width, Height float64
	Radius        float64
}

// CollisionCircle is a circle in world units centered on its tile.
type CollisionCircle struct {
	Radius float64
}

// Tile is one entry of a tileset. Image is a path inside the asset
// filesystem.
type Tile struct {
	Image   string
	Width   float64
	Height  float64
	Boxes   []CollisionBox
	Circles []CollisionCircle
}

func (t *Tile) Solid() bool {
	return len(t.Boxes) > 0 || len(t.Circles) > 0
}

// Tileset maps tile ids to images and collision shapes. GridSize is the
// world size of one grid cell, used to scale collision shapes which are
// stored in grid units.
type Tileset struct {
	GridSize float64
	Tiles    []Tile
}

// Tile returns the tile for an id, or nil when out of range.
func (ts *Tileset) Tile(id uint32) *Tile {
	if int(id) >= len(ts.Tiles) {
		return nil
	}
	return &ts.Tiles[id]
}

type tsxTileset struct {
	TileCount int       `xml:"tilecount,attr"`
	Grid      tsxGrid   `xml:"grid"`
	Tiles     []tsxTile `xml:"tile"`
}

type tsxGrid struct {
	Width  int `xml:"width,attr"`
	Height int `xml:"height,attr"`
}

type tsxTile struct {
	ID      uint32      `xml:"id,attr"`
	Image   *tsxImage   `xml:"image"`
	Boxes   []tsxBox    `xml:"collision_box"`
	Circles []tsxCircle `xml:"collision_circle"`
}

type tsxImage struct {
	Source string  `xml:"source,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type tsxBox struct {
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
	Radius float64 `xml:"radius,attr"`
}

type tsxCircle struct {
	Radius float64 `xml:"radius,attr"`
}

func LoadTileset(fsys fs.FS, location string, pixelScale float64) (*Tileset, error) {
	data, err := fs.ReadFile(fsys, location)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", location, err)
	}
	ts, err := ParseTileset(data, path.Dir(location), pixelScale)
	if err != nil {
		return nil, fmt.Errorf("tilemap: %s: %w", location, err)
	}
	return ts, nil
}

// ParseTileset decodes a tileset whose image sources are relative to dir.
func ParseTileset(data []byte, dir string, pixelScale float64) (*Tileset, error) {
	if pixelScale <= 0 {
		return nil, fmt.Errorf("%w: pixel scale %v", ErrInvalidMap, pixelScale)
	}
	var raw tsxTileset
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if raw.Grid.Width <= 0 || raw.Grid.Width != raw.Grid.Height {
		return nil, fmt.Errorf("%w: grid %dx%d", ErrInvalidMap, raw.Grid.Width, raw.Grid.Height)
	}
	if raw.TileCount < 0 {
		return nil, fmt.Errorf("%w: tile count %d", ErrInvalidMap, raw.TileCount)
	}

	grid := float64(raw.Grid.Width) / pixelScale
	ts := &Tileset{GridSize: grid, Tiles: make([]Tile, raw.TileCount)}
	for _, t := range raw.Tiles {
		if int(t.ID) >= raw.TileCount {
			return nil, fmt.Errorf("%w: tile %d outside count %d", ErrInvalidMap, t.ID, raw.TileCount)
		}
		tile := &ts.Tiles[t.ID]
		if t.Image != nil {
			tile.Image = path.Join(dir, t.Image.Source)
			tile.Width = t.Image.Width / pixelScale
			tile.Height = t.Image.Height / pixelScale
		}
		for _, b := range t.Boxes {
			tile.Boxes = append(tile.Boxes, CollisionBox{
				Width:  b.Width * grid,
				Height: b.Height * grid,
				Radius: b.Radius * grid,
			})
		}
		for _, c := range t.Circles {
			tile.Circles = append(tile.Circles, CollisionCircle{Radius: c.Radius * grid})
		}
	}
	return ts, nil
}
