// Package tilemap reads Tiled orthogonal maps (.tmx) and tilesets (.tsx)
// and lays out their tiles in world units.
package tilemap

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"strconv"
	"strings"

	"github.com/jakecoffman/cp"
)

// Tiled stores flip flags in the top bits of a gid.
const (
	FlipDiagonal   uint32 = 1 << 29
	FlipVertical   uint32 = 1 << 30
	FlipHorizontal uint32 = 1 << 31

	TileIDMask = ^uint32(0xF << 28)
)

var ErrInvalidMap = errors.New("tilemap: invalid map")

type GridLayer struct {
	ID     int
	Width  int
	Height int
	GIDs   []uint32
}

func (l *GridLayer) At(x, y int) uint32 {
	return l.GIDs[y*l.Width+x]
}

// Object is a tile placed freely on an object layer. X and Y are in world
// units, the size is in pixels and Rotation in degrees as Tiled stores it.
type Object struct {
	GID         uint32
	X, Y        float64
	WidthPixel  float64
	HeightPixel float64
	Rotation    float64
}

type ObjectLayer struct {
	Objects []Object
}

// Layer holds exactly one of Grid or Objects.
type Layer struct {
	Grid    *GridLayer
	Objects *ObjectLayer
}

type Map struct {
	HTiles, VTiles int
	TileSize       float64
	WorldWidth     float64
	WorldHeight    float64
	FirstGID       uint32
	Layers         []Layer
}

type tmxMap struct {
	Orientation string       `xml:"orientation,attr"`
	Width       int          `xml:"width,attr"`
	Height      int          `xml:"height,attr"`
	TileWidth   int          `xml:"tilewidth,attr"`
	TileHeight  int          `xml:"tileheight,attr"`
	Tilesets    []tmxTileset `xml:"tileset"`
	Layers      []tmxLayer   `xml:",any"`
}

type tmxTileset struct {
	FirstGID uint32 `xml:"firstgid,attr"`
}

type tmxLayer struct {
	XMLName xml.Name
	ID      int         `xml:"id,attr"`
	Width   int         `xml:"width,attr"`
	Height  int         `xml:"height,attr"`
	Data    tmxData     `xml:"data"`
	Objects []tmxObject `xml:"object"`
}

type tmxData struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

type tmxObject struct {
	GID      uint32  `xml:"gid,attr"`
	X        float64 `xml:"x,attr"`
	Y        float64 `xml:"y,attr"`
	Width    float64 `xml:"width,attr"`
	Height   float64 `xml:"height,attr"`
	Rotation float64 `xml:"rotation,attr"`
}

func LoadMap(fsys fs.FS, location string, pixelScale float64) (*Map, error) {
	data, err := fs.ReadFile(fsys, location)
	if err != nil {
		return nil, fmt.Errorf("tilemap: read %s: %w", location, err)
	}
	m, err := ParseMap(data, pixelScale)
	if err != nil {
		return nil, fmt.Errorf("tilemap: %s: %w", location, err)
	}
	return m, nil
}

// ParseMap decodes a CSV encoded orthogonal map with square tiles. Grid
// layers whose size differs from the map are skipped.
func ParseMap(data []byte, pixelScale float64) (*Map, error) {
	if pixelScale <= 0 {
		return nil, fmt.Errorf("%w: pixel scale %v", ErrInvalidMap, pixelScale)
	}
	var raw tmxMap
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if raw.Orientation != "orthogonal" {
		return nil, fmt.Errorf("%w: orientation %q", ErrInvalidMap, raw.Orientation)
	}
	if raw.Width <= 0 || raw.Height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrInvalidMap, raw.Width, raw.Height)
	}
	if raw.TileWidth <= 0 || raw.TileWidth != raw.TileHeight {
		return nil, fmt.Errorf("%w: tile size %dx%d", ErrInvalidMap, raw.TileWidth, raw.TileHeight)
	}

	inv := 1 / pixelScale
	m := &Map{
		HTiles:   raw.Width,
		VTiles:   raw.Height,
		TileSize: float64(raw.TileWidth) * inv,
		FirstGID: 1,
	}
	m.WorldWidth = float64(m.HTiles) * m.TileSize
	m.WorldHeight = float64(m.VTiles) * m.TileSize
	if len(raw.Tilesets) > 0 {
		m.FirstGID = raw.Tilesets[len(raw.Tilesets)-1].FirstGID
	}

	for _, l := range raw.Layers {
		switch l.XMLName.Local {
		case "layer":
			if l.Width != raw.Width || l.Height != raw.Height {
				continue
			}
			if l.Data.Encoding != "" && l.Data.Encoding != "csv" {
				return nil, fmt.Errorf("%w: layer %d encoding %q", ErrInvalidMap, l.ID, l.Data.Encoding)
			}
			gids, err := parseCSV(l.Data.Text, l.Width*l.Height)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", l.ID, err)
			}
			m.Layers = append(m.Layers, Layer{Grid: &GridLayer{ID: l.ID, Width: l.Width, Height: l.Height, GIDs: gids}})
		case "objectgroup":
			layer := &ObjectLayer{}
			for _, o := range l.Objects {
				layer.Objects = append(layer.Objects, Object{
					GID:         o.GID,
					X:           o.X * inv,
					Y:           o.Y * inv,
					WidthPixel:  o.Width,
					HeightPixel: o.Height,
					Rotation:    o.Rotation,
				})
			}
			m.Layers = append(m.Layers, Layer{Objects: layer})
		}
	}
	return m, nil
}

func parseCSV(text string, n int) ([]uint32, error) {
	out := make([]uint32, 0, n)
	for _, field := range strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	}) {
		gid, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: gid %q", ErrInvalidMap, field)
		}
		out = append(out, uint32(gid))
	}
	if len(out) != n {
		return nil, fmt.Errorf("%w: %d gids, want %d", ErrInvalidMap, len(out), n)
	}
	return out, nil
}

// TileID strips the flip flags and the tileset offset. It reports false for
// empty cells.
func (m *Map) TileID(gid uint32) (uint32, bool) {
	id := gid & TileIDMask
	if id < m.FirstGID {
		return 0, false
	}
	return id - m.FirstGID, true
}

// Placement is one drawn tile.
type Placement struct {
	GID    uint32
	TileID uint32
	// Grid tiles are anchored at their top left corner, objects at the
	// point Tiled stores.
	Position cp.Vector
	Rotation float64 // radians
	Object   bool

	WidthPixel  float64
	HeightPixel float64
}

func (p Placement) FlippedDiagonally() bool   { return p.GID&FlipDiagonal != 0 }
func (p Placement) FlippedVertically() bool   { return p.GID&FlipVertical != 0 }
func (p Placement) FlippedHorizontally() bool { return p.GID&FlipHorizontal != 0 }

// Placements lists every non-empty tile in layer order.
func (m *Map) Placements() []Placement {
	var out []Placement
	for _, layer := range m.Layers {
		switch {
		case layer.Grid != nil:
			g := layer.Grid
			for y := 0; y < g.Height; y++ {
				for x := 0; x < g.Width; x++ {
					gid := g.At(x, y)
					id, ok := m.TileID(gid)
					if !ok {
						continue
					}
					out = append(out, Placement{
						GID:      gid,
						TileID:   id,
						Position: cp.Vector{X: float64(x) * m.TileSize, Y: float64(y) * m.TileSize},
					})
				}
			}
		case layer.Objects != nil:
			for _, o := range layer.Objects.Objects {
				id, ok := m.TileID(o.GID)
				if !ok {
					continue
				}
				out = append(out, Placement{
					GID:         o.GID,
					TileID:      id,
					Position:    cp.Vector{X: o.X, Y: o.Y},
					Rotation:    o.Rotation * math.Pi / 180,
					Object:      true,
					WidthPixel:  o.WidthPixel,
					HeightPixel: o.HeightPixel,
				})
			}
		}
	}
	return out
}

// UsedTiles returns the distinct tile ids the map places, in first-use
// order.
func (m *Map) UsedTiles() []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, p := range m.Placements() {
		if !seen[p.TileID] {
			seen[p.TileID] = true
			out = append(out, p.TileID)
		}
	}
	return out
}

// FullScreenCamera centers the map in a viewW x viewH view and returns the
// horizontal scope that fits the whole map.
func (m *Map) FullScreenCamera(viewW, viewH float64) (center cp.Vector, hScope float64) {
	center = cp.Vector{X: m.WorldWidth / 2, Y: m.WorldHeight / 2}
	if viewH <= 0 {
		return center, m.WorldWidth
	}
	viewAspect := viewW / viewH
	if m.WorldWidth/m.WorldHeight < viewAspect {
		return center, m.WorldHeight * viewAspect
	}
	return center, m.WorldWidth
}
