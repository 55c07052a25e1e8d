package tilemap

import (
	"math"
	"testing"
	"testing/fstest"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="3" height="2" tilewidth="128" tileheight="128">
 <tileset firstgid="1" source="Tileset.tsx"/>
 <layer id="1" name="ground" width="3" height="2">
  <data encoding="csv">
1,0,2,
0,536870915,0
</data>
 </layer>
 <layer id="2" name="wrong size" width="1" height="1">
  <data encoding="csv">1</data>
 </layer>
 <objectgroup id="3" name="props">
  <object id="1" gid="3" x="64" y="256" width="128" height="128" rotation="90"/>
  <object id="2" x="1" y="1" width="5" height="5"/>
 </objectgroup>
</map>`

const sampleTileset = `<?xml version="1.0" encoding="UTF-8"?>
<tileset version="1.10" name="Tileset" tilewidth="256" tileheight="256" tilecount="3" columns="0">
 <grid orientation="orthogonal" width="128" height="128"/>
 <tile id="0">
  <image width="128" height="128" source="Ground/Ground_01.png"/>
 </tile>
 <tile id="1">
  <image width="128" height="128" source="Blocks/Block_A_01.png"/>
  <collision_box width="0.9" height="0.9" radius="0.04"/>
 </tile>
 <tile id="2">
  <image width="256" height="128" source="Blocks/Block_B_01.png"/>
  <collision_box width="2" height="1"/>
  <collision_circle radius="0.5"/>
 </tile>
 <wangsets>
  <wangset name="ground" type="corner" tile="-1"/>
 </wangsets>
</tileset>`

func TestParseMap(t *testing.T) {
	m, err := ParseMap([]byte(sampleMap), 128)
	require.NoError(t, err)

	assert.Equal(t, 3, m.HTiles)
	assert.Equal(t, 2, m.VTiles)
	assert.Equal(t, 1.0, m.TileSize)
	assert.Equal(t, 3.0, m.WorldWidth)
	assert.Equal(t, 2.0, m.WorldHeight)
	assert.Equal(t, uint32(1), m.FirstGID)

	require.Len(t, m.Layers, 2, "mis-sized grid layer is skipped")
	require.NotNil(t, m.Layers[0].Grid)
	assert.Equal(t, uint32(2), m.Layers[0].Grid.At(2, 0))
	require.NotNil(t, m.Layers[1].Objects)
	obj := m.Layers[1].Objects.Objects[0]
	assert.Equal(t, 0.5, obj.X)
	assert.Equal(t, 2.0, obj.Y)
	assert.Equal(t, 90.0, obj.Rotation)
}

func TestParseMapRejects(t *testing.T) {
	cases := map[string]string{
		"isometric":  `<map orientation="isometric" width="1" height="1" tilewidth="1" tileheight="1"/>`,
		"no size":    `<map orientation="orthogonal" tilewidth="1" tileheight="1"/>`,
		"non square": `<map orientation="orthogonal" width="1" height="1" tilewidth="1" tileheight="2"/>`,
		"short csv":  `<map orientation="orthogonal" width="2" height="1" tilewidth="1" tileheight="1"><layer width="2" height="1"><data encoding="csv">1</data></layer></map>`,
		"bad gid":    `<map orientation="orthogonal" width="1" height="1" tilewidth="1" tileheight="1"><layer width="1" height="1"><data encoding="csv">x</data></layer></map>`,
		"base64":     `<map orientation="orthogonal" width="1" height="1" tilewidth="1" tileheight="1"><layer width="1" height="1"><data encoding="base64">AQAAAA==</data></layer></map>`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseMap([]byte(doc), 1)
			assert.ErrorIs(t, err, ErrInvalidMap)
		})
	}
	_, err := ParseMap([]byte("<map"), 1)
	assert.Error(t, err)
}

func TestTileIDStripsFlags(t *testing.T) {
	m := &Map{FirstGID: 1}
	id, ok := m.TileID(FlipDiagonal | FlipHorizontal | 3)
	assert.True(t, ok)
	assert.Equal(t, uint32(2), id)

	_, ok = m.TileID(0)
	assert.False(t, ok)
}

func TestPlacements(t *testing.T) {
	m, err := ParseMap([]byte(sampleMap), 128)
	require.NoError(t, err)

	ps := m.Placements()
	require.Len(t, ps, 4)
	assert.Equal(t, cp.Vector{X: 0, Y: 0}, ps[0].Position)
	assert.Equal(t, uint32(0), ps[0].TileID)
	assert.Equal(t, cp.Vector{X: 2, Y: 0}, ps[1].Position)
	assert.True(t, ps[2].FlippedDiagonally())
	assert.Equal(t, uint32(2), ps[2].TileID)
	assert.True(t, ps[3].Object)
	assert.InDelta(t, math.Pi/2, ps[3].Rotation, 1e-12)

	assert.Equal(t, []uint32{0, 1, 2}, m.UsedTiles())
}

func TestParseTileset(t *testing.T) {
	ts, err := ParseTileset([]byte(sampleTileset), "images/map", 128)
	require.NoError(t, err)

	assert.Equal(t, 1.0, ts.GridSize)
	require.Len(t, ts.Tiles, 3)
	assert.Equal(t, "images/map/Ground/Ground_01.png", ts.Tile(0).Image)
	assert.False(t, ts.Tile(0).Solid())
	assert.Equal(t, []CollisionBox{{Width: 0.9, Height: 0.9, Radius: 0.04}}, ts.Tile(1).Boxes)
	assert.Equal(t, 2.0, ts.Tile(2).Width)
	assert.Equal(t, []CollisionCircle{{Radius: 0.5}}, ts.Tile(2).Circles)
	assert.Nil(t, ts.Tile(3))

	_, err = ParseTileset([]byte(`<tileset tilecount="1"><grid width="1" height="2"/></tileset>`), "", 1)
	assert.ErrorIs(t, err, ErrInvalidMap)
	_, err = ParseTileset([]byte(`<tileset tilecount="1"><grid width="1" height="1"/><tile id="4"/></tileset>`), "", 1)
	assert.ErrorIs(t, err, ErrInvalidMap)
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"levels/one.tmx":         {Data: []byte(sampleMap)},
		"images/map/Tileset.tsx": {Data: []byte(sampleTileset)},
	}
	m, err := LoadMap(fsys, "levels/one.tmx", 128)
	require.NoError(t, err)
	assert.Equal(t, 3, m.HTiles)

	ts, err := LoadTileset(fsys, "images/map/Tileset.tsx", 128)
	require.NoError(t, err)
	assert.Equal(t, "images/map/Blocks/Block_A_01.png", ts.Tile(1).Image)

	_, err = LoadMap(fsys, "missing.tmx", 128)
	assert.Error(t, err)
}

func TestColliders(t *testing.T) {
	m, err := ParseMap([]byte(sampleMap), 128)
	require.NoError(t, err)
	ts, err := ParseTileset([]byte(sampleTileset), "", 128)
	require.NoError(t, err)

	cs := m.Colliders(ts)
	// tile 1 at (2,0), diagonal tile 2 at (1,1) with a box and a circle,
	// object tile 2 with a box and a circle.
	require.Len(t, cs, 5)

	assert.Equal(t, cp.Vector{X: 2.5, Y: 0.5}, cs[0].Center)
	assert.Equal(t, 0.9, cs[0].Width)

	assert.Equal(t, cp.Vector{X: 1.5, Y: 1}, cs[1].Center)
	assert.Equal(t, 1.0, cs[1].Width, "diagonal flip swaps the box")
	assert.Equal(t, 2.0, cs[1].Height)
	assert.True(t, cs[2].Circle)

	assert.InDelta(t, math.Pi/2, cs[3].Angle, 1e-12)
}

func TestColliderVertices(t *testing.T) {
	c := Collider{Center: cp.Vector{X: 1, Y: 1}, Width: 2, Height: 4, Angle: math.Pi / 2}
	vs := c.Vertices()
	require.Len(t, vs, 4)
	for _, v := range vs {
		d := v.Sub(c.Center)
		assert.InDelta(t, 2, math.Abs(d.X), 1e-9)
		assert.InDelta(t, 1, math.Abs(d.Y), 1e-9)
	}
}

func TestBordersEncloseMap(t *testing.T) {
	m := &Map{WorldWidth: 10, WorldHeight: 6}
	bs := m.Borders()
	require.Len(t, bs, 4)
	assert.Equal(t, cp.Vector{X: 5, Y: 6}, bs[1].Center)
	assert.Equal(t, 2*BorderThickness, bs[3].Width)
	assert.Equal(t, 6.0, bs[3].Height)
}

func TestFullScreenCamera(t *testing.T) {
	m := &Map{WorldWidth: 20, WorldHeight: 10}

	center, scope := m.FullScreenCamera(1600, 800)
	assert.Equal(t, cp.Vector{X: 10, Y: 5}, center)
	assert.Equal(t, 20.0, scope)

	_, scope = m.FullScreenCamera(1600, 400)
	assert.Equal(t, 40.0, scope, "wide window fits height")

	_, scope = m.FullScreenCamera(800, 800)
	assert.Equal(t, 20.0, scope, "tall window fits width")
}
