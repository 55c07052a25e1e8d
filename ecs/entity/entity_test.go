package entity

import (
	"math"
	"testing"
	"testing/fstest"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/assets/assetstest"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/physics/physicstest"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/tilemap"
	"github.com/milk9111/tankgame/world"
)

func setup(t *testing.T) (*world.World, *physicstest.Engine, *assets.Catalog) {
	t.Helper()
	eng := physicstest.New()
	return world.New(eng), eng, assets.NewCatalog(assetstest.Game(), assets.PixelScale, nil)
}

func shapesOf(eng *physicstest.Engine, w *world.World, e ecs.Entity) []*physicstest.Shape {
	p := ecs.MustGet(w.Registry(), e, component.PhysicsComponent)
	var out []*physicstest.Shape
	for _, id := range eng.Body(p.Body).Shapes {
		out = append(out, eng.Shape(id))
	}
	return out
}

func count[T any](r *ecs.Registry, kind component.ComponentKind[T]) int {
	n := 0
	for range ecs.View(r, kind) {
		n++
	}
	return n
}

func TestSpawnTank(t *testing.T) {
	w, eng, cat := setup(t)
	r := w.Registry()
	design := prefabs.TankDesign{Color: 1, Hull: 2, Turret: 3, Tracks: 1}

	e, err := SpawnTank(w, cat, design, cp.Vector{X: 2, Y: 3}, true)
	require.NoError(t, err)

	tank := ecs.MustGet(r, e, component.TankComponent)
	assert.NotZero(t, tank.ID)
	assert.Equal(t, design, tank.Design)
	assert.Equal(t, cp.Vector{X: 2, Y: 3}, ecs.MustGet(r, e, component.TransformComponent).Position)
	assert.True(t, ecs.Has(r, e, component.VelocityComponent))
	assert.True(t, ecs.Has(r, e, component.TankInputComponent))
	assert.Equal(t, prefabs.DefaultMovementSettings(), ecs.MustGet(r, e, component.TankControllerComponent).Movement)

	shapes := shapesOf(eng, w, e)
	require.Len(t, shapes, 1)
	assert.InDelta(t, 1.32*TankScale, shapes[0].Width, 1e-9)
	assert.InDelta(t, 1.88*TankScale, shapes[0].Height, 1e-9)
	assert.Equal(t, 868.0, shapes[0].Def.Density)
	assert.Equal(t, uint(tank.ID), shapes[0].Def.Filter.Group)
	assert.Equal(t, physics.CategoryTank, shapes[0].Def.Filter.Categories)

	assert.Equal(t, uint(1), cat.HullData[2].Refs())
	assert.Equal(t, uint(1), cat.TurretData[3].Refs())
	assert.Equal(t, uint(1), cat.HullTextures[1][2].Refs())
	assert.Equal(t, uint(1), cat.TrackTextures[1][1].Refs())

	other, err := SpawnTank(w, cat, design, cp.Vector{}, false)
	require.NoError(t, err)
	assert.NotEqual(t, tank.ID, ecs.MustGet(r, other, component.TankComponent).ID)
	assert.False(t, ecs.Has(r, other, component.TankControllerComponent))

	r.Destroy(e)
	r.Destroy(other)
	assert.False(t, cat.HullData[2].Loaded())
	assert.False(t, cat.HullTextures[1][2].Loaded())
	assert.Zero(t, cat.TrackTextures[1][0].Refs())
	assert.Zero(t, eng.BodyCount())
}

func TestSpawnTankFailures(t *testing.T) {
	w, _, cat := setup(t)

	_, err := SpawnTank(w, cat, prefabs.TankDesign{Color: 9}, cp.Vector{}, false)
	assert.ErrorIs(t, err, prefabs.ErrInvalidDesign)

	fsys := assetstest.Game()
	delete(fsys, "images/tank/tracks/Track_1_B.png")
	broken := assets.NewCatalog(fsys, assets.PixelScale, nil)
	_, err = SpawnTank(w, broken, prefabs.TankDesign{}, cp.Vector{}, false)
	assert.Error(t, err)
	assert.Zero(t, w.Registry().Len())
	assert.Zero(t, broken.HullData[0].Refs(), "partial loads are released")
	assert.Zero(t, broken.TrackTextures[0][0].Refs())
}

func TestSpawnTankSpec(t *testing.T) {
	w, _, cat := setup(t)
	prefabCat := &prefabs.Catalog{
		Projectiles: map[string]prefabs.ProjectileType{"slow": {Sprite: prefabs.LightShell, Velocity: 1, Scale: 1}},
		Tanks: map[string]prefabs.TankSpec{"scout": {
			Design:     prefabs.TankDesign{Hull: 1},
			Movement:   prefabs.MovementSpec{MaxSpeed: 9},
			Projectile: "slow",
		}},
	}
	e, err := SpawnTankSpec(w, cat, prefabCat, "scout", cp.Vector{}, true)
	require.NoError(t, err)
	c := ecs.MustGet(w.Registry(), e, component.TankControllerComponent)
	assert.Equal(t, 9.0, c.Movement.MaxSpeed)
	assert.Equal(t, 1.0, c.Projectile.Velocity)
	assert.Equal(t, 1, ecs.MustGet(w.Registry(), e, component.TankComponent).Design.Hull)
}

func TestShootPointAlternatesBarrels(t *testing.T) {
	w, _, cat := setup(t)
	e, err := SpawnTank(w, cat, prefabs.TankDesign{}, cp.Vector{}, false)
	require.NoError(t, err)

	// Pivot 0.5 below center, barrels at (+-0.0625, -1) from the pivot.
	first := ShootPoint(w, e)
	assert.InDelta(t, -0.0625*TankScale, first.X, 1e-9)
	assert.InDelta(t, -0.5*TankScale, first.Y, 1e-9)
	second := ShootPoint(w, e)
	assert.InDelta(t, 0.0625*TankScale, second.X, 1e-9)
	assert.Equal(t, first, ShootPoint(w, e), "barrels wrap around")

	// Turning the turret a half turn mirrors the barrel offset.
	tank := ecs.MustGet(w.Registry(), e, component.TankComponent)
	tank.TurretOrientation = math.Pi
	tank.BarrelIndex = 0
	p := ShootPoint(w, e)
	assert.InDelta(t, 0.0625*TankScale, p.X, 1e-9)
	assert.InDelta(t, 1.5*TankScale, p.Y, 1e-9)
}

func TestShootSpawnsProjectileAndFlash(t *testing.T) {
	w, eng, cat := setup(t)
	r := w.Registry()
	tankEnt, err := SpawnTank(w, cat, prefabs.TankDesign{}, cp.Vector{}, false)
	require.NoError(t, err)
	ecs.MustGet(r, tankEnt, component.TankComponent).TurretOrientation = math.Pi / 2

	typ := prefabs.DefaultProjectileType()
	p, err := Shoot(w, cat, tankEnt, typ)
	require.NoError(t, err)

	proj := ecs.MustGet(r, p, component.ProjectileComponent)
	assert.Equal(t, uint64(tankEnt), proj.Shooter)
	assert.True(t, proj.JustSpawned)
	assert.Equal(t, typ.Velocity, proj.InitialVelocity)

	v := ecs.MustGet(r, p, component.VelocityComponent).Linear
	assert.InDelta(t, typ.Velocity, v.X, 1e-9, "fired along the turret")
	assert.InDelta(t, 0, v.Y, 1e-9)
	assert.InDelta(t, math.Pi/2, ecs.MustGet(r, p, component.TransformComponent).Rotation, 1e-12)

	rend := ecs.MustGet(r, p, component.ProjectileRenderableComponent)
	assert.True(t, rend.Texture.Valid())
	assert.Equal(t, 1, count(r, component.ParticleComponent.Kind()))

	shapes := shapesOf(eng, w, p)
	require.Len(t, shapes, 1)
	assert.Equal(t, physics.CategoryProjectile, shapes[0].Def.Filter.Categories)
	assert.Equal(t, physics.CategoryAll, shapes[0].Def.Filter.Mask)
	assert.Equal(t, typ.Density, shapes[0].Def.Density)
	assert.Equal(t, 0.2, eng.Body(ecs.MustGet(r, p, component.PhysicsComponent).Body).Def.AngularDamping)
}

func TestProjectileFilterAndHeadlessShots(t *testing.T) {
	w, eng, cat := setup(t)
	r := w.Registry()

	typ := prefabs.DefaultProjectileType()
	typ.AllowProjectileCollision = false
	typ.Sprite = prefabs.SniperShell
	typ.Scale = 2
	p := SpawnProjectile(w, 0, typ, cp.Vector{}, 0)
	shape := shapesOf(eng, w, p)[0]
	assert.Zero(t, shape.Def.Filter.Mask&physics.CategoryProjectile)
	assert.NotZero(t, shape.Def.Filter.Mask&physics.CategoryTank)
	assert.InDelta(t, 0.16, shape.Width, 1e-9)
	assert.InDelta(t, 0.8, shape.Height, 1e-9)

	// A tank without a renderable shoots bare projectiles.
	tankEnt, err := SpawnTank(w, cat, prefabs.TankDesign{}, cp.Vector{}, false)
	require.NoError(t, err)
	ecs.Remove(r, tankEnt, component.TankRenderableComponent)
	shot, err := Shoot(w, cat, tankEnt, prefabs.DefaultProjectileType())
	require.NoError(t, err)
	assert.False(t, ecs.Has(r, shot, component.ProjectileRenderableComponent))
	assert.Zero(t, count(r, component.ParticleComponent.Kind()))
}

func TestUpdateTankDesignSwapsChangedParts(t *testing.T) {
	w, _, cat := setup(t)
	r := w.Registry()
	e, err := SpawnTank(w, cat, prefabs.TankDesign{}, cp.Vector{}, false)
	require.NoError(t, err)
	rend := ecs.MustGet(r, e, component.TankRenderableComponent)
	hull := rend.Hull.Slot()

	require.NoError(t, UpdateTankDesign(w, cat, e, prefabs.TankDesign{Tracks: 2}))
	assert.Same(t, hull, rend.Hull.Slot(), "hull untouched")
	assert.Same(t, &cat.TrackTextures[2][0], rend.Tracks[0].Slot())
	assert.Zero(t, cat.TrackTextures[0][0].Refs())

	require.NoError(t, UpdateTankDesign(w, cat, e, prefabs.TankDesign{Color: 3, Tracks: 2, Turret: 1}))
	assert.Same(t, &cat.HullTextures[3][0], rend.Hull.Slot())
	assert.Same(t, &cat.TurretTextures[3][1], rend.Turret.Slot())
	assert.Zero(t, cat.TurretData[0].Refs())
	assert.Equal(t, uint(1), cat.TurretData[1].Refs())
	assert.Equal(t, uint(1), cat.HullData[0].Refs(), "hull data kept")
	assert.Equal(t, 1, ecs.MustGet(r, e, component.TankComponent).Design.Turret)

	assert.ErrorIs(t, UpdateTankDesign(w, cat, e, prefabs.TankDesign{Hull: -1}), prefabs.ErrInvalidDesign)
}

func TestUpdateTankDesignFailureLeavesTankUntouched(t *testing.T) {
	fsys := assetstest.Game()
	delete(fsys, "images/tank/hulls_1/Hull_02.png")
	w := world.New(physicstest.New())
	cat := assets.NewCatalog(fsys, assets.PixelScale, nil)
	r := w.Registry()

	e, err := SpawnTank(w, cat, prefabs.TankDesign{}, cp.Vector{}, false)
	require.NoError(t, err)
	tank := ecs.MustGet(r, e, component.TankComponent)
	rend := ecs.MustGet(r, e, component.TankRenderableComponent)

	// Hull data loads, the hull texture does not.
	assert.Error(t, UpdateTankDesign(w, cat, e, prefabs.TankDesign{Hull: 1, Tracks: 1}))
	assert.Equal(t, prefabs.TankDesign{}, tank.Design)
	assert.Same(t, &cat.HullData[0], tank.Hull.Slot())
	assert.Same(t, &cat.HullTextures[0][0], rend.Hull.Slot())
	assert.Same(t, &cat.TrackTextures[0][0], rend.Tracks[0].Slot())
	assert.Zero(t, cat.HullData[1].Refs(), "acquired data is released on failure")
	assert.Zero(t, cat.TrackTextures[1][0].Refs())
	assert.Equal(t, uint(1), cat.HullData[0].Refs())

	require.NoError(t, UpdateTankDesign(w, cat, e, prefabs.TankDesign{Tracks: 1}))
	assert.Same(t, &cat.TrackTextures[1][0], rend.Tracks[0].Slot())
	assert.Same(t, &cat.HullData[0], tank.Hull.Slot())
}

func TestSpawnParticle(t *testing.T) {
	w, _, cat := setup(t)
	tr := component.Transform{Position: cp.Vector{X: 1}, Rotation: 2}
	e, err := SpawnParticle(w, &cat.ParticleSmoke, tr, 10, 0.5)
	require.NoError(t, err)

	p := ecs.MustGet(w.Registry(), e, component.ParticleComponent)
	assert.Equal(t, assetstest.ParticleFrames, p.Textures.Get().Len())
	assert.Equal(t, tr, *ecs.MustGet(w.Registry(), e, component.TransformComponent))

	empty := assets.NewCatalog(fstest.MapFS{}, 0, nil)
	_, err = SpawnParticle(w, &empty.ParticleSmoke, tr, 10, 0.5)
	assert.ErrorIs(t, err, assets.ErrNoFrames)
}

const testMap = `<map orientation="orthogonal" width="2" height="2" tilewidth="128" tileheight="128">
 <tileset firstgid="1" source="Tileset.tsx"/>
 <layer id="1" width="2" height="2"><data encoding="csv">1,2,2,0</data></layer>
</map>`

const testTileset = `<tileset tilecount="2">
 <grid width="128" height="128"/>
 <tile id="0"><image width="128" height="128" source="Ground.png"/></tile>
 <tile id="1"><image width="128" height="128" source="Block.png"/><collision_box width="1" height="1"/><collision_circle radius="0.25"/></tile>
</tileset>`

func TestSpawnMap(t *testing.T) {
	fsys := assetstest.Game()
	fsys["maps/one.tmx"] = &fstest.MapFile{Data: []byte(testMap)}
	fsys["images/map/Tileset.tsx"] = &fstest.MapFile{Data: []byte(testTileset)}
	fsys["images/map/Ground.png"] = &fstest.MapFile{Data: assetstest.PNG(2, 2)}
	fsys["images/map/Block.png"] = &fstest.MapFile{Data: assetstest.PNG(2, 2)}

	eng := physicstest.New()
	w := world.New(eng)
	cat := assets.NewCatalog(fsys, assets.PixelScale, nil)
	r := w.Registry()

	e, err := LoadMap(w, cat, "maps/one.tmx", "images/map/Tileset.tsx")
	require.NoError(t, err)

	p := ecs.MustGet(r, e, component.PhysicsComponent)
	assert.False(t, p.Dynamic)
	shapes := shapesOf(eng, w, e)
	// 4 borders, then a box and a circle for each of the two blocks.
	require.Len(t, shapes, 8)
	for _, s := range shapes[:4] {
		assert.Equal(t, "polygon", s.Kind)
		assert.Equal(t, physics.CategoryMap, s.Def.Filter.Categories)
	}
	assert.Equal(t, "circle", shapes[5].Kind)
	assert.Equal(t, cp.Vector{X: 1.5, Y: 0.5}, shapes[5].Offset)

	m := ecs.MustGet(r, e, component.MapComponent)
	assert.Equal(t, 2.0, m.Map.WorldWidth)
	rend := ecs.MustGet(r, e, component.MapRenderableComponent)
	assert.Len(t, rend.Tiles, 2)
	assert.Equal(t, uint(1), cat.Tile("images/map/Block.png").Refs())

	r.Destroy(e)
	assert.Zero(t, cat.Tile("images/map/Block.png").Refs())
	assert.Zero(t, eng.BodyCount())

	parsed, err := tilemap.ParseMap([]byte(testMap), assets.PixelScale)
	require.NoError(t, err)
	ts, err := tilemap.ParseTileset([]byte(testTileset), "images/map", assets.PixelScale)
	require.NoError(t, err)
	e, err = SpawnMap(w, cat, parsed, ts)
	require.NoError(t, err)
	assert.Len(t, shapesOf(eng, w, e), 8)
	assert.Equal(t, uint(1), cat.Tile("images/map/Ground.png").Refs())
	r.Destroy(e)
	assert.Zero(t, cat.Tile("images/map/Ground.png").Refs())

	_, err = LoadMap(w, cat, "maps/missing.tmx", "images/map/Tileset.tsx")
	assert.Error(t, err)

	delete(fsys, "images/map/Block.png")
	_, err = LoadMap(w, cat, "maps/one.tmx", "images/map/Tileset.tsx")
	assert.Error(t, err)
	assert.Zero(t, cat.Tile("images/map/Ground.png").Refs(), "loaded tiles are released on failure")
}
