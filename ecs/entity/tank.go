package entity

import (
	"fmt"
	"sync/atomic"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/physics"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/world"
)

// TankScale shrinks tank art and hitboxes to world size.
const TankScale = 0.75

const (
	tankWidth   = 1.32
	tankHeight  = 1.88
	tankDensity = 868
)

var nextTankID atomic.Uint32

// SpawnTank creates a tank at pos. Player tanks also get a controller with
// default movement and an input component.
func SpawnTank(w *world.World, cat *assets.Catalog, design prefabs.TankDesign, pos cp.Vector, playerControl bool) (ecs.Entity, error) {
	if err := design.Validate(); err != nil {
		return 0, fmt.Errorf("tank: %w", err)
	}

	hull, err := cat.HullData[design.Hull].Acquire()
	if err != nil {
		return 0, fmt.Errorf("tank: %w", err)
	}
	turret, err := cat.TurretData[design.Turret].Acquire()
	if err != nil {
		hull.Release()
		return 0, fmt.Errorf("tank: %w", err)
	}
	renderable, err := tankRenderable(cat, design)
	if err != nil {
		hull.Release()
		turret.Release()
		return 0, fmt.Errorf("tank: %w", err)
	}

	r := w.Registry()
	e := r.Create()
	tank := ecs.Add(r, e, component.TankComponent, component.Tank{
		ID:     nextTankID.Add(1),
		Design: design,
		Hull:   hull,
		Turret: turret,
	})
	ecs.Add(r, e, component.TransformComponent, component.Transform{Position: pos})
	ecs.Add(r, e, component.VelocityComponent, component.Velocity{})
	ecs.Add(r, e, component.TankRenderableComponent, renderable)
	ecs.Add(r, e, component.PhysicsComponent, component.Physics{Dynamic: true})

	def := physics.ShapeDef{
		Density:  tankDensity,
		Friction: 0.3,
		Filter: physics.Filter{
			Group:      uint(tank.ID),
			Categories: physics.CategoryTank,
			Mask:       physics.CategoryAll,
		},
	}
	w.Bridge().AddBox(e, def, tankWidth*TankScale, tankHeight*TankScale, 0)

	if playerControl {
		AddTankController(w, e, prefabs.DefaultMovementSettings(), prefabs.DefaultProjectileType())
	}
	w.Logger().Debug("tank spawned", zap.Uint32("tank", tank.ID), zap.Stringer("entity", e), zap.Bool("player", playerControl))
	return e, nil
}

// SpawnTankSpec creates a tank from a prefab, taking movement and
// projectile from the prefab when it is player controlled.
func SpawnTankSpec(w *world.World, cat *assets.Catalog, prefabCat *prefabs.Catalog, name string, pos cp.Vector, playerControl bool) (ecs.Entity, error) {
	spec := prefabCat.Tank(name)
	e, err := SpawnTank(w, cat, spec.Design, pos, false)
	if err != nil {
		return 0, err
	}
	if playerControl {
		AddTankController(w, e, spec.Movement.Settings(), prefabCat.Projectile(spec.Projectile))
	}
	return e, nil
}

// AddTankController lets TankInput drive the tank.
func AddTankController(w *world.World, e ecs.Entity, movement prefabs.MovementSettings, projectile prefabs.ProjectileType) {
	r := w.Registry()
	ecs.Add(r, e, component.TankControllerComponent, component.TankController{
		Movement:   movement,
		Projectile: projectile,
	})
	if !ecs.Has(r, e, component.TankInputComponent) {
		ecs.Add(r, e, component.TankInputComponent, component.TankInput{})
	}
}

func tankRenderable(cat *assets.Catalog, design prefabs.TankDesign) (component.TankRenderable, error) {
	var out component.TankRenderable
	slots := []*asset.Slot[assets.Texture]{
		&cat.HullTextures[design.Color][design.Hull],
		&cat.TurretTextures[design.Color][design.Turret],
		&cat.TrackTextures[design.Tracks][0],
		&cat.TrackTextures[design.Tracks][1],
	}
	dst := []*asset.Handle[assets.Texture]{&out.Hull, &out.Turret, &out.Tracks[0], &out.Tracks[1]}
	for i, s := range slots {
		h, err := s.Acquire()
		if err != nil {
			out.Release()
			return component.TankRenderable{}, err
		}
		*dst[i] = h
	}
	return out, nil
}

// UpdateTankDesign swaps the assets of a tank whose design changed. Only
// the parts that differ are reloaded. Every new asset is acquired before
// any is swapped in, so a failure leaves the tank untouched.
func UpdateTankDesign(w *world.World, cat *assets.Catalog, e ecs.Entity, design prefabs.TankDesign) error {
	if err := design.Validate(); err != nil {
		return fmt.Errorf("tank: %w", err)
	}
	r := w.Registry()
	tank := ecs.MustGet(r, e, component.TankComponent)
	rend, hasRend := ecs.Get(r, e, component.TankRenderableComponent)
	old := tank.Design

	colorChanged := old.Color != design.Color
	hullChanged := old.Hull != design.Hull
	turretChanged := old.Turret != design.Turret
	tracksChanged := old.Tracks != design.Tracks

	var (
		hull      asset.Handle[prefabs.HullData]
		turret    asset.Handle[prefabs.TurretData]
		hullTex   asset.Handle[assets.Texture]
		turretTex asset.Handle[assets.Texture]
		tracks    [2]asset.Handle[assets.Texture]
	)
	release := func() {
		hull.Release()
		turret.Release()
		hullTex.Release()
		turretTex.Release()
		tracks[0].Release()
		tracks[1].Release()
	}
	err := func() error {
		if hullChanged {
			if err := acquire(&hull, &cat.HullData[design.Hull]); err != nil {
				return err
			}
		}
		if turretChanged {
			if err := acquire(&turret, &cat.TurretData[design.Turret]); err != nil {
				return err
			}
		}
		if !hasRend {
			return nil
		}
		if colorChanged || hullChanged {
			if err := acquire(&hullTex, &cat.HullTextures[design.Color][design.Hull]); err != nil {
				return err
			}
		}
		if colorChanged || turretChanged {
			if err := acquire(&turretTex, &cat.TurretTextures[design.Color][design.Turret]); err != nil {
				return err
			}
		}
		if tracksChanged {
			for i := range tracks {
				if err := acquire(&tracks[i], &cat.TrackTextures[design.Tracks][i]); err != nil {
					return err
				}
			}
		}
		return nil
	}()
	if err != nil {
		release()
		return fmt.Errorf("tank: %w", err)
	}

	if hullChanged {
		tank.Hull.Reset(hull)
	}
	if turretChanged {
		tank.Turret.Reset(turret)
		tank.BarrelIndex = 0
	}
	if hasRend {
		if hullTex.Slot() != nil {
			rend.Hull.Reset(hullTex)
		}
		if turretTex.Slot() != nil {
			rend.Turret.Reset(turretTex)
		}
		if tracksChanged {
			for i := range tracks {
				rend.Tracks[i].Reset(tracks[i])
			}
		}
	}
	tank.Design = design
	return nil
}

func acquire[T any](dst *asset.Handle[T], slot *asset.Slot[T]) error {
	h, err := slot.Acquire()
	if err != nil {
		return err
	}
	*dst = h
	return nil
}

// ShootPoint returns where the next projectile leaves the turret and
// advances to the next barrel.
func ShootPoint(w *world.World, e ecs.Entity) cp.Vector {
	r := w.Registry()
	tank := ecs.MustGet(r, e, component.TankComponent)
	t := ecs.MustGet(r, e, component.TransformComponent)
	hull := tank.Hull.Get()
	turret := tank.Turret.Get()

	pivot := common.Rotate(cp.Vector{Y: hull.TurretPivotY}, t.Rotation)
	tank.BarrelIndex %= len(turret.Barrels)
	barrel := turret.Barrels[tank.BarrelIndex].Sub(cp.Vector{Y: turret.PivotY})
	offset := common.Rotate(barrel, tank.TurretOrientation)
	tank.BarrelIndex++

	return t.Position.Add(pivot.Add(offset).Mult(TankScale))
}

// Shoot fires a projectile along the turret. Rendered tanks also show a
// muzzle flash and give the projectile a sprite.
func Shoot(w *world.World, cat *assets.Catalog, e ecs.Entity, typ prefabs.ProjectileType) (ecs.Entity, error) {
	r := w.Registry()
	point := ShootPoint(w, e)
	rot := ecs.MustGet(r, e, component.TankComponent).TurretOrientation
	p := SpawnProjectile(w, e, typ, point, rot)

	if !ecs.Has(r, e, component.TankRenderableComponent) {
		return p, nil
	}
	if err := AddProjectileRenderable(w, cat, p, typ); err != nil {
		return p, err
	}
	if _, err := SpawnParticle(w, cat.Flash(typ.ParticleType), component.Transform{Position: point, Rotation: rot}, EffectFPS, EffectScale); err != nil {
		return p, err
	}
	return p, nil
}
