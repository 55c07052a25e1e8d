package component

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/prefabs"
)

type Tank struct {
	ID     uint32
	Design prefabs.TankDesign
	Hull   asset.Handle[prefabs.HullData]
	Turret asset.Handle[prefabs.TurretData]

	TurretOrientation float64
	BarrelIndex       int
}

func (t *Tank) Release() {
	t.Hull.Release()
	t.Turret.Release()
}

var TankComponent = NewComponent[Tank]()

type TankRenderable struct {
	Hull   asset.Handle[assets.Texture]
	Turret asset.Handle[assets.Texture]
	Tracks [2]asset.Handle[assets.Texture]

	TurretRotation float64
	TrackAnimation [2]float64
}

func (r *TankRenderable) Release() {
	r.Hull.Release()
	r.Turret.Release()
	r.Tracks[0].Release()
	r.Tracks[1].Release()
}

var TankRenderableComponent = NewComponent[TankRenderable]()

// TankController turns TankInput into forces on the tank body.
type TankController struct {
	Movement          prefabs.MovementSettings
	Projectile        prefabs.ProjectileType
	RelTurretRotation float64
}

var TankControllerComponent = NewComponent[TankController]()

// TankInput is what a player or an AI wants the tank to do this frame.
// Shoot is consumed by the controller.
type TankInput struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Aim      cp.Vector
	Shoot    bool
}

var TankInputComponent = NewComponent[TankInput]()
