package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/ecs/entity"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/world"
)

// Below these speeds an idle tank stops instead of braking.
const (
	stopSpeed        = 0.1
	stopTurningSpeed = 0.5
)

// TankControllerSystem drives tanks from their TankInput: forces along the
// hull, torque to turn, and the turret tracking the aim point.
type TankControllerSystem struct {
	cat *assets.Catalog
}

func NewTankControllerSystem(cat *assets.Catalog) *TankControllerSystem {
	return &TankControllerSystem{cat: cat}
}

func (s *TankControllerSystem) Update(w *world.World, dt float64) {
	r := w.Registry()
	var shooters []ecs.Entity

	for e, v := range ecs.View3(r, component.TankControllerComponent.Kind(), component.PhysicsComponent.Kind(), component.TankComponent.Kind()) {
		ctrl, phys, tank := v.A, v.B, v.C
		var input component.TankInput
		if in, ok := ecs.Get(r, e, component.TankInputComponent); ok {
			input = *in
			in.Shoot = false
		}

		rot := s.drive(w, e, phys, ctrl.Movement, input)
		s.aim(w, e, phys, ctrl, tank, rot, input.Aim, dt)

		if input.Shoot {
			shooters = append(shooters, e)
		}
	}

	for _, e := range shooters {
		ctrl := ecs.MustGet(r, e, component.TankControllerComponent)
		if _, err := entity.Shoot(w, s.cat, e, ctrl.Projectile); err != nil {
			w.Logger().Warn("shoot failed", zap.Stringer("tank", e), zap.Error(err))
		}
	}
}

// drive keeps the tank moving along its hull and applies the forces asked
// for by input. It returns the hull rotation.
func (s *TankControllerSystem) drive(w *world.World, e ecs.Entity, phys *component.Physics, m prefabs.MovementSettings, input component.TankInput) float64 {
	eng := w.Engine()
	_, rot := eng.Pose(phys.Body)
	vel, turning := eng.Velocity(phys.Body)

	forward := common.Forward(rot)
	speed := vel.Dot(forward)
	newVel := forward.Mult(speed)

	var force, torque float64
	switch {
	case input.Forward && !input.Backward:
		switch {
		case speed > m.MaxSpeed:
			newVel = forward.Mult(m.MaxSpeed)
		case speed >= 0:
			force = m.AccelerationForce
		default:
			force = m.BrakingForce
		}
	case input.Backward && !input.Forward:
		switch {
		case speed < -m.MaxSpeed:
			newVel = forward.Mult(-m.MaxSpeed)
		case speed <= 0:
			force = -m.AccelerationForce
		default:
			force = -m.BrakingForce
		}
	default:
		switch {
		case math.Abs(speed) < stopSpeed:
			newVel = cp.Vector{}
		case speed < 0:
			force = m.BrakingForce
		default:
			force = -m.BrakingForce
		}
	}

	left, right := input.Left, input.Right
	if speed < 0 {
		left, right = right, left
	}
	switch {
	case left && !right:
		if turning < -m.MaxTurningSpeed {
			turning = -m.MaxTurningSpeed
		} else {
			torque = -m.TurningTorque
		}
	case right && !left:
		if turning > m.MaxTurningSpeed {
			turning = m.MaxTurningSpeed
		} else {
			torque = m.TurningTorque
		}
	default:
		switch {
		case math.Abs(turning) < stopTurningSpeed:
			turning = 0
		case turning < 0:
			torque = m.TurningTorque
		default:
			torque = -m.TurningTorque
		}
	}

	eng.SetVelocity(phys.Body, newVel, turning)
	if vc, ok := ecs.Get(w.Registry(), e, component.VelocityComponent); ok {
		vc.Linear, vc.Angular = newVel, turning
	}
	mass := eng.Mass(phys.Body)
	if torque != 0 {
		eng.ApplyTorque(phys.Body, torque*mass)
	}
	if force != 0 {
		eng.ApplyForce(phys.Body, forward.Mult(mass*force))
	}
	return rot
}

// aim turns the turret toward target at the gun rotation speed. The turret
// angle is kept relative to the hull so it turns with the tank.
func (s *TankControllerSystem) aim(w *world.World, e ecs.Entity, phys *component.Physics, ctrl *component.TankController, tank *component.Tank, rot float64, target cp.Vector, dt float64) {
	pos, _ := w.Engine().Pose(phys.Body)
	want := common.Heading(target.Sub(pos))
	turn := common.NormalizeAngleDifference(rot+ctrl.RelTurretRotation, want) * ctrl.Movement.GunRotationSpeed
	ctrl.RelTurretRotation += turn * dt

	tank.TurretOrientation = rot + ctrl.RelTurretRotation
	if rend, ok := ecs.Get(w.Registry(), e, component.TankRenderableComponent); ok {
		rend.TurretRotation = tank.TurretOrientation
	}
}
