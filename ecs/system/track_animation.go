package system

import (
	"github.com/milk9111/tankgame/common"
	"github.com/milk9111/tankgame/ecs"
	"github.com/milk9111/tankgame/ecs/component"
	"github.com/milk9111/tankgame/ecs/entity"
	"github.com/milk9111/tankgame/prefabs"
	"github.com/milk9111/tankgame/world"
)

// trackStep is the distance one track frame covers at tracks scale 1.
const trackStep = 20.0 / 256.0

// TrackAnimationSystem rolls each track by the distance its side of the
// hull travelled.
type TrackAnimationSystem struct{}

func NewTrackAnimationSystem() *TrackAnimationSystem {
	return &TrackAnimationSystem{}
}

func (s *TrackAnimationSystem) Update(w *world.World, dt float64) {
	r := w.Registry()
	for e, v := range ecs.View3(r, component.TankComponent.Kind(), component.TankRenderableComponent.Kind(), component.TransformComponent.Kind()) {
		tank, rend, t := v.A, v.B, v.C
		vel, ok := ecs.Get(r, e, component.VelocityComponent)
		if !ok {
			continue
		}
		left, right, moving := TrackSpeeds(tank.Hull.Get(), t.Rotation, *vel)
		if !moving {
			continue
		}
		step := trackStep * tank.Hull.Get().TracksScale * entity.TankScale
		if step == 0 {
			continue
		}
		rend.TrackAnimation[0] += left / step * dt
		rend.TrackAnimation[1] += right / step * dt
	}
}

// TrackSpeeds returns the ground speed of the left and right tracks of a
// hull moving with vel, and false when the tank stands still.
func TrackSpeeds(hull *prefabs.HullData, rot float64, vel component.Velocity) (left, right float64, moving bool) {
	speed := vel.Linear.Dot(common.Forward(rot))
	if speed == 0 && vel.Angular == 0 {
		return 0, 0, false
	}
	if vel.Angular == 0 {
		return speed, speed, true
	}
	offset := hull.TracksOffX * hull.Scale * entity.TankScale
	if speed == 0 {
		return -offset * vel.Angular, offset * vel.Angular, true
	}
	radius := speed / vel.Angular
	return speed * (radius - offset) / radius, speed * (radius + offset) / radius, true
}
