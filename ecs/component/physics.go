package component

import "github.com/milk9111/tankgame/physics"

// Physics ties an entity to a rigid body. The world creates the body when
// the component is added and destroys it when the component goes away, so
// Body is only valid while the component is attached.
type Physics struct {
	Dynamic bool
	Body    physics.BodyID

	LinearDamping  float64
	AngularDamping float64
}

var PhysicsComponent = NewComponent[Physics]()
