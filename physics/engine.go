// Package physics wraps the rigid-body simulation behind an id-based Engine
// so the rest of the game never holds engine pointers.
package physics

import "github.com/jakecoffman/cp"

// BodyID identifies a body inside an Engine. Zero is the null body.
type BodyID uint64

// ShapeID identifies a shape inside an Engine. Zero is the null shape.
type ShapeID uint64

func (b BodyID) Valid() bool  { return b != 0 }
func (s ShapeID) Valid() bool { return s != 0 }

type BodyType int

const (
	Dynamic BodyType = iota
	Static
	Kinematic
)

func (t BodyType) String() string {
	switch t {
	case Dynamic:
		return "dynamic"
	case Static:
		return "static"
	case Kinematic:
		return "kinematic"
	default:
		return "unknown"
	}
}

// Collision categories used by shape filters.
const (
	CategoryMap        uint = 1 << 0
	CategoryTank       uint = 1 << 1
	CategoryProjectile uint = 1 << 2
	CategoryAll             = ^uint(0)
)

// Filter decides which shapes may collide. Shapes sharing a non-zero Group
// never collide with each other.
type Filter struct {
	Group      uint
	Categories uint
	Mask       uint
}

// DefaultFilter collides with everything.
func DefaultFilter() Filter {
	return Filter{Categories: CategoryAll, Mask: CategoryAll}
}

type BodyDef struct {
	Type            BodyType
	Position        cp.Vector
	Angle           float64
	LinearVelocity  cp.Vector
	AngularVelocity float64
	// UserData is an opaque tag returned by Engine.UserData, typically an
	// entity id.
	UserData       uint64
	LinearDamping  float64
	AngularDamping float64
}

type ShapeDef struct {
	Density    float64
	Friction   float64
	Elasticity float64
	Sensor     bool
	Filter     Filter
}

// DefaultShapeDef mirrors the defaults most shapes want.
func DefaultShapeDef() ShapeDef {
	return ShapeDef{Density: 1, Friction: 0.6, Filter: DefaultFilter()}
}

// ContactBegin reports two shapes starting to touch. Normal points from
// ShapeA toward ShapeB.
type ContactBegin struct {
	ShapeA, ShapeB ShapeID
	Points         []cp.Vector
	Normal         cp.Vector
}

// ContactEnd reports two shapes no longer touching. Either shape may have
// been destroyed already.
type ContactEnd struct {
	ShapeA, ShapeB ShapeID
}

// Engine is the rigid-body simulation consumed by the world.
type Engine interface {
	CreateBody(def BodyDef) BodyID
	DestroyBody(id BodyID)
	BodyValid(id BodyID) bool
	UserData(id BodyID) uint64

	AddBox(body BodyID, def ShapeDef, width, height, radius float64) ShapeID
	AddCircle(body BodyID, def ShapeDef, radius float64, offset cp.Vector) ShapeID
	AddPolygon(body BodyID, def ShapeDef, verts []cp.Vector, radius float64) ShapeID
	ShapeValid(id ShapeID) bool
	BodyOf(id ShapeID) BodyID

	Step(dt float64, substeps int)
	SetGravity(g cp.Vector)

	Pose(id BodyID) (cp.Vector, float64)
	Velocity(id BodyID) (cp.Vector, float64)
	SetPose(id BodyID, pos cp.Vector, angle float64)
	SetVelocity(id BodyID, linear cp.Vector, angular float64)
	ApplyForce(id BodyID, force cp.Vector)
	ApplyTorque(id BodyID, torque float64)
	Mass(id BodyID) float64

	DrainBeginContacts() []ContactBegin
	DrainEndContacts() []ContactEnd
	InContact(a, b BodyID) bool
}
