package common

import (
	"math"

	"github.com/jakecoffman/cp"
)

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Rotate turns v by angle radians counter-clockwise in a y-down world.
func Rotate(v cp.Vector, angle float64) cp.Vector {
	sin, cos := math.Sincos(angle)
	return cp.Vector{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos}
}

// NormalizeAngle maps angle into [-pi, pi).
func NormalizeAngle(angle float64) float64 {
	angle = math.Mod(angle+math.Pi, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	return angle - math.Pi
}

// NormalizeAngleDifference returns the shortest signed turn from one angle
// to another.
func NormalizeAngleDifference(from, to float64) float64 {
	return NormalizeAngle(to - from)
}

// Forward is the unit vector a body with rotation rot faces. Rotation zero
// faces up the screen.
func Forward(rot float64) cp.Vector {
	sin, cos := math.Sincos(rot)
	return cp.Vector{X: sin, Y: -cos}
}

// Heading is the rotation that faces along v.
func Heading(v cp.Vector) float64 {
	return math.Atan2(v.X, -v.Y)
}

func Average(points []cp.Vector) cp.Vector {
	if len(points) == 0 {
		return cp.Vector{}
	}
	var sum cp.Vector
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mult(1 / float64(len(points)))
}
