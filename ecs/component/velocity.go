package component

import "github.com/jakecoffman/cp"

type Velocity struct {
	Linear  cp.Vector
	Angular float64
}

var VelocityComponent = NewComponent[Velocity]()
