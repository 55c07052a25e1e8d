package component

import "github.com/jakecoffman/cp"

// Transform is a world-space pose. Rotation zero faces up the screen.
type Transform struct {
	Position cp.Vector
	Rotation float64
}

var TransformComponent = NewComponent[Transform]()
