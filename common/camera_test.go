package common

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/stretchr/testify/assert"
)

func TestCamera(t *testing.T) {
	cam := Camera{Center: cp.Vector{X: 10, Y: 5}, HScope: 20, ViewW: 1280, ViewH: 720}
	assert.Equal(t, 64.0, cam.Scale())
	assert.InDelta(t, 11.25, cam.VScope(), 1e-9)

	x, y := cam.ToScreen(cam.Center)
	assert.Equal(t, 640.0, x)
	assert.Equal(t, 360.0, y)

	x, y = cam.ToScreen(cp.Vector{X: 0, Y: 5})
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 360.0, y)

	v := cam.ToWorld(1280, 720)
	assert.InDelta(t, 20, v.X, 1e-9)
	assert.InDelta(t, 10.625, v.Y, 1e-9)

	lo, hi := cam.Bounds()
	assert.InDelta(t, 0, lo.X, 1e-9)
	assert.InDelta(t, 20, hi.X, 1e-9)
	assert.InDelta(t, 5-11.25/2, lo.Y, 1e-9)
}

func TestCameraWithoutScope(t *testing.T) {
	cam := Camera{ViewW: 100, ViewH: 50}
	assert.Equal(t, 1.0, cam.Scale())
	v := cam.ToWorld(cam.ToScreen(cp.Vector{X: 3, Y: -2}))
	assert.Equal(t, cp.Vector{X: 3, Y: -2}, v)
}
