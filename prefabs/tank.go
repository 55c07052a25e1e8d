package prefabs

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"gopkg.in/yaml.v3"
)

const (
	TankColors  = 4
	TankHulls   = 8
	TankTurrets = 8
	TankTracks  = 4
)

var ErrInvalidDesign = errors.New("prefabs: invalid tank design")

type TankDesign struct {
	Color  int `yaml:"color"`
	Hull   int `yaml:"hull"`
	Turret int `yaml:"turret"`
	Tracks int `yaml:"tracks"`
}

func (d TankDesign) Validate() error {
	switch {
	case d.Color < 0 || d.Color >= TankColors:
		return fmt.Errorf("%w: color %d", ErrInvalidDesign, d.Color)
	case d.Hull < 0 || d.Hull >= TankHulls:
		return fmt.Errorf("%w: hull %d", ErrInvalidDesign, d.Hull)
	case d.Turret < 0 || d.Turret >= TankTurrets:
		return fmt.Errorf("%w: turret %d", ErrInvalidDesign, d.Turret)
	case d.Tracks < 0 || d.Tracks >= TankTracks:
		return fmt.Errorf("%w: tracks %d", ErrInvalidDesign, d.Tracks)
	}
	return nil
}

// MovementSettings drive the tank controller. Angles are in radians.
type MovementSettings struct {
	MaxSpeed          float64
	AccelerationForce float64
	BrakingForce      float64
	MaxTurningSpeed   float64
	TurningTorque     float64
	GunRotationSpeed  float64
}

// MovementSpec is the file form of MovementSettings with angles in degrees.
type MovementSpec struct {
	MaxSpeed          float64 `yaml:"max_speed"`
	AccelerationForce float64 `yaml:"acceleration_force"`
	BrakingForce      float64 `yaml:"braking_force"`
	MaxTurningSpeed   float64 `yaml:"max_turning_speed_deg"`
	TurningTorque     float64 `yaml:"turning_torque_deg"`
	GunRotationSpeed  float64 `yaml:"gun_rotation_speed"`
}

func DefaultMovementSpec() MovementSpec {
	return MovementSpec{
		MaxSpeed:          2,
		AccelerationForce: 2,
		BrakingForce:      8,
		MaxTurningSpeed:   80,
		TurningTorque:     200,
		GunRotationSpeed:  5,
	}
}

func (m MovementSpec) Settings() MovementSettings {
	return MovementSettings{
		MaxSpeed:          m.MaxSpeed,
		AccelerationForce: m.AccelerationForce,
		BrakingForce:      m.BrakingForce,
		MaxTurningSpeed:   m.MaxTurningSpeed * math.Pi / 180,
		TurningTorque:     m.TurningTorque * math.Pi / 180,
		GunRotationSpeed:  m.GunRotationSpeed,
	}
}

func DefaultMovementSettings() MovementSettings {
	return DefaultMovementSpec().Settings()
}

type TankSpec struct {
	Design     TankDesign   `yaml:"design"`
	Movement   MovementSpec `yaml:"movement"`
	Projectile string       `yaml:"projectile"`
}

func (t *TankSpec) UnmarshalYAML(value *yaml.Node) error {
	type plain TankSpec
	out := plain{Movement: DefaultMovementSpec()}
	if err := value.Decode(&out); err != nil {
		return err
	}
	*t = TankSpec(out)
	return nil
}

// HullData is hull geometry in world units.
type HullData struct {
	Scale        float64
	TurretPivotY float64
	TracksScale  float64
	TracksOffX   float64
	TracksOffY   float64
}

type hullDataSpec struct {
	Scale        float64 `yaml:"scale"`
	TurretPivotY float64 `yaml:"turret_pivot_y"`
	TracksScale  float64 `yaml:"tracks_scale"`
	TracksOffX   float64 `yaml:"tracks_off_x"`
	TracksOffY   float64 `yaml:"tracks_off_y"`
}

// ParseHullData reads a hull file whose offsets are in pixels.
func ParseHullData(name string, data []byte, pixelScale float64) (*HullData, error) {
	spec, err := ParseSpec[hullDataSpec](name, data)
	if err != nil {
		return nil, err
	}
	if pixelScale <= 0 {
		return nil, fmt.Errorf("prefabs: %s: pixel scale %v", name, pixelScale)
	}
	inv := 1 / pixelScale
	return &HullData{
		Scale:        spec.Scale,
		TurretPivotY: spec.TurretPivotY * inv,
		TracksScale:  spec.TracksScale,
		TracksOffX:   spec.TracksOffX * inv,
		TracksOffY:   spec.TracksOffY * inv,
	}, nil
}

// TurretData is turret geometry in world units.
type TurretData struct {
	Scale   float64
	PivotY  float64
	Barrels []cp.Vector
}

type turretDataSpec struct {
	Scale   float64      `yaml:"scale"`
	PivotY  float64      `yaml:"pivot_y"`
	Barrels [][2]float64 `yaml:"barrels"`
}

func ParseTurretData(name string, data []byte, pixelScale float64) (*TurretData, error) {
	spec, err := ParseSpec[turretDataSpec](name, data)
	if err != nil {
		return nil, err
	}
	if pixelScale <= 0 {
		return nil, fmt.Errorf("prefabs: %s: pixel scale %v", name, pixelScale)
	}
	if len(spec.Barrels) == 0 {
		return nil, fmt.Errorf("prefabs: %s: turret has no barrels", name)
	}
	inv := 1 / pixelScale
	out := &TurretData{Scale: spec.Scale, PivotY: spec.PivotY * inv}
	for _, b := range spec.Barrels {
		out.Barrels = append(out.Barrels, cp.Vector{X: b[0] * inv, Y: b[1] * inv})
	}
	return out, nil
}
