package prefabs

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type ProjectileSprite int

const (
	GrenadeShell ProjectileSprite = iota
	HeavyShell
	Laser
	LightShell
	MediumShell
	Plasma
	ShotgunShells
	SniperShell
)

// ProjectileSpriteCount is the number of projectile sprites.
const ProjectileSpriteCount = 8

var projectileSpriteNames = [ProjectileSpriteCount]string{
	"Grenade_Shell",
	"Heavy_Shell",
	"Laser",
	"Light_Shell",
	"Medium_Shell",
	"Plasma",
	"Shotgun_Shells",
	"Sniper_Shell",
}

// String returns the texture base name of the sprite.
func (s ProjectileSprite) String() string {
	if s < 0 || int(s) >= ProjectileSpriteCount {
		return fmt.Sprintf("ProjectileSprite(%d)", int(s))
	}
	return projectileSpriteNames[s]
}

func (s ProjectileSprite) Valid() bool {
	return s >= 0 && int(s) < ProjectileSpriteCount
}

// ParseProjectileSprite accepts texture names ("Heavy_Shell") and their
// snake case form ("heavy_shell").
func ParseProjectileSprite(name string) (ProjectileSprite, error) {
	for i, n := range projectileSpriteNames {
		if strings.EqualFold(n, name) {
			return ProjectileSprite(i), nil
		}
	}
	return 0, fmt.Errorf("prefabs: unknown projectile sprite %q", name)
}

func (s *ProjectileSprite) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	parsed, err := ParseProjectileSprite(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ProjectileSprite) MarshalYAML() (any, error) {
	return s.String(), nil
}

type ProjectileType struct {
	Sprite                   ProjectileSprite `yaml:"sprite"`
	Velocity                 float64          `yaml:"velocity"`
	Restitution              float64          `yaml:"restitution"`
	Density                  float64          `yaml:"density"`
	Scale                    float64          `yaml:"scale"`
	MaxCollisions            int              `yaml:"max_collisions"`
	ParticleType             int              `yaml:"particle_type"`
	FixOrientation           bool             `yaml:"fix_orientation"`
	FixVelocity              bool             `yaml:"fix_velocity"`
	AllowProjectileCollision bool             `yaml:"allow_projectile_collision"`
}

func DefaultProjectileType() ProjectileType {
	return ProjectileType{
		Sprite:                   MediumShell,
		Velocity:                 10,
		Restitution:              0.5,
		Density:                  1000,
		Scale:                    1,
		FixVelocity:              true,
		AllowProjectileCollision: true,
	}
}

// UnmarshalYAML fills fields missing from the document with the defaults.
func (p *ProjectileType) UnmarshalYAML(value *yaml.Node) error {
	type plain ProjectileType
	out := plain(DefaultProjectileType())
	if err := value.Decode(&out); err != nil {
		return err
	}
	if out.ParticleType < 0 || out.ParticleType > 1 {
		return fmt.Errorf("prefabs: particle_type %d out of range", out.ParticleType)
	}
	*p = ProjectileType(out)
	return nil
}
