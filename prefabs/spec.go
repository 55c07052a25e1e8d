package prefabs

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}
	return ParseSpec[T](filename, data)
}

func ParseSpec[T any](name string, data []byte) (T, error) {
	var zero T
	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", name, err)
	}
	return spec, nil
}

// Catalog is everything the game reads from prefab files.
type Catalog struct {
	Projectiles map[string]ProjectileType
	Tanks       map[string]TankSpec
}

// LoadCatalog reads projectiles.yaml and tanks.yaml.
func LoadCatalog() (*Catalog, error) {
	projectiles, err := LoadSpec[map[string]ProjectileType]("projectiles.yaml")
	if err != nil {
		return nil, err
	}
	tanks, err := LoadSpec[map[string]TankSpec]("tanks.yaml")
	if err != nil {
		return nil, err
	}
	for name, tank := range tanks {
		if err := tank.Design.Validate(); err != nil {
			return nil, fmt.Errorf("prefabs: tank %s: %w", name, err)
		}
		if tank.Projectile != "" {
			if _, ok := projectiles[tank.Projectile]; !ok {
				return nil, fmt.Errorf("prefabs: tank %s: unknown projectile %q", name, tank.Projectile)
			}
		}
	}
	return &Catalog{Projectiles: projectiles, Tanks: tanks}, nil
}

// Projectile returns the named projectile type, or the default type.
func (c *Catalog) Projectile(name string) ProjectileType {
	if c != nil {
		if p, ok := c.Projectiles[name]; ok {
			return p
		}
	}
	return DefaultProjectileType()
}

// Tank returns the named tank spec, or a default tank.
func (c *Catalog) Tank(name string) TankSpec {
	if c != nil {
		if t, ok := c.Tanks[name]; ok {
			return t
		}
	}
	return TankSpec{Movement: DefaultMovementSpec()}
}
