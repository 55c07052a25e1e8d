package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Physics PhysicsConfig `toml:"physics"`
	Assets  AssetsConfig  `toml:"assets"`
	Logging LoggingConfig `toml:"logging"`
	Game    GameConfig    `toml:"game"`
}

type WindowConfig struct {
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	Title      string `toml:"title"`
	Fullscreen bool   `toml:"fullscreen"`
}

type PhysicsConfig struct {
	Substeps   int  `toml:"substeps"`
	Iterations int  `toml:"iterations"`
	DebugDraw  bool `toml:"debug_draw"`
}

type AssetsConfig struct {
	Root       string  `toml:"root"`
	PixelScale float64 `toml:"pixel_scale"` // pixels per world unit
	Preload    bool    `toml:"preload"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

type GameConfig struct {
	Map        string `toml:"map"`
	Tileset    string `toml:"tileset"`
	PrefabDir  string `toml:"prefab_dir"`
	ScriptDir  string `toml:"script_dir"`
	TankDesign string `toml:"tank_design"` // prefab name in tanks.yaml
	Projectile string `toml:"projectile"`
	HotReload  bool   `toml:"hot_reload"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse overlays data on the defaults. name is only used in errors.
func Parse(name string, data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", name, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}
	return cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return defaults()
}

func (c *Config) validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Physics.Substeps < 1:
		return fmt.Errorf("physics substeps %d", c.Physics.Substeps)
	case c.Assets.PixelScale <= 0:
		return fmt.Errorf("pixel scale %v", c.Assets.PixelScale)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Tank Game",
		},
		Physics: PhysicsConfig{
			Substeps:   4,
			Iterations: 10,
		},
		Assets: AssetsConfig{
			Root:       "resources",
			PixelScale: 128,
			Preload:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Game: GameConfig{
			Map:        "maps/map1.tmx",
			Tileset:    "maps/tileset.tsx",
			PrefabDir:  "prefabs",
			ScriptDir:  "prefabs/scripts",
			TankDesign: "player",
			Projectile: "laser",
		},
	}
}
