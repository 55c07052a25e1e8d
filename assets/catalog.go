package assets

import (
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/prefabs"
)

// PixelScale is the default number of pixels per world unit.
const PixelScale = 128

// Catalog owns every asset slot of the game. Slots are bound on creation
// and load on first acquire. A Catalog must not be copied.
type Catalog struct {
	fsys       fs.FS
	pixelScale float64
	log        *zap.Logger

	Font               asset.Slot[Font]
	ProjectileTextures [prefabs.ProjectileSpriteCount]asset.Slot[Texture]

	HullTextures   [prefabs.TankColors][prefabs.TankHulls]asset.Slot[Texture]
	TurretTextures [prefabs.TankColors][prefabs.TankTurrets]asset.Slot[Texture]
	TrackTextures  [prefabs.TankTracks][2]asset.Slot[Texture]

	HullData   [prefabs.TankHulls]asset.Slot[prefabs.HullData]
	TurretData [prefabs.TankTurrets]asset.Slot[prefabs.TurretData]

	ParticleExhaust   [2]asset.Slot[ParticleTextures]
	ParticleExplosion [4]asset.Slot[ParticleTextures]
	ParticleFlame     asset.Slot[ParticleTextures]
	ParticleFlash     [2]asset.Slot[ParticleTextures]
	ParticleImpact    [2]asset.Slot[ParticleTextures]
	ParticleSmoke     asset.Slot[ParticleTextures]

	tiles     map[string]*asset.Slot[Texture]
	preloader asset.Preloader
}

func NewCatalog(fsys fs.FS, pixelScale float64, log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	if pixelScale <= 0 {
		pixelScale = PixelScale
	}
	c := &Catalog{
		fsys:       fsys,
		pixelScale: pixelScale,
		log:        log.Named("assets"),
		tiles:      make(map[string]*asset.Slot[Texture]),
	}

	c.Font.Bind("font/SansBlack.ttf", logged(c, func(loc string) (*Font, error) { return LoadFont(c.fsys, loc) }))

	texture := logged(c, func(loc string) (*Texture, error) { return LoadTexture(c.fsys, loc) })
	particles := logged(c, func(loc string) (*ParticleTextures, error) { return LoadParticleTextures(c.fsys, loc) })

	for i := range c.ProjectileTextures {
		c.ProjectileTextures[i].Bind(fmt.Sprintf("images/projectile/%s.png", prefabs.ProjectileSprite(i)), texture)
	}
	for color := 0; color < prefabs.TankColors; color++ {
		for i := 0; i < prefabs.TankHulls; i++ {
			c.HullTextures[color][i].Bind(fmt.Sprintf("images/tank/hulls_%d/Hull_0%d.png", color+1, i+1), texture)
		}
		for i := 0; i < prefabs.TankTurrets; i++ {
			c.TurretTextures[color][i].Bind(fmt.Sprintf("images/tank/guns_%d/Gun_0%d.png", color+1, i+1), texture)
		}
	}
	for i := 0; i < prefabs.TankTracks; i++ {
		c.TrackTextures[i][0].Bind(fmt.Sprintf("images/tank/tracks/Track_%d_A.png", i+1), texture)
		c.TrackTextures[i][1].Bind(fmt.Sprintf("images/tank/tracks/Track_%d_B.png", i+1), texture)
	}
	for i := 0; i < prefabs.TankHulls; i++ {
		c.HullData[i].Bind(fmt.Sprintf("images/tank/hulls_data/Hull_0%d.yaml", i+1), logged(c, func(loc string) (*prefabs.HullData, error) {
			return LoadHullData(c.fsys, loc, c.pixelScale)
		}))
	}
	for i := 0; i < prefabs.TankTurrets; i++ {
		c.TurretData[i].Bind(fmt.Sprintf("images/tank/guns_data/Gun_0%d.yaml", i+1), logged(c, func(loc string) (*prefabs.TurretData, error) {
			return LoadTurretData(c.fsys, loc, c.pixelScale)
		}))
	}

	bindParticles := func(slots []asset.Slot[ParticleTextures], name string) {
		for i := range slots {
			slots[i].Bind(fmt.Sprintf("images/particle/%s_%d", name, i+1), particles)
		}
	}
	bindParticles(c.ParticleExhaust[:], "Exhaust")
	bindParticles(c.ParticleExplosion[:], "Explosion")
	bindParticles(c.ParticleFlash[:], "Flash")
	bindParticles(c.ParticleImpact[:], "Shot_Impact")
	c.ParticleFlame.Bind("images/particle/Flame", particles)
	c.ParticleSmoke.Bind("images/particle/Smoke", particles)
	return c
}

func logged[T any](c *Catalog, load asset.Loader[T]) asset.Loader[T] {
	return func(location string) (*T, error) {
		start := time.Now()
		v, err := load(location)
		if err != nil {
			c.log.Warn("asset load failed", zap.String("location", location), zap.Error(err))
			return nil, err
		}
		c.log.Debug("asset loaded", zap.String("location", location), zap.Duration("took", time.Since(start)))
		return v, nil
	}
}

func (c *Catalog) PixelScale() float64 { return c.pixelScale }

func (c *Catalog) FS() fs.FS { return c.fsys }

// Tile returns the texture slot for a tileset image, creating it on first
// use. location is relative to the catalog root.
func (c *Catalog) Tile(location string) *asset.Slot[Texture] {
	if s, ok := c.tiles[location]; ok {
		return s
	}
	s := asset.NewSlot(location, logged(c, func(loc string) (*Texture, error) { return LoadTexture(c.fsys, loc) }))
	c.tiles[location] = s
	return s
}

// Impact returns the impact particle slot for a projectile particle type.
func (c *Catalog) Impact(particleType int) *asset.Slot[ParticleTextures] {
	return &c.ParticleImpact[clampIndex(particleType, len(c.ParticleImpact))]
}

// Flash returns the muzzle flash particle slot for a projectile particle
// type.
func (c *Catalog) Flash(particleType int) *asset.Slot[ParticleTextures] {
	return &c.ParticleFlash[clampIndex(particleType, len(c.ParticleFlash))]
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Particles returns a particle slot by directory name, e.g. "Explosion_2".
func (c *Catalog) Particles(name string) (*asset.Slot[ParticleTextures], bool) {
	for _, s := range c.particleSlots() {
		if s.Location() == "images/particle/"+name {
			return s, true
		}
	}
	return nil, false
}

func (c *Catalog) particleSlots() []*asset.Slot[ParticleTextures] {
	var out []*asset.Slot[ParticleTextures]
	for _, group := range [][]asset.Slot[ParticleTextures]{
		c.ParticleExhaust[:], c.ParticleExplosion[:], c.ParticleFlash[:], c.ParticleImpact[:],
	} {
		for i := range group {
			out = append(out, &group[i])
		}
	}
	return append(out, &c.ParticleFlame, &c.ParticleSmoke)
}

// Preload keeps the font, the projectile textures and every particle set
// loaded until Close.
func (c *Catalog) Preload() error {
	c.preloader.Clear()
	if err := asset.Preload(&c.preloader, &c.Font); err != nil {
		return err
	}
	for i := range c.ProjectileTextures {
		if err := asset.Preload(&c.preloader, &c.ProjectileTextures[i]); err != nil {
			return err
		}
	}
	if err := asset.PreloadAll(&c.preloader, c.particleSlots()...); err != nil {
		return err
	}
	c.log.Info("assets preloaded", zap.Int("count", c.preloader.Len()))
	return nil
}

// Close releases preloaded assets and closes every slot. It panics if any
// handle is still held.
func (c *Catalog) Close() {
	c.preloader.Clear()
	c.Font.Close()
	for i := range c.ProjectileTextures {
		c.ProjectileTextures[i].Close()
	}
	for color := range c.HullTextures {
		for i := range c.HullTextures[color] {
			c.HullTextures[color][i].Close()
		}
		for i := range c.TurretTextures[color] {
			c.TurretTextures[color][i].Close()
		}
	}
	for i := range c.TrackTextures {
		c.TrackTextures[i][0].Close()
		c.TrackTextures[i][1].Close()
	}
	for i := range c.HullData {
		c.HullData[i].Close()
	}
	for i := range c.TurretData {
		c.TurretData[i].Close()
	}
	for _, s := range c.particleSlots() {
		s.Close()
	}
	for _, s := range c.tiles {
		s.Close()
	}
}
