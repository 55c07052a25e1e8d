// Package assetstest builds in-memory asset trees for tests.
package assetstest

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing/fstest"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/milk9111/tankgame/prefabs"
)

// PNG encodes a w x h image.
func PNG(w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// HullYAML pivots the turret 64px below the hull center with tracks 32px
// to each side.
const HullYAML = "scale: 1\nturret_pivot_y: 64\ntracks_scale: 1\ntracks_off_x: 32\ntracks_off_y: 0\n"

// GunYAML has two barrels 128px ahead of the pivot, 16px apart.
const GunYAML = "scale: 1\npivot_y: 0\nbarrels:\n  - [-8, -128]\n  - [8, -128]\n"

// ParticleFrames is the frame count of every particle set in Game.
const ParticleFrames = 3

// Game returns a complete asset tree: every tank part, projectile and
// particle set the catalog binds, with tiny placeholder images.
func Game() fstest.MapFS {
	pix := PNG(4, 4)
	fsys := fstest.MapFS{
		"font/SansBlack.ttf": {Data: goregular.TTF},
	}
	add := func(name string, data []byte) { fsys[name] = &fstest.MapFile{Data: data} }

	for i := 0; i < prefabs.ProjectileSpriteCount; i++ {
		add(fmt.Sprintf("images/projectile/%s.png", prefabs.ProjectileSprite(i)), pix)
	}
	for c := 1; c <= prefabs.TankColors; c++ {
		for i := 1; i <= prefabs.TankHulls; i++ {
			add(fmt.Sprintf("images/tank/hulls_%d/Hull_0%d.png", c, i), pix)
		}
		for i := 1; i <= prefabs.TankTurrets; i++ {
			add(fmt.Sprintf("images/tank/guns_%d/Gun_0%d.png", c, i), pix)
		}
	}
	for i := 1; i <= prefabs.TankTracks; i++ {
		add(fmt.Sprintf("images/tank/tracks/Track_%d_A.png", i), pix)
		add(fmt.Sprintf("images/tank/tracks/Track_%d_B.png", i), pix)
	}
	for i := 1; i <= prefabs.TankHulls; i++ {
		add(fmt.Sprintf("images/tank/hulls_data/Hull_0%d.yaml", i), []byte(HullYAML))
	}
	for i := 1; i <= prefabs.TankTurrets; i++ {
		add(fmt.Sprintf("images/tank/guns_data/Gun_0%d.yaml", i), []byte(GunYAML))
	}
	for _, dir := range []string{
		"Exhaust_1", "Exhaust_2",
		"Explosion_1", "Explosion_2", "Explosion_3", "Explosion_4",
		"Flash_1", "Flash_2",
		"Shot_Impact_1", "Shot_Impact_2",
		"Flame", "Smoke",
	} {
		for f := 1; f <= ParticleFrames; f++ {
			add(fmt.Sprintf("images/particle/%s/%d.png", dir, f), pix)
		}
	}
	return fsys
}
