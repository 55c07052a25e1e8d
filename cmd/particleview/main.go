// Command particleview loops one particle animation from the asset catalog.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/config"
	"github.com/milk9111/tankgame/logging"
	"github.com/milk9111/tankgame/render"
)

const size = 512

type viewer struct {
	particles     asset.Handle[assets.ParticleTextures]
	textures      *render.TextureCache
	current       int
	tick          int
	ticksPerFrame int
	scale         float64
	paused        bool
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	n := v.particles.Get().Len()
	if v.paused || n <= 1 {
		return nil
	}
	v.tick++
	if v.tick >= v.ticksPerFrame {
		v.tick = 0
		v.current = (v.current + 1) % n
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x00, 0x00, 0x00, 0xff})
	frames := v.particles.Get().Frames
	if len(frames) == 0 {
		return
	}
	img := v.textures.Image(frames[v.current])
	fw, fh := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-fw/2, -fh/2)
	op.GeoM.Scale(v.scale, v.scale)
	op.GeoM.Translate(size/2, size/2)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return size, size
}

func main() {
	root := flag.String("assets", "resources", "asset root directory")
	name := flag.String("particle", "Explosion_1", "particle set under images/particle")
	fps := flag.Int("fps", 12, "animation frames per second")
	scale := flag.Float64("scale", 2, "draw scale")
	flag.Parse()

	if err := run(*root, *name, *fps, *scale); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(root, name string, fps int, scale float64) error {
	log, err := logging.New(config.LoggingConfig{Level: "info", Format: "console"})
	if err != nil {
		return err
	}
	defer log.Sync()

	cat := assets.NewCatalog(os.DirFS(root), assets.PixelScale, log)
	defer cat.Close()

	slot, ok := cat.Particles(name)
	if !ok {
		return fmt.Errorf("unknown particle set %q", name)
	}
	h, err := slot.Acquire()
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	defer h.Release()
	log.Info("previewing", zap.String("particle", name), zap.Int("frames", h.Get().Len()))

	ticks := 1
	if fps > 0 {
		ticks = max(60/fps, 1)
	}
	v := &viewer{particles: h, textures: render.NewTextureCache(), ticksPerFrame: ticks, scale: scale}

	ebiten.SetWindowSize(size, size)
	ebiten.SetWindowTitle("Particle " + name)
	if err := ebiten.RunGame(v); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
