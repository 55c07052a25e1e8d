package component

import (
	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
)

// Particle is a one-shot sprite animation played at FPS frames per second.
type Particle struct {
	Textures      asset.Handle[assets.ParticleTextures]
	FPS           float64
	Scale         float64
	AnimationTime float64
}

// Frame is the index of the frame to show.
func (p *Particle) Frame() int {
	return int(p.AnimationTime)
}

func (p *Particle) Release() { p.Textures.Release() }

var ParticleComponent = NewComponent[Particle]()
