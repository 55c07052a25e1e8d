package assets

import (
	"image"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/font/opentype"
)

// ID is a stable hash of an asset location, used to key GPU-side caches.
type ID uint64

func IDOf(location string) ID {
	return ID(xxhash.Sum64String(location))
}

// Texture is a decoded image. Renderers upload it lazily and subscribe to
// Dispose to drop their copy when the slot unloads.
type Texture struct {
	ID    ID
	Image image.Image

	disposers []func(ID)
}

func NewTexture(location string, img image.Image) *Texture {
	return &Texture{ID: IDOf(location), Image: img}
}

func (t *Texture) Width() int  { return t.Image.Bounds().Dx() }
func (t *Texture) Height() int { return t.Image.Bounds().Dy() }

// OnDispose registers fn to run when the texture is unloaded.
func (t *Texture) OnDispose(fn func(ID)) {
	t.disposers = append(t.disposers, fn)
}

func (t *Texture) Dispose() {
	for _, fn := range t.disposers {
		fn(t.ID)
	}
	t.disposers = nil
}

// ParticleTextures is the ordered frame set of one particle animation.
type ParticleTextures struct {
	Frames []*Texture
}

func (p *ParticleTextures) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Frames)
}

func (p *ParticleTextures) Dispose() {
	for _, f := range p.Frames {
		f.Dispose()
	}
}

// Font keeps the raw file for text shaping alongside the parsed face.
type Font struct {
	Data []byte
	Face *opentype.Font
}
