package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/tankgame/assets"
)

// TextureCache uploads textures on first draw and drops the GPU copy when
// the texture's slot unloads.
type TextureCache struct {
	images map[assets.ID]*ebiten.Image
}

func NewTextureCache() *TextureCache {
	return &TextureCache{images: make(map[assets.ID]*ebiten.Image)}
}

func (c *TextureCache) Image(t *assets.Texture) *ebiten.Image {
	if img, ok := c.images[t.ID]; ok {
		return img
	}
	img := ebiten.NewImageFromImage(t.Image)
	c.images[t.ID] = img
	t.OnDispose(c.evict)
	return img
}

func (c *TextureCache) evict(id assets.ID) {
	if img, ok := c.images[id]; ok {
		img.Deallocate()
		delete(c.images, id)
	}
}

func (c *TextureCache) Len() int {
	return len(c.images)
}
