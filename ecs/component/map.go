package component

import (
	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
	"github.com/milk9111/tankgame/tilemap"
)

type Map struct {
	Map     *tilemap.Map
	Tileset *tilemap.Tileset
}

var MapComponent = NewComponent[Map]()

// MapRenderable holds one texture handle per tile id used by the map.
type MapRenderable struct {
	Tiles map[uint32]asset.Handle[assets.Texture]
}

func (m *MapRenderable) Release() {
	for id, h := range m.Tiles {
		h.Release()
		delete(m.Tiles, id)
	}
}

var MapRenderableComponent = NewComponent[MapRenderable]()
