package render

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/milk9111/tankgame/asset"
	"github.com/milk9111/tankgame/assets"
)

const hudFontSize = 16

// HUD draws status lines in the top left corner with the catalog font, or
// Go Regular when it fails to load.
type HUD struct {
	font asset.Handle[assets.Font]
	face text.Face
}

func NewHUD(cat *assets.Catalog, log *zap.Logger) (*HUD, error) {
	h := &HUD{}
	src, err := h.source(cat, log)
	if err != nil {
		return nil, err
	}
	h.face = &text.GoTextFace{Source: src, Size: hudFontSize}
	return h, nil
}

func (h *HUD) source(cat *assets.Catalog, log *zap.Logger) (*text.GoTextFaceSource, error) {
	if cat != nil {
		src, err := h.catalogSource(cat)
		if err == nil {
			return src, nil
		}
		if log != nil {
			log.Warn("hud font unavailable, using fallback", zap.Error(err))
		}
	}
	return text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
}

func (h *HUD) catalogSource(cat *assets.Catalog) (*text.GoTextFaceSource, error) {
	font, err := cat.Font.Acquire()
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(font.Get().Data))
	if err != nil {
		font.Release()
		return nil, err
	}
	h.font = font
	return src, nil
}

func (h *HUD) Draw(screen *ebiten.Image, lines ...string) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(10, 10)
	op.ColorScale.ScaleWithColor(color.White)
	for _, line := range lines {
		text.Draw(screen, line, h.face, op)
		op.GeoM.Translate(0, hudFontSize*1.25)
	}
}

// Close releases the catalog font.
func (h *HUD) Close() {
	h.font.Release()
}
