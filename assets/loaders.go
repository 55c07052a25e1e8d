package assets

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"io/fs"
	"path"
	"strconv"

	"golang.org/x/image/font/opentype"

	"github.com/milk9111/tankgame/prefabs"
)

// MaxParticleFrames bounds the frames read for one particle animation.
const MaxParticleFrames = 256

var ErrNoFrames = errors.New("assets: no particle frames")

func LoadTexture(fsys fs.FS, location string) (*Texture, error) {
	f, err := fsys.Open(location)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", location, err)
	}
	return NewTexture(location, img), nil
}

func LoadFont(fsys fs.FS, location string) (*Font, error) {
	data, err := fs.ReadFile(fsys, location)
	if err != nil {
		return nil, err
	}
	face, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", location, err)
	}
	return &Font{Data: data, Face: face}, nil
}

// LoadParticleTextures reads dir/1.png, dir/2.png, ... up to the first
// missing frame.
func LoadParticleTextures(fsys fs.FS, dir string) (*ParticleTextures, error) {
	count := 0
	for count < MaxParticleFrames {
		if _, err := fs.Stat(fsys, frameName(dir, count)); err != nil {
			break
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}

	out := &ParticleTextures{Frames: make([]*Texture, 0, count)}
	for i := 0; i < count; i++ {
		tex, err := LoadTexture(fsys, frameName(dir, i))
		if err != nil {
			out.Dispose()
			return nil, err
		}
		out.Frames = append(out.Frames, tex)
	}
	return out, nil
}

func frameName(dir string, i int) string {
	return path.Join(dir, strconv.Itoa(i+1)+".png")
}

func LoadHullData(fsys fs.FS, location string, pixelScale float64) (*prefabs.HullData, error) {
	data, err := fs.ReadFile(fsys, location)
	if err != nil {
		return nil, err
	}
	return prefabs.ParseHullData(location, data, pixelScale)
}

func LoadTurretData(fsys fs.FS, location string, pixelScale float64) (*prefabs.TurretData, error) {
	data, err := fs.ReadFile(fsys, location)
	if err != nil {
		return nil, err
	}
	return prefabs.ParseTurretData(location, data, pixelScale)
}
