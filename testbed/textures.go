/*
Package testbed writes sample texture folders that exercise the material
pipeline, for the example run and for tests.
*/
package testbed

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/pbrforge/engine/renderer"
)

// TextureSet maps file names to the pattern written for them.
type TextureSet map[string]Pattern

// Pattern generates a texel for (x, y) of a w x h image.
type Pattern func(x, y, w, h int) color.NRGBA

// Solid fills the image with a single colour.
func Solid(c color.NRGBA) Pattern {
	return func(_, _, _, _ int) color.NRGBA { return c }
}

// GradientX ramps the grey level from 0 to 255 left to right.
func GradientX() Pattern {
	return func(x, _, w, _ int) color.NRGBA {
		v := uint8(0)
		if w > 1 {
			v = uint8(x * 255 / (w - 1))
		}
		return color.NRGBA{v, v, v, 255}
	}
}

// Checker alternates a and b in cells of size px.
func Checker(a, b color.NRGBA, size int) Pattern {
	return func(x, y, _, _ int) color.NRGBA {
		if ((x/size)+(y/size))%2 == 0 {
			return a
		}
		return b
	}
}

// FlatNormal is the tangent space up vector.
func FlatNormal() Pattern {
	return Solid(color.NRGBA{128, 128, 255, 255})
}

// RockMetallic is a complete metallic set using common suffixes.
func RockMetallic() TextureSet {
	return TextureSet{
		"Rock_BaseColor.png": Checker(color.NRGBA{120, 100, 80, 255}, color.NRGBA{90, 80, 70, 255}, 8),
		"Rock_Normal.png":    FlatNormal(),
		"Rock_Roughness.png": GradientX(),
		"Rock_Metallic.png":  Solid(color.NRGBA{0, 0, 0, 255}),
		"Rock_AO.png":        Solid(color.NRGBA{230, 230, 230, 255}),
	}
}

// CrystalSpecular is a specular set with a smoothness map and emission.
func CrystalSpecular() TextureSet {
	return TextureSet{
		"crystal_diffuse.png":   Solid(color.NRGBA{60, 90, 200, 255}),
		"crystal_nrm.png":       FlatNormal(),
		"crystal_specular.png":  Solid(color.NRGBA{200, 200, 200, 255}),
		"crystal_gloss.png":     GradientX(),
		"crystal_emissive.png":  Checker(color.NRGBA{0, 0, 0, 255}, color.NRGBA{80, 160, 255, 255}, 4),
		"crystal_occlusion.png": Solid(color.NRGBA{255, 255, 255, 255}),
	}
}

// Write renders every texture of set at w x h into dir and returns the
// written paths.
func Write(dir string, set TextureSet, w, h int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(set))
	for name, pattern := range set {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, pattern(x, y, w, h))
			}
		}
		data, err := renderer.EncodePNG(img)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", name, err)
		}
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Project lays out an example project under root with both sample sets and
// returns the two texture folders.
func Project(root string) ([]string, error) {
	folders := []string{
		filepath.Join(root, "Assets", "Textures", "Rock"),
		filepath.Join(root, "Assets", "Textures", "Crystal"),
	}
	if _, err := Write(folders[0], RockMetallic(), 64, 64); err != nil {
		return nil, err
	}
	if _, err := Write(folders[1], CrystalSpecular(), 32, 32); err != nil {
		return nil, err
	}
	return folders, nil
}
