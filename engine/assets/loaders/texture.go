package loaders

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// supported image extensions regex
var supportedImageRegex = regexp.MustCompile(`(?i)\.(?:png|jpe?g|gif|bmp|tiff?|webp|tga|dds)$`)

// IsSupportedImage reports whether the texture loader can decode the file.
func IsSupportedImage(path string) bool {
	return supportedImageRegex.MatchString(path)
}

// TextureLoadParams selects between a full decode and a header-only read.
type TextureLoadParams struct {
	HeaderOnly bool
}

type TextureLoader struct{}

func (tl *TextureLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	headerOnly := false
	if p, ok := params.(*TextureLoadParams); ok && p != nil {
		headerOnly = p.HeaderOnly
	}

	res := &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     metadata.ResourceTypeTexture,
		DataSize: uint64(len(data)),
	}
	if headerOnly {
		cfg, err := DecodeImageConfig(data, filepath.Ext(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		res.Data = cfg
		return res, nil
	}

	img, err := DecodeImage(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Data = img
	return res, nil
}

func (tl *TextureLoader) Unload(*metadata.Resource) error {
	return nil
}

// DecodeImage decodes by extension, falling back to the format sniffed from
// the leading bytes when the extension lies about the content.
func DecodeImage(data []byte, ext string) (image.Image, error) {
	img, err := decodeByExtension(data, ext)
	if err == nil {
		return img, nil
	}
	detected := detectImageExtension(data)
	if detected != "" && detected != normalizeExtension(ext) {
		core.LogDebug("extension %s does not match content %s, retrying", ext, detected)
		if fallback, fallbackErr := decodeByExtension(data, detected); fallbackErr == nil {
			return fallback, nil
		}
	}
	return nil, err
}

// DecodeImageConfig reads only the dimensions and colour model.
func DecodeImageConfig(data []byte, ext string) (image.Config, error) {
	r := bytes.NewReader(data)
	switch normalizeExtension(ext) {
	case ".png":
		return png.DecodeConfig(r)
	case ".jpg":
		return jpeg.DecodeConfig(r)
	case ".gif":
		return gif.DecodeConfig(r)
	case ".bmp":
		return bmp.DecodeConfig(r)
	case ".tif":
		return tiff.DecodeConfig(r)
	case ".webp":
		return webp.DecodeConfig(r)
	case ".tga":
		return tga.DecodeConfig(r)
	case ".dds":
		return DecodeDDSConfig(r)
	}
	return image.Config{}, fmt.Errorf("%w: %s", core.ErrUnsupportedImage, ext)
}

func decodeByExtension(data []byte, ext string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch normalizeExtension(ext) {
	case ".png":
		return png.Decode(r)
	case ".jpg":
		return jpeg.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".tif":
		return tiff.Decode(r)
	case ".webp":
		return webp.Decode(r)
	case ".tga":
		return tga.Decode(r)
	case ".dds":
		return DecodeDDS(r)
	}
	return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedImage, ext)
}

func normalizeExtension(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	switch e {
	case ".jpeg":
		return ".jpg"
	case ".tiff":
		return ".tif"
	}
	return e
}

// detectImageExtension guesses the format from the file signature. TGA has
// no signature and is never detected.
func detectImageExtension(data []byte) string {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}):
		return ".png"
	case len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return ".jpg"
	case len(data) >= 6 && (string(data[:6]) == "GIF87a" || string(data[:6]) == "GIF89a"):
		return ".gif"
	case len(data) >= 2 && data[0] == 'B' && data[1] == 'M':
		return ".bmp"
	case len(data) >= 4 && (string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*"):
		return ".tif"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return ".webp"
	case len(data) >= 4 && string(data[:4]) == ddsMagic:
		return ".dds"
	}
	return ""
}
