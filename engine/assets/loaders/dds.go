package loaders

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/mauserzjeh/dxt"
	"github.com/spaghettifunk/pbrforge/engine/core"
)

const (
	ddsMagic      = "DDS "
	ddsHeaderSize = 124

	// MaxDDSDimension is the largest width or height accepted from a DDS
	// header, the Direct3D 11 texture limit.
	MaxDDSDimension = 16384

	ddpfAlphaPixels = 0x1
	ddpfFourCC      = 0x4
	ddpfRGB         = 0x40
)

type ddsPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      [4]byte
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type ddsHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       ddsPixelFormat
	Caps              [4]uint32
	Reserved2         uint32
}

func readDDSHeader(r io.Reader) (*ddsHeader, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, err
	}
	if string(magic) != ddsMagic {
		return nil, fmt.Errorf("invalid dds magic: %q", magic)
	}
	h := &ddsHeader{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if h.Size != ddsHeaderSize {
		return nil, fmt.Errorf("invalid dds header size %d", h.Size)
	}
	if h.Width == 0 || h.Height == 0 || h.Width > MaxDDSDimension || h.Height > MaxDDSDimension {
		return nil, fmt.Errorf("%w: dds size %dx%d out of range", core.ErrUnsupportedImage, h.Width, h.Height)
	}
	return h, nil
}

// DecodeDDSConfig reads the dimensions of a DDS file.
func DecodeDDSConfig(r io.Reader) (image.Config, error) {
	h, err := readDDSHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// DecodeDDS decodes the top mip of a DXT1, DXT5 or uncompressed 32 bit DDS file.
func DecodeDDS(r io.Reader) (image.Image, error) {
	h, err := readDDSHeader(r)
	if err != nil {
		return nil, err
	}
	w, ht := h.Width, h.Height
	pf := h.PixelFormat

	var pix []byte
	switch {
	case pf.Flags&ddpfFourCC != 0:
		fourCC := string(pf.FourCC[:])
		blocks := uint64((w+3)/4) * uint64((ht+3)/4)
		var blockSize uint64
		switch fourCC {
		case "DXT1":
			blockSize = 8
		case "DXT5":
			blockSize = 16
		default:
			return nil, fmt.Errorf("%w: dds fourCC %q", core.ErrUnsupportedImage, fourCC)
		}
		data := make([]byte, blocks*blockSize)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		if fourCC == "DXT1" {
			pix, err = dxt.DecodeDXT1(data, uint(w), uint(ht))
		} else {
			pix, err = dxt.DecodeDXT5(data, uint(w), uint(ht))
		}
		if err != nil {
			return nil, err
		}
	case pf.Flags&ddpfRGB != 0 && pf.RGBBitCount == 32:
		data := make([]byte, int(w)*int(ht)*4)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
		pix = swizzleToRGBA(data, pf)
	default:
		return nil, fmt.Errorf("%w: dds pixel format flags 0x%x", core.ErrUnsupportedImage, pf.Flags)
	}

	return &image.NRGBA{
		Pix:    pix,
		Stride: int(w) * 4,
		Rect:   image.Rect(0, 0, int(w), int(ht)),
	}, nil
}

// swizzleToRGBA reorders uncompressed texels according to the channel masks.
func swizzleToRGBA(data []byte, pf ddsPixelFormat) []byte {
	shift := func(mask uint32) uint {
		for s := uint(0); s < 32; s += 8 {
			if mask == 0xFF<<s {
				return s
			}
		}
		return 0
	}
	rs, gs, bs, as := shift(pf.RBitMask), shift(pf.GBitMask), shift(pf.BBitMask), shift(pf.ABitMask)
	hasAlpha := pf.Flags&ddpfAlphaPixels != 0 && pf.ABitMask != 0

	out := make([]byte, len(data))
	for i := 0; i+3 < len(data); i += 4 {
		v := binary.LittleEndian.Uint32(data[i:])
		out[i] = byte(v >> rs)
		out[i+1] = byte(v >> gs)
		out[i+2] = byte(v >> bs)
		if hasAlpha {
			out[i+3] = byte(v >> as)
		} else {
			out[i+3] = 0xFF
		}
	}
	return out
}
