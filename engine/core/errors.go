package core

import (
	"errors"
)

var (
	ErrEmptyFolderPath  = errors.New("folder path is empty, select a texture folder first")
	ErrOutsideAssetRoot = errors.New("folder must be located inside the asset root")
	ErrShaderNotFound   = errors.New("shader not found")
	ErrAssetNotFound    = errors.New("asset not found")
	ErrUnsupportedImage = errors.New("unsupported image format")
	ErrNoPackSource     = errors.New("no roughness or smoothness texture to pack")
	ErrUnknown          = errors.New("unknown")
)
