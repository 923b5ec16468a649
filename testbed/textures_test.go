package testbed

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatterns(t *testing.T) {
	g := GradientX()
	assert.Equal(t, uint8(0), g(0, 0, 4, 1).R)
	assert.Equal(t, uint8(255), g(3, 0, 4, 1).R)

	a, b := color.NRGBA{1, 1, 1, 255}, color.NRGBA{2, 2, 2, 255}
	c := Checker(a, b, 2)
	assert.Equal(t, a, c(0, 0, 8, 8))
	assert.Equal(t, b, c(2, 0, 8, 8))
	assert.Equal(t, a, c(2, 2, 8, 8))
}

func TestProject(t *testing.T) {
	root := t.TempDir()
	folders, err := Project(root)
	require.NoError(t, err)
	require.Len(t, folders, 2)

	f, err := os.Open(filepath.Join(folders[0], "Rock_Normal.png"))
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)

	entries, err := os.ReadDir(folders[1])
	require.NoError(t, err)
	assert.Len(t, entries, len(CrystalSpecular()))
}
