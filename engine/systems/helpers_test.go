package systems

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"github.com/spaghettifunk/pbrforge/testbed"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	db       *assets.AssetDatabase
	renderer *renderer.Renderer
	events   *core.EventSystem
	systems  *SystemManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	events := core.NewEventSystem()
	db, err := assets.NewAssetDatabase(root, "Assets", events)
	require.NoError(t, err)
	require.NoError(t, db.Initialize())
	r, err := renderer.New(renderer.Software)
	require.NoError(t, err)
	sm, err := NewSystemManager(SystemManagerConfig{}, db, r, events)
	require.NoError(t, err)
	return &fixture{root: root, db: db, renderer: r, events: events, systems: sm}
}

// write places set under Assets/<folder> and refreshes the database.
func (f *fixture) write(t *testing.T, folder string, set testbed.TextureSet, w, h int) string {
	t.Helper()
	_, err := testbed.Write(filepath.Join(f.root, "Assets", filepath.FromSlash(folder)), set, w, h)
	require.NoError(t, err)
	require.NoError(t, f.db.Refresh())
	return "Assets/" + folder
}

func grey(v uint8) testbed.Pattern {
	return testbed.Solid(color.NRGBA{v, v, v, 255})
}

func descriptor(folder string) *metadata.MaterialDescriptor {
	return &metadata.MaterialDescriptor{
		Folder:     folder,
		Mode:       metadata.WorkflowModeMetallic,
		Slots:      make(metadata.TextureSlots),
		Smoothness: 0.5,
		Emission: metadata.EmissionSettings{
			Auto:   true,
			GIFlag: metadata.GIFlagBaked,
		},
	}
}
