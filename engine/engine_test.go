package engine

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"github.com/spaghettifunk/pbrforge/engine/systems"
	"github.com/spaghettifunk/pbrforge/testbed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, cfg *core.Config) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	prefs, err := core.LoadPreferences(filepath.Join(root, "prefs.toml"))
	require.NoError(t, err)
	prefs.SetString(core.PrefKeyMaterialPrefix, "M_")

	e, err := New(&ApplicationConfig{
		ProjectRoot:   root,
		Config:        cfg,
		Preferences:   prefs,
		WatchDebounce: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	t.Cleanup(func() { _ = e.Shutdown() })
	return e, root
}

func TestApplicationConfig_NewDescriptor(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.DefaultMode = "specular"
	cfg.PackSmoothness = true
	cfg.Scalars.Metallic = 0.25

	ac := &ApplicationConfig{Config: cfg}
	desc, err := ac.NewDescriptor("Assets/Rock")
	require.NoError(t, err)
	assert.Equal(t, "Assets/Rock", desc.Folder)
	assert.Equal(t, metadata.WorkflowModeSpecular, desc.Mode)
	assert.True(t, desc.PackSmoothness)
	assert.Equal(t, float32(0.25), desc.Metallic)
	assert.True(t, desc.Emission.Auto)
	assert.NotNil(t, desc.Slots)
	assert.Equal(t, metadata.DefaultMaterialPrefix, desc.NamePrefix)

	cfg.DefaultMode = "toon"
	_, err = ac.NewDescriptor("Assets/Rock")
	assert.Error(t, err)
}

func TestApplicationConfig_Defaults(t *testing.T) {
	prefs, err := core.LoadPreferences(filepath.Join(t.TempDir(), "prefs.toml"))
	require.NoError(t, err)

	desc, err := (&ApplicationConfig{Preferences: prefs}).NewDescriptor("Assets/Rock")
	require.NoError(t, err)
	assert.Equal(t, "m_", desc.NamePrefix)
	assert.Empty(t, desc.NameSuffix)
	assert.Equal(t, metadata.WorkflowModeSpecular, desc.Mode)
	assert.Equal(t, float32(1), desc.Metallic)
	assert.Equal(t, float32(1), desc.Smoothness)
	assert.Equal(t, float32(1), desc.SpecularColor.X)
	assert.Equal(t, float32(1), desc.SpecularColor.W)
}

func TestEngine_Run(t *testing.T) {
	e, root := newEngine(t, nil)
	folders, err := testbed.Project(root)
	require.NoError(t, err)

	for _, folder := range folders {
		desc, err := e.NewDescriptor(folder)
		require.NoError(t, err)
		res, err := e.Run(context.Background(), desc)
		require.NoError(t, err)
		assert.FileExists(t, e.AssetDatabase().AbsPath(res.MaterialPath))
	}
	assert.FileExists(t, filepath.Join(root, "Assets", "Textures", "Rock", "M_Rock.mat"))
	assert.FileExists(t, filepath.Join(root, "Assets", "Textures", "Crystal", "M_Crystal.mat"))

	total, failed := e.Metrics().Runs()
	assert.Equal(t, int64(2), total)
	assert.Zero(t, failed)

	_, err = e.Run(context.Background(), &metadata.MaterialDescriptor{Folder: ""})
	assert.ErrorIs(t, err, core.ErrEmptyFolderPath)
	_, failed = e.Metrics().Runs()
	assert.Equal(t, int64(1), failed)
}

func TestEngine_PreviewHonoursConfigCandidates(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Candidates = map[string][]string{"albedo": {"tint"}}
	e, root := newEngine(t, cfg)

	_, err := testbed.Write(filepath.Join(root, "Assets", "Wood"), testbed.TextureSet{
		"wood_tint.png":   testbed.Solid(color.NRGBA{90, 60, 30, 255}),
		"wood_albedo.png": testbed.Solid(color.NRGBA{1, 1, 1, 255}),
	}, 2, 2)
	require.NoError(t, err)

	desc, err := e.NewDescriptor("Assets/Wood")
	require.NoError(t, err)
	p, err := e.Preview(desc)
	require.NoError(t, err)
	assert.Equal(t, "Assets/Wood/wood_tint.png", p.Slots.Get(metadata.TextureRoleAlbedo).Path)
	assert.Equal(t, "M_Wood", p.MaterialName)
}

func TestIsSourceTexture(t *testing.T) {
	assert.True(t, IsSourceTexture("Assets/Rock/Rock_Albedo.png"))
	assert.False(t, IsSourceTexture("Assets/Rock/Rock_MetallicSmoothness_Packed.png"))
	assert.False(t, IsSourceTexture("Assets/Rock/Rock.mat"))
	assert.False(t, IsSourceTexture("Assets/Rock/Rock_Albedo.png.meta"))
}

func TestEngine_WatchRebuilds(t *testing.T) {
	e, root := newEngine(t, nil)
	rock := filepath.Join(root, "Assets", "Rock")
	_, err := testbed.Write(rock, testbed.RockMetallic(), 2, 2)
	require.NoError(t, err)

	desc, err := e.NewDescriptor("Assets/Rock")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	results := make(chan *systems.Result, 16)
	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, desc, func(res *systems.Result, err error) {
			if err != nil {
				return
			}
			select {
			case results <- res:
			default:
			}
		})
	}()

	select {
	case res := <-results:
		assert.True(t, res.Created)
	case <-time.After(10 * time.Second):
		t.Fatal("initial run did not complete")
	}

	// keep touching a source texture until the watcher picks it up
	emissive := testbed.TextureSet{"Rock_Emission.png": testbed.Solid(color.NRGBA{255, 0, 0, 255})}
	deadline := time.After(10 * time.Second)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for rebuilt := false; !rebuilt; {
		select {
		case res := <-results:
			if res.Slots.Has(metadata.TextureRoleEmission) {
				assert.False(t, res.Created)
				rebuilt = true
			}
		case <-ticker.C:
			_, err := testbed.Write(rock, emissive, 2, 2)
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("watcher did not rebuild the material")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
	_, err = os.Stat(filepath.Join(rock, "Rock.mat"))
	assert.True(t, os.IsNotExist(err))
	assert.FileExists(t, filepath.Join(rock, "M_Rock.mat"))
}

// startWatch runs Watch on a goroutine and forwards successful results.
func startWatch(t *testing.T, e *Engine, folder string) (chan *systems.Result, context.CancelFunc) {
	t.Helper()
	desc, err := e.NewDescriptor(folder)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	results := make(chan *systems.Result, 16)
	done := make(chan error, 1)
	go func() {
		done <- e.Watch(ctx, desc, func(res *systems.Result, err error) {
			if err != nil {
				return
			}
			select {
			case results <- res:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	})

	select {
	case <-results:
	case <-time.After(10 * time.Second):
		t.Fatal("initial run did not complete")
	}
	return results, cancel
}

func countResults(results chan *systems.Result, d time.Duration) int {
	n := 0
	deadline := time.After(d)
	for {
		select {
		case <-results:
			n++
		case <-deadline:
			return n
		}
	}
}

func TestEngine_WatchCoalescesBursts(t *testing.T) {
	e, root := newEngine(t, nil)
	e.watchDebounce = 400 * time.Millisecond
	rock := filepath.Join(root, "Assets", "Rock")
	_, err := testbed.Write(rock, testbed.RockMetallic(), 2, 2)
	require.NoError(t, err)

	results, _ := startWatch(t, e, "Assets/Rock")

	emissive := testbed.TextureSet{"Rock_Emission.png": testbed.Solid(color.NRGBA{255, 0, 0, 255})}
	for i := 0; i < 3; i++ {
		_, err := testbed.Write(rock, emissive, 2, 2)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, countResults(results, 3*time.Second))
}

func TestEngine_WatchIgnoresSubFoldersUnlessRecursive(t *testing.T) {
	e, root := newEngine(t, nil)
	rock := filepath.Join(root, "Assets", "Rock")
	_, err := testbed.Write(rock, testbed.RockMetallic(), 2, 2)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(rock, "Detail"), 0o755))

	results, _ := startWatch(t, e, "Assets/Rock")

	_, err = testbed.Write(filepath.Join(rock, "Detail"), testbed.TextureSet{
		"Detail_Emission.png": testbed.Solid(color.NRGBA{255, 0, 0, 255}),
	}, 2, 2)
	require.NoError(t, err)
	assert.Zero(t, countResults(results, time.Second))
}

func TestAssetJournal(t *testing.T) {
	events := core.NewEventSystem()
	j := newAssetJournal()
	now := time.Unix(1000, 0)
	j.now = func() time.Time { return now }
	j.register(events)

	events.Fire(core.EVENT_CODE_MATERIAL_SAVED, nil, core.EventContext{Path: "Assets/Rock/m_Rock.mat"})
	events.Fire(core.EVENT_CODE_TEXTURE_PACKED, nil, core.EventContext{Path: "Assets/Rock/p.png"})
	assert.True(t, j.wroteRecently("Assets/Rock/m_Rock.mat"))
	assert.True(t, j.wroteRecently("Assets/Rock/p.png"))
	assert.False(t, j.wroteRecently("Assets/Rock/Rock_Albedo.png"))

	events.Fire(core.EVENT_CODE_ASSET_DELETED, nil, core.EventContext{Path: "Assets/Rock/p.png"})
	assert.False(t, j.wroteRecently("Assets/Rock/p.png"))

	now = now.Add(selfWriteWindow + time.Second)
	assert.False(t, j.wroteRecently("Assets/Rock/m_Rock.mat"))

	j.unregister(events)
	events.Fire(core.EVENT_CODE_ASSET_CREATED, nil, core.EventContext{Path: "Assets/x.png"})
	assert.False(t, j.wroteRecently("Assets/x.png"))
}

func TestEngine_RunRecordsWrittenAssets(t *testing.T) {
	e, root := newEngine(t, nil)
	_, err := testbed.Write(filepath.Join(root, "Assets", "Rock"), testbed.RockMetallic(), 2, 2)
	require.NoError(t, err)

	desc, err := e.NewDescriptor("Assets/Rock")
	require.NoError(t, err)
	desc.PackSmoothness = true
	res, err := e.Run(context.Background(), desc)
	require.NoError(t, err)
	assert.True(t, e.journal.wroteRecently(res.MaterialPath))
	assert.True(t, e.journal.wroteRecently(res.Packed.Path))
	assert.False(t, e.journal.wroteRecently("Assets/Rock/Rock_BaseColor.png"))
}
