package engine

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
	"github.com/spaghettifunk/pbrforge/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is running a pipeline or watching a folder
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
)

// Engine wires the asset database, the renderer and the material systems
// of one project together.
type Engine struct {
	currentStage  Stage
	config        *ApplicationConfig
	events        *core.EventSystem
	assetDatabase *assets.AssetDatabase
	renderer      *renderer.Renderer
	systemManager *systems.SystemManager
	clock         *core.Clock
	metrics       *core.Metrics
	journal       *assetJournal
	watchDebounce time.Duration
}

func New(config *ApplicationConfig) (*Engine, error) {
	if config.Config == nil {
		config.Config = core.DefaultConfig()
	}
	events := core.NewEventSystem()

	db, err := assets.NewAssetDatabase(config.ProjectRoot, config.Config.AssetRoot, events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	r, err := renderer.New(renderer.Software)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	sm, err := systems.NewSystemManager(systems.SystemManagerConfig{
		Recursive:  config.Config.Recursive,
		Candidates: config.Config.Candidates,
	}, db, r, events)
	if err != nil {
		core.LogError(err.Error())
		return nil, err
	}

	debounce := config.WatchDebounce
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	return &Engine{
		currentStage:  EngineStageUninitialized,
		config:        config,
		events:        events,
		assetDatabase: db,
		renderer:      r,
		systemManager: sm,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		journal:       newAssetJournal(),
		watchDebounce: debounce,
	}, nil
}

func (e *Engine) Initialize() error {
	e.journal.register(e.events)
	if err := e.assetDatabase.Initialize(); err != nil {
		return err
	}
	e.currentStage = EngineStageInitialized
	core.LogDebug("asset root %s", e.assetDatabase.AssetRootPath())
	return nil
}

func (e *Engine) Events() *core.EventSystem {
	return e.events
}

func (e *Engine) AssetDatabase() *assets.AssetDatabase {
	return e.assetDatabase
}

func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// NewDescriptor returns a descriptor for folder with project defaults applied.
func (e *Engine) NewDescriptor(folder string) (*metadata.MaterialDescriptor, error) {
	return e.config.NewDescriptor(folder)
}

// Preview discovers textures and resolves the workflow without writing.
func (e *Engine) Preview(desc *metadata.MaterialDescriptor) (*systems.Preview, error) {
	return e.systemManager.Preview(desc)
}

// Run executes the full pipeline once.
func (e *Engine) Run(ctx context.Context, desc *metadata.MaterialDescriptor) (*systems.Result, error) {
	e.currentStage = EngineStageRunning
	defer func() { e.currentStage = EngineStageInitialized }()

	e.clock.Start()
	res, err := e.systemManager.Run(ctx, desc)
	e.clock.Stop()
	e.metrics.Update(e.clock.Elapsed(), err != nil)

	if err != nil {
		return nil, err
	}
	core.LogInfo("material %s ready in %s", res.MaterialPath, e.clock.Elapsed())
	return res, nil
}

// Watch runs the pipeline once, then again every time a source texture in
// the folder is created or modified, until ctx is done. Changes closer
// together than the debounce interval trigger a single rebuild, and files the
// engine wrote itself are ignored. Sub-folders are watched only when
// discovery is recursive. onResult is called after every run.
func (e *Engine) Watch(ctx context.Context, desc *metadata.MaterialDescriptor, onResult func(*systems.Result, error)) error {
	assetFolder, err := e.systemManager.ValidateFolder(desc.Folder)
	if err != nil {
		return err
	}
	onResult(e.Run(ctx, desc))

	core.LogInfo("watching %s", assetFolder)
	changes := make(chan string, 64)
	errc := make(chan error, 1)
	go func() {
		errc <- e.assetDatabase.Watch(ctx, assetFolder, e.config.Config.Recursive, func(assetPath string, op fsnotify.Op) {
			if !IsSourceTexture(assetPath) || e.journal.wroteRecently(assetPath) {
				return
			}
			core.LogDebug("%s: %s", op, assetPath)
			select {
			case changes <- assetPath:
			case <-ctx.Done():
			}
		})
	}()

	timer := time.NewTimer(e.watchDebounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-changes:
			timer.Reset(e.watchDebounce)
		case <-timer.C:
			onResult(e.Run(ctx, desc))
			total, failed := e.metrics.Runs()
			core.LogDebug("runs=%d failed=%d avg=%.1fms", total, failed, e.metrics.AverageMS())
		case err := <-errc:
			return err
		}
	}
}

// IsSourceTexture reports whether a change to assetPath should trigger a
// rebuild: a texture that the tool did not generate itself.
func IsSourceTexture(assetPath string) bool {
	base := strings.ToLower(path.Base(assetPath))
	if strings.HasSuffix(base, assets.MetaExtension) || path.Ext(base) == assets.MaterialExtension {
		return false
	}
	return !strings.Contains(base, systems.PackedMarker)
}

func (e *Engine) Shutdown() error {
	e.currentStage = EngineStageShuttingDown
	e.journal.unregister(e.events)
	e.events.Shutdown()
	if n := e.renderer.ActiveTemporaries(); n > 0 {
		core.LogWarn("%d render targets were not released", n)
	}
	return nil
}
