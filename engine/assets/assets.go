package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/pbrforge/engine/assets/loaders"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer/metadata"
)

// MaterialExtension is the file extension of material assets.
const MaterialExtension = ".mat"

type AssetInfo struct {
	// Path is slash separated and relative to the project root, e.g. Assets/Rock/Rock_Albedo.png
	Path       string
	GUID       core.GUID
	Type       metadata.ResourceType
	LastLoaded time.Time
}

// Name is the file name without extension.
func (ai *AssetInfo) Name() string {
	base := path.Base(ai.Path)
	return strings.TrimSuffix(base, path.Ext(base))
}

// AssetDatabase indexes every asset below the asset root of a project and
// owns their .meta sidecars.
type AssetDatabase struct {
	projectRoot string
	assetRoot   string

	assets  map[string]*AssetInfo
	guids   map[core.GUID]string
	loaders map[metadata.ResourceType]Loader
	events  *core.EventSystem

	mutex sync.RWMutex
}

// NewAssetDatabase creates a database for the project at projectRoot whose
// assets live in projectRoot/assetRoot. events may be nil.
func NewAssetDatabase(projectRoot, assetRoot string, events *core.EventSystem) (*AssetDatabase, error) {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, err
	}
	if assetRoot == "" {
		assetRoot = "Assets"
	}
	return &AssetDatabase{
		projectRoot: abs,
		assetRoot:   filepath.ToSlash(filepath.Clean(assetRoot)),
		assets:      make(map[string]*AssetInfo),
		guids:       make(map[core.GUID]string),
		loaders:     make(map[metadata.ResourceType]Loader),
		events:      events,
	}, nil
}

func (db *AssetDatabase) Initialize() error {
	// Register loaders
	db.registerLoader(metadata.ResourceTypeTexture, &loaders.TextureLoader{})
	db.registerLoader(metadata.ResourceTypeMaterial, &loaders.MaterialLoader{})

	if err := os.MkdirAll(db.AssetRootPath(), 0o755); err != nil {
		return err
	}
	return db.Refresh()
}

// Register loaders for each asset type
func (db *AssetDatabase) registerLoader(assetType metadata.ResourceType, loader Loader) {
	db.loaders[assetType] = loader
}

func (db *AssetDatabase) ProjectRoot() string {
	return db.projectRoot
}

// AssetRootPath is the absolute path of the asset root.
func (db *AssetDatabase) AssetRootPath() string {
	return filepath.Join(db.projectRoot, filepath.FromSlash(db.assetRoot))
}

// ToAssetPath converts an absolute or project relative path into an asset
// path. Paths that do not resolve inside the asset root are rejected with
// core.ErrOutsideAssetRoot.
func (db *AssetDatabase) ToAssetPath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", core.ErrEmptyFolderPath
	}
	abs := filepath.FromSlash(p)
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(db.projectRoot, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(db.projectRoot, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", core.ErrOutsideAssetRoot, p)
	}
	rel = filepath.ToSlash(rel)
	if rel != db.assetRoot && !strings.HasPrefix(rel, db.assetRoot+"/") {
		return "", fmt.Errorf("%w: %s", core.ErrOutsideAssetRoot, p)
	}
	return rel, nil
}

// AbsPath converts an asset path to an absolute file system path.
func (db *AssetDatabase) AbsPath(assetPath string) string {
	return filepath.Join(db.projectRoot, filepath.FromSlash(assetPath))
}

// Refresh walks the asset root, imports new files and forgets deleted ones.
func (db *AssetDatabase) Refresh() error {
	seen := make(map[string]struct{})
	root := db.AssetRootPath()
	err := filepath.WalkDir(root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		assetPath, err := db.ToAssetPath(walkPath)
		if err != nil {
			return nil
		}
		if determineAssetType(assetPath) == metadata.ResourceTypeNone {
			return nil
		}
		seen[assetPath] = struct{}{}
		db.mutex.RLock()
		_, known := db.assets[assetPath]
		db.mutex.RUnlock()
		if known {
			return nil
		}
		return db.handleFileEvent(assetPath)
	})
	if err != nil {
		return err
	}

	db.mutex.RLock()
	var gone []string
	for p := range db.assets {
		if _, ok := seen[p]; !ok {
			gone = append(gone, p)
		}
	}
	db.mutex.RUnlock()
	for _, p := range gone {
		db.removeAsset(p)
	}
	return nil
}

// Handle the creation or modification of a file
func (db *AssetDatabase) handleFileEvent(assetPath string) error {
	assetType := determineAssetType(assetPath)
	if assetType == metadata.ResourceTypeNone {
		return nil
	}
	mf, _, err := ensureMeta(db.AbsPath(assetPath), assetType)
	if err != nil {
		return err
	}
	guid, err := core.IdentifierParseGUID(mf.GUID)
	if err != nil {
		return err
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()
	if old, ok := db.assets[assetPath]; ok && old.GUID != guid {
		delete(db.guids, old.GUID)
	}
	db.assets[assetPath] = &AssetInfo{
		Path:       assetPath,
		GUID:       guid,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
	db.guids[guid] = assetPath
	return nil
}

// Remove the asset from the index if it was deleted
func (db *AssetDatabase) removeAsset(assetPath string) {
	db.mutex.Lock()
	info, ok := db.assets[assetPath]
	if ok {
		delete(db.assets, assetPath)
		delete(db.guids, info.GUID)
	}
	db.mutex.Unlock()

	if ok {
		db.events.Fire(core.EVENT_CODE_ASSET_DELETED, db, core.EventContext{
			Path: assetPath,
			GUID: info.GUID,
			Kind: info.Type.String(),
		})
	}
}

// Lookup returns the indexed asset at assetPath.
func (db *AssetDatabase) Lookup(assetPath string) (*AssetInfo, bool) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	info, ok := db.assets[assetPath]
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

func (db *AssetDatabase) GUIDToPath(guid core.GUID) (string, bool) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	p, ok := db.guids[guid]
	return p, ok
}

// FindAssets returns the GUIDs of assets of type rt whose file name contains
// fragment (case-insensitive), restricted to the given folders and their
// sub-folders. Results are ordered by path.
func (db *AssetDatabase) FindAssets(fragment string, rt metadata.ResourceType, folders ...string) []core.GUID {
	needle := strings.ToLower(fragment)
	infos := db.ListAssets(rt, true, folders...)
	out := make([]core.GUID, 0, len(infos))
	for _, info := range infos {
		if strings.Contains(strings.ToLower(path.Base(info.Path)), needle) {
			out = append(out, info.GUID)
		}
	}
	return out
}

// ListAssets returns the assets of type rt in folders, sorted by path. When
// recursive is false only direct children of each folder are returned.
func (db *AssetDatabase) ListAssets(rt metadata.ResourceType, recursive bool, folders ...string) []*AssetInfo {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var out []*AssetInfo
	for p, info := range db.assets {
		if rt != metadata.ResourceTypeNone && info.Type != rt {
			continue
		}
		if len(folders) > 0 && !inFolders(p, recursive, folders) {
			continue
		}
		cp := *info
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func inFolders(assetPath string, recursive bool, folders []string) bool {
	dir := path.Dir(assetPath)
	for _, f := range folders {
		f = strings.TrimSuffix(f, "/")
		if dir == f {
			return true
		}
		if recursive && strings.HasPrefix(dir, f+"/") {
			return true
		}
	}
	return false
}

// CreateAsset writes data to assetPath, overwriting any previous content,
// and imports it. An existing GUID is kept.
func (db *AssetDatabase) CreateAsset(assetPath string, data []byte) (core.GUID, error) {
	if _, err := db.ToAssetPath(assetPath); err != nil {
		return core.InvalidGUID, err
	}
	_, existed := db.Lookup(assetPath)

	abs := db.AbsPath(assetPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return core.InvalidGUID, err
	}
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return core.InvalidGUID, err
	}
	if err := db.ImportAsset(assetPath); err != nil {
		return core.InvalidGUID, err
	}
	info, _ := db.Lookup(assetPath)
	if !existed {
		db.events.Fire(core.EVENT_CODE_ASSET_CREATED, db, core.EventContext{
			Path: assetPath,
			GUID: info.GUID,
			Kind: info.Type.String(),
		})
	}
	return info.GUID, nil
}

// ImportAsset synchronously (re)imports one asset. For textures the image
// header is decoded and its dimensions recorded in the sidecar.
func (db *AssetDatabase) ImportAsset(assetPath string) error {
	if err := db.handleFileEvent(assetPath); err != nil {
		return err
	}
	info, ok := db.Lookup(assetPath)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetPath)
	}

	if info.Type == metadata.ResourceTypeTexture {
		res, err := db.load(info, &loaders.TextureLoadParams{HeaderOnly: true})
		if err != nil {
			return err
		}
		cfg := res.Data.(image.Config)
		abs := db.AbsPath(assetPath)
		mf, err := readMeta(abs)
		if err != nil {
			return err
		}
		mf.Image = &imageInfo{Width: uint32(cfg.Width), Height: uint32(cfg.Height)}
		if err := writeMeta(abs, mf); err != nil {
			return err
		}
	}

	core.LogDebug("imported %s (%s)", assetPath, info.GUID)
	db.events.Fire(core.EVENT_CODE_ASSET_IMPORTED, db, core.EventContext{
		Path: assetPath,
		GUID: info.GUID,
		Kind: info.Type.String(),
	})
	return nil
}

// Load an asset using the appropriate loader
func (db *AssetDatabase) load(info *AssetInfo, params interface{}) (*metadata.Resource, error) {
	loader, loaderExists := db.loaders[info.Type]
	if !loaderExists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", info.Type)
	}
	res, err := loader.Load(db.AbsPath(info.Path), info.Type, params)
	if err != nil {
		return nil, err
	}
	res.GUID = info.GUID
	return res, nil
}

// LoadTexture returns the texture handle of an imported image.
func (db *AssetDatabase) LoadTexture(assetPath string) (*metadata.Texture, error) {
	info, ok := db.Lookup(assetPath)
	if !ok || info.Type != metadata.ResourceTypeTexture {
		return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetPath)
	}
	mf, err := readMeta(db.AbsPath(assetPath))
	if err != nil {
		return nil, err
	}
	tex := &metadata.Texture{
		GUID:   info.GUID,
		Path:   info.Path,
		Name:   info.Name(),
		Import: metadata.DefaultTextureImportSettings(),
	}
	if mf.Importer != nil {
		tex.Import = *mf.Importer
	}
	if mf.Image != nil {
		tex.Width, tex.Height = mf.Image.Width, mf.Image.Height
	}
	return tex, nil
}

// LoadImage decodes the pixels of a texture asset.
func (db *AssetDatabase) LoadImage(assetPath string) (image.Image, error) {
	info, ok := db.Lookup(assetPath)
	if !ok || info.Type != metadata.ResourceTypeTexture {
		return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetPath)
	}
	res, err := db.load(info, &loaders.TextureLoadParams{})
	if err != nil {
		return nil, err
	}
	return res.Data.(image.Image), nil
}

// SetTextureImportSettings persists importer flags. The caller reimports.
func (db *AssetDatabase) SetTextureImportSettings(assetPath string, settings metadata.TextureImportSettings) error {
	info, ok := db.Lookup(assetPath)
	if !ok || info.Type != metadata.ResourceTypeTexture {
		return fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetPath)
	}
	abs := db.AbsPath(assetPath)
	mf, err := readMeta(abs)
	if err != nil {
		return err
	}
	mf.Importer = &settings
	return writeMeta(abs, mf)
}

// LoadMaterial reads a material asset. Texture references are resolved by
// GUID so renamed textures keep working.
func (db *AssetDatabase) LoadMaterial(assetPath string) (*metadata.Material, error) {
	info, ok := db.Lookup(assetPath)
	if !ok || info.Type != metadata.ResourceTypeMaterial {
		return nil, fmt.Errorf("%w: %s", core.ErrAssetNotFound, assetPath)
	}
	res, err := db.load(info, nil)
	if err != nil {
		return nil, err
	}
	m := res.Data.(*metadata.Material)
	m.GUID = info.GUID
	for prop, tex := range m.Textures {
		if p, ok := db.GUIDToPath(tex.GUID); ok {
			if t, err := db.LoadTexture(p); err == nil {
				m.Textures[prop] = t
				continue
			}
		}
		core.LogWarn("material %s: texture %s (%s) is missing", assetPath, prop, tex.Path)
	}
	return m, nil
}

// SaveMaterial writes m to assetPath. An existing asset is overwritten in
// place and keeps its GUID. Returns true when the asset was newly created.
func (db *AssetDatabase) SaveMaterial(assetPath string, m *metadata.Material) (bool, error) {
	if path.Ext(assetPath) != MaterialExtension {
		return false, fmt.Errorf("material path must end with %s: %s", MaterialExtension, assetPath)
	}
	_, existed := db.Lookup(assetPath)

	data, err := loaders.EncodeMaterial(m)
	if err != nil {
		return false, err
	}
	guid, err := db.CreateAsset(assetPath, data)
	if err != nil {
		return false, err
	}
	m.GUID = guid
	m.Generation++

	db.events.Fire(core.EVENT_CODE_MATERIAL_SAVED, db, core.EventContext{
		Path: assetPath,
		GUID: guid,
		Kind: metadata.ResourceTypeMaterial.String(),
	})
	return !existed, nil
}

// Watch reports file system changes in folder, and below it when recursive,
// until ctx is done. The index is kept current before fn is called. fn runs
// on the watch goroutine.
func (db *AssetDatabase) Watch(ctx context.Context, folder string, recursive bool, fn func(assetPath string, op fsnotify.Op)) error {
	assetFolder, err := db.ToAssetPath(folder)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	root := db.AbsPath(assetFolder)
	if recursive {
		err = watchRecursive(watcher, root)
	} else {
		err = watcher.Add(root)
	}
	if err != nil {
		return err
	}

	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if recursive && e.Has(fsnotify.Create) {
					if err := watchRecursive(watcher, e.Name); err != nil {
						core.LogWarn("cannot watch %s: %s", e.Name, err.Error())
					}
				}
				continue
			}
			assetPath, err := db.ToAssetPath(e.Name)
			if err != nil || determineAssetType(assetPath) == metadata.ResourceTypeNone {
				continue
			}
			switch {
			case e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename):
				db.removeAsset(assetPath)
			case e.Has(fsnotify.Create) || e.Has(fsnotify.Write):
				if err := db.handleFileEvent(assetPath); err != nil {
					core.LogError("%s: %s", assetPath, err.Error())
					continue
				}
			default:
				continue
			}
			fn(assetPath, e.Op)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			core.LogError(err.Error())

		case <-ctx.Done():
			return nil
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(walkPath string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return watcher.Add(walkPath)
		}
		return nil
	})
}

func determineAssetType(p string) metadata.ResourceType {
	switch {
	case strings.HasSuffix(p, MetaExtension):
		return metadata.ResourceTypeNone
	case loaders.IsSupportedImage(p):
		return metadata.ResourceTypeTexture
	case path.Ext(p) == MaterialExtension:
		return metadata.ResourceTypeMaterial
	default:
		return metadata.ResourceTypeNone
	}
}
