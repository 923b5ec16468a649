package systems

import (
	"fmt"

	"github.com/spaghettifunk/pbrforge/engine/assets"
	"github.com/spaghettifunk/pbrforge/engine/core"
	"github.com/spaghettifunk/pbrforge/engine/renderer"
)

// SystemManagerConfig carries the project settings the systems need.
type SystemManagerConfig struct {
	Recursive  bool
	Candidates map[string][]string
}

type SystemManager struct {
	db               *assets.AssetDatabase
	events           *core.EventSystem
	discoverySystem  *DiscoverySystem
	textureSystem    *TextureSystem
	smoothnessPacker *SmoothnessPacker
	materialSystem   *MaterialSystem
}

func NewSystemManager(config SystemManagerConfig, db *assets.AssetDatabase, r *renderer.Renderer, events *core.EventSystem) (*SystemManager, error) {
	candidates, err := RoleCandidates(config.Candidates)
	if err != nil {
		return nil, fmt.Errorf("invalid role candidates: %w", err)
	}

	ds := NewDiscoverySystem(db, candidates, config.Recursive)
	ts := NewTextureSystem(db)
	sp := NewSmoothnessPacker(db, r, ts, events)
	ms := NewMaterialSystem(db, r, sp)

	return &SystemManager{
		db:               db,
		events:           events,
		discoverySystem:  ds,
		textureSystem:    ts,
		smoothnessPacker: sp,
		materialSystem:   ms,
	}, nil
}

func (sm *SystemManager) Discovery() *DiscoverySystem {
	return sm.discoverySystem
}

func (sm *SystemManager) Textures() *TextureSystem {
	return sm.textureSystem
}

func (sm *SystemManager) Materials() *MaterialSystem {
	return sm.materialSystem
}
