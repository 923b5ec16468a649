package engine

import (
	"sync"
	"time"

	"github.com/spaghettifunk/pbrforge/engine/core"
)

// selfWriteWindow is how long a file the engine wrote is ignored by the
// folder watcher.
const selfWriteWindow = 2 * time.Second

// assetJournal listens to the asset events of a run. It logs what the run
// wrote and remembers it so that watch mode does not react to its own output.
type assetJournal struct {
	mu      sync.Mutex
	written map[string]time.Time
	now     func() time.Time
}

func newAssetJournal() *assetJournal {
	return &assetJournal{
		written: make(map[string]time.Time),
		now:     time.Now,
	}
}

var journalCodes = []core.EventCode{
	core.EVENT_CODE_ASSET_CREATED,
	core.EVENT_CODE_ASSET_DELETED,
	core.EVENT_CODE_MATERIAL_SAVED,
	core.EVENT_CODE_TEXTURE_PACKED,
}

func (j *assetJournal) register(events *core.EventSystem) {
	for _, code := range journalCodes {
		events.Register(code, j, j.onEvent)
	}
}

func (j *assetJournal) unregister(events *core.EventSystem) {
	for _, code := range journalCodes {
		events.Unregister(code, j)
	}
}

func (j *assetJournal) onEvent(code core.EventCode, _ interface{}, _ interface{}, data core.EventContext) bool {
	switch code {
	case core.EVENT_CODE_ASSET_CREATED:
		core.LogInfo("created %s %s (%s)", data.Kind, data.Path, data.GUID)
		j.record(data.Path)
	case core.EVENT_CODE_MATERIAL_SAVED:
		core.LogDebug("saved material %s (%s)", data.Path, data.GUID)
		j.record(data.Path)
	case core.EVENT_CODE_TEXTURE_PACKED:
		j.record(data.Path)
	case core.EVENT_CODE_ASSET_DELETED:
		core.LogWarn("%s %s was removed", data.Kind, data.Path)
		j.mu.Lock()
		delete(j.written, data.Path)
		j.mu.Unlock()
	}
	// other listeners still see the event
	return false
}

func (j *assetJournal) record(assetPath string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.written[assetPath] = j.now()
}

// wroteRecently reports whether assetPath was written by the engine within
// selfWriteWindow. Older entries are pruned.
func (j *assetJournal) wroteRecently(assetPath string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for p, at := range j.written {
		if now.Sub(at) > selfWriteWindow {
			delete(j.written, p)
		}
	}
	_, ok := j.written[assetPath]
	return ok
}
