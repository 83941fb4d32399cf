package policy

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe in-memory store for policy packs, keyed by
// pack id. It is constructed explicitly and injected into the engine; the
// pack set is read-only between Replace calls, so concurrent evaluations
// share it without additional locking on the read path beyond the RWMutex.
type Registry struct {
	mu       sync.RWMutex
	packs    map[string]*Pack
	version  string
	loadTime time.Time
}

// NewRegistry creates an empty pack registry.
func NewRegistry() *Registry {
	return &Registry{
		packs:    make(map[string]*Pack),
		loadTime: time.Now(),
	}
}

// Register validates and adds a pack to the registry. A pack with the same
// id replaces the previous one.
func (r *Registry) Register(pack *Pack) error {
	if pack == nil {
		return &RegistryError{Operation: "register", Message: "pack cannot be nil"}
	}
	if err := pack.Validate(); err != nil {
		return &RegistryError{PackID: pack.ID, Operation: "register", Message: err.Error()}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.packs[pack.ID] = pack
	r.updateVersion()
	return nil
}

// Get retrieves a pack by id. It returns a PackNotFoundError for unknown
// ids; there is no default pack.
func (r *Registry) Get(id string) (*Pack, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pack, ok := r.packs[id]
	if !ok {
		return nil, &PackNotFoundError{PackID: id}
	}
	return pack, nil
}

// Has reports whether a pack with the given id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.packs[id]
	return ok
}

// List returns discovery summaries for all registered packs, sorted by id.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.packs))
	for _, pack := range r.packs {
		infos = append(infos, pack.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Count returns the number of registered packs.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.packs)
}

// Replace atomically replaces the entire pack set. Used by the pack
// directory watcher for hot reloads.
func (r *Registry) Replace(packs []*Pack) error {
	for _, pack := range packs {
		if pack == nil {
			return &RegistryError{Operation: "replace", Message: "pack cannot be nil"}
		}
		if err := pack.Validate(); err != nil {
			return &RegistryError{PackID: pack.ID, Operation: "replace", Message: err.Error()}
		}
	}

	newPacks := make(map[string]*Pack, len(packs))
	for _, pack := range packs {
		newPacks[pack.ID] = pack
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.packs = newPacks
	r.loadTime = time.Now()
	r.updateVersion()
	return nil
}

// Version returns the registry version hash. It changes whenever the pack
// set changes and is recorded alongside evaluations for provenance.
func (r *Registry) Version() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.version
}

// LoadTime returns when the pack set was last replaced or modified.
func (r *Registry) LoadTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.loadTime
}

// updateVersion recomputes the registry version hash from the sorted pack
// ids and versions. Must be called with the write lock held.
func (r *Registry) updateVersion() {
	ids := make([]string, 0, len(r.packs))
	for id := range r.packs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	h := sha256.New()
	for _, id := range ids {
		pack := r.packs[id]
		h.Write([]byte(pack.ID))
		h.Write([]byte(pack.Version))
	}
	r.version = fmt.Sprintf("%x", h.Sum(nil))[:16]
}
