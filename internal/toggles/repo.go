package toggles

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rotisserie/eris"
)

// DefaultsRepo persists per-profile toggle defaults. Profiles are shared
// across ingestion sessions; concurrent writers are last-write-wins, which
// is acceptable for a user preference.
type DefaultsRepo interface {
	Get(profile string) (map[string]bool, error)
	Put(profile string, defaults map[string]bool) error
	Delete(profile string) error
}

// Memory is an in-process DefaultsRepo, used in tests and when no durable
// store is configured.
type Memory struct {
	mu    sync.Mutex
	blobs map[string]map[string]bool
}

// NewMemory creates an empty in-memory repo.
func NewMemory() *Memory {
	return &Memory{blobs: make(map[string]map[string]bool)}
}

func (m *Memory) Get(profile string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.blobs[profile]
	if !ok {
		return nil, nil
	}
	out := make(map[string]bool, len(stored))
	for k, v := range stored {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Put(profile string, defaults map[string]bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make(map[string]bool, len(defaults))
	for k, v := range defaults {
		cp[k] = v
	}
	m.blobs[profile] = cp
	return nil
}

func (m *Memory) Delete(profile string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, profile)
	return nil
}

// Preferences is the narrow slice of the persistence layer the store-backed
// repo needs: one JSON blob per string key.
type Preferences interface {
	GetPreference(ctx context.Context, key string) ([]byte, error)
	PutPreference(ctx context.Context, key string, value []byte) error
	DeletePreference(ctx context.Context, key string) error
}

// StoreRepo persists defaults through a Preferences store under
// "ai.applyDefaults.<profile>" keys.
type StoreRepo struct {
	prefs Preferences
	ctx   context.Context
}

// NewStoreRepo wraps a Preferences store. ctx bounds the repo's store calls;
// toggle persistence is synchronous but non-fatal for callers.
func NewStoreRepo(ctx context.Context, prefs Preferences) *StoreRepo {
	return &StoreRepo{prefs: prefs, ctx: ctx}
}

func profileKey(profile string) string {
	return "ai.applyDefaults." + profile
}

func (r *StoreRepo) Get(profile string) (map[string]bool, error) {
	raw, err := r.prefs.GetPreference(r.ctx, profileKey(profile))
	if err != nil {
		return nil, eris.Wrap(err, "toggles: load defaults")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	var out map[string]bool
	if err := json.Unmarshal(raw, &out); err != nil {
		// A corrupt blob is treated as no stored preference.
		return nil, nil
	}
	return out, nil
}

func (r *StoreRepo) Put(profile string, defaults map[string]bool) error {
	raw, err := json.Marshal(defaults)
	if err != nil {
		return eris.Wrap(err, "toggles: marshal defaults")
	}
	if err := r.prefs.PutPreference(r.ctx, profileKey(profile), raw); err != nil {
		return eris.Wrap(err, "toggles: save defaults")
	}
	return nil
}

func (r *StoreRepo) Delete(profile string) error {
	if err := r.prefs.DeletePreference(r.ctx, profileKey(profile)); err != nil {
		return eris.Wrap(err, "toggles: delete defaults")
	}
	return nil
}
