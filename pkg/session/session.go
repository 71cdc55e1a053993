// Package session provides ephemeral, session-scoped key-value storage
// used to hand small bits of context between components, such as the
// saved-search banner that accompanies a multi-listing deep link.
// Storage problems degrade to no-ops: a nil or broken store disables
// the feature instead of surfacing an error.
package session

import (
	"encoding/json"
	"sync"

	"github.com/0raclide/nihontowatch-sub000/pkg/model"
)

// Store is the minimal key-value surface the UI needs. Implementations
// are session-scoped: contents do not outlive the process.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// KeyAlertContext holds the serialized model.AlertContext between the
// deep-link resolver and the alert banner.
const KeyAlertContext = "alert_context"

// MemStore is the in-memory Store used in production and tests alike.
type MemStore struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{m: make(map[string]string)}
}

func (s *MemStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *MemStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// SaveAlertContext stores the alert context. A nil store is a no-op.
func SaveAlertContext(s Store, ctx model.AlertContext) {
	if s == nil {
		return
	}
	data, err := json.Marshal(ctx)
	if err != nil {
		return
	}
	s.Set(KeyAlertContext, string(data))
}

// LoadAlertContext reads the stored alert context. ok is false when the
// store is nil, the key is absent or the payload does not parse.
func LoadAlertContext(s Store) (model.AlertContext, bool) {
	if s == nil {
		return model.AlertContext{}, false
	}
	raw, ok := s.Get(KeyAlertContext)
	if !ok {
		return model.AlertContext{}, false
	}
	var ctx model.AlertContext
	if err := json.Unmarshal([]byte(raw), &ctx); err != nil {
		return model.AlertContext{}, false
	}
	return ctx, true
}

// ClearAlertContext removes the stored alert context. A nil store is a
// no-op.
func ClearAlertContext(s Store) {
	if s == nil {
		return
	}
	s.Delete(KeyAlertContext)
}
