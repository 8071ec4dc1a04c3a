package core

import (
	"encoding/json"
	"hash/fnv"
	"sort"
	"sync"
)

// Assigns holds the values a component renders from. Each key remembers a
// fingerprint of its last value; writing an equal value leaves the key clean.
// The router renders only when some key changed since the last Flush.
type Assigns struct {
	mu     sync.Mutex
	values map[string]any
	sums   map[string]uint64
	dirty  map[string]struct{}
}

// NewAssigns creates an empty store.
func NewAssigns() *Assigns {
	return &Assigns{
		values: make(map[string]any),
		sums:   make(map[string]uint64),
		dirty:  make(map[string]struct{}),
	}
}

// Get returns the value stored under key.
func (a *Assigns) Get(key string) any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.values[key]
}

// GetString returns the string stored under key, or "".
func (a *Assigns) GetString(key string) string {
	s, _ := a.Get(key).(string)
	return s
}

// Set stores value and reports whether it differs from the previous one.
func (a *Assigns) Set(key string, value any) bool {
	sum, ok := fingerprint(value)

	a.mu.Lock()
	defer a.mu.Unlock()

	a.values[key] = value
	if prev, seen := a.sums[key]; ok && seen && prev == sum {
		return false
	}
	if ok {
		a.sums[key] = sum
	} else {
		delete(a.sums, key)
	}
	a.dirty[key] = struct{}{}
	return true
}

// Len returns the number of keys.
func (a *Assigns) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.values)
}

// Changed reports whether any key changed since the last Flush.
func (a *Assigns) Changed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.dirty) > 0
}

// Flush returns the changed keys in order and marks everything clean.
func (a *Assigns) Flush() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	keys := make([]string, 0, len(a.dirty))
	for k := range a.dirty {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	a.dirty = make(map[string]struct{})
	return keys
}

// AssignsOf returns the store of a component that keeps its render state in
// assigns, or nil when it keeps none.
func AssignsOf(c Component) *Assigns {
	h, ok := c.(interface{ Assigns() *Assigns })
	if !ok {
		return nil
	}
	a := h.Assigns()
	if a == nil || a.Len() == 0 {
		return nil
	}
	return a
}

// fingerprint hashes strings directly and everything else through its JSON
// form, which orders map keys. Values JSON cannot encode report false and
// always count as changed.
func fingerprint(v any) (uint64, bool) {
	h := fnv.New64a()
	switch val := v.(type) {
	case nil:
		h.Write([]byte{0})
	case string:
		h.Write([]byte{1})
		h.Write([]byte(val))
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return 0, false
		}
		h.Write([]byte{2})
		h.Write(data)
	}
	return h.Sum64(), true
}
