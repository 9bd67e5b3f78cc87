// Package cache implements the eviction-policy catalog behind the
// sim.Cache contract. Policies register themselves in init() and are
// selected by name through New; importing this package also wires the
// factory into sim.NewCacheFunc.
package cache

import (
	"fmt"
	"sort"

	"github.com/mrc-sim/mrc-sim/sim"
)

// Constructor builds a policy instance with the given byte capacity.
type Constructor func(capacity uint64) sim.Cache

var registry = map[string]Constructor{}

func init() {
	sim.NewCacheFunc = New
}

// Register adds a policy constructor under name. Called from the policy
// files' init() functions; duplicate names are programmer errors.
func Register(name string, ctor Constructor) {
	if _, ok := registry[name]; ok {
		panic(fmt.Sprintf("cache: policy %q registered twice", name))
	}
	registry[name] = ctor
}

// New constructs the named policy with the given byte capacity.
func New(name string, capacity uint64) (sim.Cache, error) {
	if capacity == 0 {
		return nil, fmt.Errorf("cache capacity must be positive")
	}
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown eviction policy %q (have %v)", name, Policies())
	}
	return ctor(capacity), nil
}

// Policies returns the registered policy names, sorted.
func Policies() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// access is the composite get shared by every policy: find with promotion,
// and on a miss evict until the object fits, then insert.
func access(c sim.Cache, req *sim.Request) bool {
	if _, ok := c.Find(req, true); ok {
		return true
	}
	if !c.CanInsert(req) {
		// Objects larger than the cache bypass it entirely.
		return false
	}
	for c.NeedEviction(req) {
		if c.Evict() == nil {
			return false
		}
	}
	c.Insert(req)
	return false
}
