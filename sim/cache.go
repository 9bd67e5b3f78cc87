// Cache is the pluggable eviction-policy contract consumed by the MINISIM
// profiler. Concrete policies (LRU, FIFO, LFU, ARC, Clock, Sieve, S3FIFO)
// live in sim/cache and register a constructor here via init().

package sim

// Object is a cached object as tracked by an eviction policy.
type Object struct {
	ID   uint64
	Size uint64
}

// Cache maintains a bounded working set under one byte capacity. All methods
// are single-goroutine: the profiler confines each instance to one worker.
type Cache interface {
	// Get is the composite access operation: find with promotion, and on a
	// miss insert the object, evicting as needed. Returns true on a hit.
	Get(req *Request) bool
	// Find looks the object up; update controls whether the access mutates
	// policy metadata (recency position, frequency, reference bits).
	Find(req *Request, update bool) (*Object, bool)
	// CanInsert reports whether the object can ever fit.
	CanInsert(req *Request) bool
	// Insert adds the object. Caller must have made room first.
	Insert(req *Request) *Object
	// NeedEviction reports whether inserting req requires evicting first.
	NeedEviction(req *Request) bool
	// Evict removes one victim chosen by the policy; nil if empty.
	Evict() *Object
	// Remove deletes the object by id; false if not resident.
	Remove(id uint64) bool
	// OccupiedBytes is the sum of sizes of resident objects.
	OccupiedBytes() uint64
	// Name is the policy name the instance was constructed under.
	Name() string
}

// NewCacheFunc constructs a Cache by policy name and byte capacity.
// sim/cache sets this in its init(); importing that package is enough.
var NewCacheFunc func(policy string, capacity uint64) (Cache, error)
