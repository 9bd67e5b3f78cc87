package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("sieve", NewSieve)
}

type sieveEntry struct {
	obj     *sim.Object
	visited bool
}

// sieve keeps a FIFO queue with a persistent hand that sweeps from tail to
// head, clearing visited bits and evicting the first unvisited object.
// Unlike Clock, survivors keep their queue position.
type sieve struct {
	capacity uint64
	occupied uint64
	ll       *list.List
	items    map[uint64]*list.Element
	hand     *list.Element
}

// NewSieve returns a Sieve cache bounded to capacity bytes.
func NewSieve(capacity uint64) sim.Cache {
	return &sieve{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

func (c *sieve) Name() string { return "sieve" }

func (c *sieve) Get(req *sim.Request) bool { return access(c, req) }

func (c *sieve) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	ent := ele.Value.(*sieveEntry)
	if update {
		ent.visited = true
	}
	return ent.obj, true
}

func (c *sieve) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *sieve) NeedEviction(req *sim.Request) bool { return c.occupied+req.Size > c.capacity }

func (c *sieve) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	c.items[req.ID] = c.ll.PushFront(&sieveEntry{obj: obj})
	c.occupied += req.Size
	return obj
}

func (c *sieve) Evict() *sim.Object {
	if c.ll.Len() == 0 {
		return nil
	}
	ele := c.hand
	if ele == nil {
		ele = c.ll.Back()
	}
	for ele.Value.(*sieveEntry).visited {
		ele.Value.(*sieveEntry).visited = false
		ele = ele.Prev()
		if ele == nil {
			ele = c.ll.Back()
		}
	}
	c.hand = ele.Prev() // nil means the next sweep restarts at the tail
	ent := ele.Value.(*sieveEntry)
	c.ll.Remove(ele)
	delete(c.items, ent.obj.ID)
	c.occupied -= ent.obj.Size
	return ent.obj
}

func (c *sieve) Remove(id uint64) bool {
	ele, ok := c.items[id]
	if !ok {
		return false
	}
	if ele == c.hand {
		c.hand = ele.Prev()
	}
	ent := ele.Value.(*sieveEntry)
	c.ll.Remove(ele)
	delete(c.items, id)
	c.occupied -= ent.obj.Size
	return true
}

func (c *sieve) OccupiedBytes() uint64 { return c.occupied }
