package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("lru", NewLRU)
}

// lru evicts the least recently used object. List front is the most
// recently used end.
type lru struct {
	capacity uint64
	occupied uint64
	ll       *list.List
	items    map[uint64]*list.Element
}

// NewLRU returns an LRU cache bounded to capacity bytes.
func NewLRU(capacity uint64) sim.Cache {
	return &lru{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

func (c *lru) Name() string { return "lru" }

func (c *lru) Get(req *sim.Request) bool { return access(c, req) }

func (c *lru) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	if update {
		c.ll.MoveToFront(ele)
	}
	return ele.Value.(*sim.Object), true
}

func (c *lru) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *lru) NeedEviction(req *sim.Request) bool { return c.occupied+req.Size > c.capacity }

func (c *lru) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	c.items[req.ID] = c.ll.PushFront(obj)
	c.occupied += req.Size
	return obj
}

func (c *lru) Evict() *sim.Object {
	back := c.ll.Back()
	if back == nil {
		return nil
	}
	obj := back.Value.(*sim.Object)
	c.ll.Remove(back)
	delete(c.items, obj.ID)
	c.occupied -= obj.Size
	return obj
}

func (c *lru) Remove(id uint64) bool {
	ele, ok := c.items[id]
	if !ok {
		return false
	}
	obj := ele.Value.(*sim.Object)
	c.ll.Remove(ele)
	delete(c.items, id)
	c.occupied -= obj.Size
	return true
}

func (c *lru) OccupiedBytes() uint64 { return c.occupied }
