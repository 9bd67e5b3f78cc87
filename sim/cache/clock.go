package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("clock", NewClock)
}

type clockEntry struct {
	obj     *sim.Object
	visited bool
}

// clock is FIFO with reinsertion: a visited object gets a second trip
// through the queue instead of being evicted.
type clock struct {
	capacity uint64
	occupied uint64
	ll       *list.List
	items    map[uint64]*list.Element
}

// NewClock returns a Clock (FIFO-reinsertion) cache bounded to capacity bytes.
func NewClock(capacity uint64) sim.Cache {
	return &clock{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

func (c *clock) Name() string { return "clock" }

func (c *clock) Get(req *sim.Request) bool { return access(c, req) }

func (c *clock) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	ent := ele.Value.(*clockEntry)
	if update {
		ent.visited = true
	}
	return ent.obj, true
}

func (c *clock) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *clock) NeedEviction(req *sim.Request) bool { return c.occupied+req.Size > c.capacity }

func (c *clock) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	c.items[req.ID] = c.ll.PushFront(&clockEntry{obj: obj})
	c.occupied += req.Size
	return obj
}

func (c *clock) Evict() *sim.Object {
	for {
		back := c.ll.Back()
		if back == nil {
			return nil
		}
		ent := back.Value.(*clockEntry)
		if ent.visited {
			ent.visited = false
			c.ll.MoveToFront(back)
			continue
		}
		c.ll.Remove(back)
		delete(c.items, ent.obj.ID)
		c.occupied -= ent.obj.Size
		return ent.obj
	}
}

func (c *clock) Remove(id uint64) bool {
	ele, ok := c.items[id]
	if !ok {
		return false
	}
	ent := ele.Value.(*clockEntry)
	c.ll.Remove(ele)
	delete(c.items, id)
	c.occupied -= ent.obj.Size
	return true
}

func (c *clock) OccupiedBytes() uint64 { return c.occupied }
