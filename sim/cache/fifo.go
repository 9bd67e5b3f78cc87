package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("fifo", NewFIFO)
}

// fifo evicts in insertion order; accesses never promote.
type fifo struct {
	capacity uint64
	occupied uint64
	ll       *list.List
	items    map[uint64]*list.Element
}

// NewFIFO returns a FIFO cache bounded to capacity bytes.
func NewFIFO(capacity uint64) sim.Cache {
	return &fifo{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[uint64]*list.Element),
	}
}

func (c *fifo) Name() string { return "fifo" }

func (c *fifo) Get(req *sim.Request) bool { return access(c, req) }

func (c *fifo) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	return ele.Value.(*sim.Object), true
}

func (c *fifo) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *fifo) NeedEviction(req *sim.Request) bool { return c.occupied+req.Size > c.capacity }

func (c *fifo) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	c.items[req.ID] = c.ll.PushFront(obj)
	c.occupied += req.Size
	return obj
}

func (c *fifo) Evict() *sim.Object {
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

func (c *fifo) Remove(id uint64) bool {
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

func (c *fifo) OccupiedBytes() uint64 { return c.occupied }
