package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("s3fifo", NewS3FIFO)
}

// Fraction of the capacity given to the small probationary queue.
const s3fifoSmallRatio = 0.1

// Access counts saturate here; on main-queue eviction scans the count is
// decremented instead of cleared.
const s3fifoMaxFreq = 3

type s3fifoEntry struct {
	obj  *sim.Object
	freq int
}

// s3fifo keeps a small probationary FIFO in front of a main FIFO plus a
// ghost queue of recently evicted ids. Objects re-seen while in the ghost
// queue skip probation and enter the main queue directly.
type s3fifo struct {
	capacity    uint64
	smallTarget uint64
	small       *list.List
	main        *list.List
	smallBytes  uint64
	mainBytes   uint64
	items       map[uint64]*list.Element // resident entries, in small or main
	inMain      map[uint64]bool

	ghost      *list.List               // ids only, front = newest
	ghostIndex map[uint64]*list.Element
	ghostBytes uint64
}

// NewS3FIFO returns an S3-FIFO cache bounded to capacity bytes.
func NewS3FIFO(capacity uint64) sim.Cache {
	smallTarget := uint64(float64(capacity) * s3fifoSmallRatio)
	if smallTarget == 0 {
		smallTarget = 1
	}
	return &s3fifo{
		capacity:    capacity,
		smallTarget: smallTarget,
		small:       list.New(),
		main:        list.New(),
		items:       make(map[uint64]*list.Element),
		inMain:      make(map[uint64]bool),
		ghost:       list.New(),
		ghostIndex:  make(map[uint64]*list.Element),
	}
}

func (c *s3fifo) Name() string { return "s3fifo" }

func (c *s3fifo) Get(req *sim.Request) bool { return access(c, req) }

func (c *s3fifo) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	ent := ele.Value.(*s3fifoEntry)
	if update && ent.freq < s3fifoMaxFreq {
		ent.freq++
	}
	return ent.obj, true
}

func (c *s3fifo) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *s3fifo) NeedEviction(req *sim.Request) bool {
	return c.smallBytes+c.mainBytes+req.Size > c.capacity
}

func (c *s3fifo) ghostAdd(obj *sim.Object) {
	if _, ok := c.ghostIndex[obj.ID]; ok {
		return
	}
	c.ghostIndex[obj.ID] = c.ghost.PushFront(obj)
	c.ghostBytes += obj.Size
	// The ghost queue remembers at most one main-queue's worth of bytes.
	for c.ghostBytes > c.capacity-c.smallTarget && c.ghost.Len() > 0 {
		back := c.ghost.Back()
		old := back.Value.(*sim.Object)
		c.ghost.Remove(back)
		delete(c.ghostIndex, old.ID)
		c.ghostBytes -= old.Size
	}
}

func (c *s3fifo) ghostRemove(id uint64) bool {
	ele, ok := c.ghostIndex[id]
	if !ok {
		return false
	}
	obj := ele.Value.(*sim.Object)
	c.ghost.Remove(ele)
	delete(c.ghostIndex, id)
	c.ghostBytes -= obj.Size
	return true
}

func (c *s3fifo) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	ent := &s3fifoEntry{obj: obj}
	if c.ghostRemove(req.ID) {
		c.items[req.ID] = c.main.PushFront(ent)
		c.inMain[req.ID] = true
		c.mainBytes += req.Size
	} else {
		c.items[req.ID] = c.small.PushFront(ent)
		c.smallBytes += req.Size
	}
	return obj
}

// Evict frees exactly one resident object. Promotions from the small queue
// and reinsertion credit in the main queue happen inside the loop until a
// victim falls out.
func (c *s3fifo) Evict() *sim.Object {
	for {
		if c.small.Len() == 0 && c.main.Len() == 0 {
			return nil
		}
		if c.small.Len() > 0 && (c.smallBytes >= c.smallTarget || c.main.Len() == 0) {
			back := c.small.Back()
			ent := back.Value.(*s3fifoEntry)
			c.small.Remove(back)
			c.smallBytes -= ent.obj.Size
			if ent.freq > 0 {
				// Seen again while on probation: promote.
				ent.freq = 0
				c.items[ent.obj.ID] = c.main.PushFront(ent)
				c.inMain[ent.obj.ID] = true
				c.mainBytes += ent.obj.Size
				continue
			}
			delete(c.items, ent.obj.ID)
			c.ghostAdd(ent.obj)
			return ent.obj
		}
		back := c.main.Back()
		ent := back.Value.(*s3fifoEntry)
		if ent.freq > 0 {
			ent.freq--
			c.main.MoveToFront(back)
			continue
		}
		c.main.Remove(back)
		c.mainBytes -= ent.obj.Size
		delete(c.items, ent.obj.ID)
		delete(c.inMain, ent.obj.ID)
		return ent.obj
	}
}

func (c *s3fifo) Remove(id uint64) bool {
	ele, ok := c.items[id]
	if !ok {
		return false
	}
	ent := ele.Value.(*s3fifoEntry)
	if c.inMain[id] {
		c.main.Remove(ele)
		c.mainBytes -= ent.obj.Size
		delete(c.inMain, id)
	} else {
		c.small.Remove(ele)
		c.smallBytes -= ent.obj.Size
	}
	delete(c.items, id)
	return true
}

func (c *s3fifo) OccupiedBytes() uint64 { return c.smallBytes + c.mainBytes }
