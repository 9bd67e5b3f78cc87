package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("arc", NewARC)
}

// arc list identifiers.
const (
	arcT1 = iota // resident, seen once recently
	arcT2        // resident, seen at least twice
	arcB1        // ghost history of T1 evictions
	arcB2        // ghost history of T2 evictions
)

type arcLoc struct {
	list int
	ele  *list.Element
}

// arc is an adaptive replacement cache generalized to byte-sized objects:
// the target split p between the recency side (T1) and the frequency side
// (T2) is tracked in bytes and adapted on ghost hits.
type arc struct {
	capacity uint64
	p        uint64 // target byte size of T1
	lists    [4]*list.List
	bytes    [4]uint64
	items    map[uint64]arcLoc
}

// NewARC returns an ARC cache bounded to capacity bytes.
func NewARC(capacity uint64) sim.Cache {
	c := &arc{
		capacity: capacity,
		items:    make(map[uint64]arcLoc),
	}
	for i := range c.lists {
		c.lists[i] = list.New()
	}
	return c
}

func (c *arc) Name() string { return "arc" }

func (c *arc) Get(req *sim.Request) bool { return access(c, req) }

func (c *arc) pushFront(which int, obj *sim.Object) {
	c.items[obj.ID] = arcLoc{list: which, ele: c.lists[which].PushFront(obj)}
	c.bytes[which] += obj.Size
}

func (c *arc) unlink(id uint64) (*sim.Object, int, bool) {
	loc, ok := c.items[id]
	if !ok {
		return nil, 0, false
	}
	obj := loc.ele.Value.(*sim.Object)
	c.lists[loc.list].Remove(loc.ele)
	c.bytes[loc.list] -= obj.Size
	delete(c.items, id)
	return obj, loc.list, true
}

// dropLRU discards the least recent entry of a ghost list.
func (c *arc) dropLRU(which int) {
	back := c.lists[which].Back()
	if back == nil {
		return
	}
	obj := back.Value.(*sim.Object)
	c.lists[which].Remove(back)
	c.bytes[which] -= obj.Size
	delete(c.items, obj.ID)
}

func (c *arc) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	loc, ok := c.items[req.ID]
	if !ok || (loc.list != arcT1 && loc.list != arcT2) {
		return nil, false
	}
	obj := loc.ele.Value.(*sim.Object)
	if update {
		// Any repeat access promotes to the frequency side.
		obj, _, _ = c.unlink(req.ID)
		c.pushFront(arcT2, obj)
	}
	return obj, true
}

func (c *arc) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *arc) NeedEviction(req *sim.Request) bool {
	return c.bytes[arcT1]+c.bytes[arcT2]+req.Size > c.capacity
}

func (c *arc) Insert(req *sim.Request) *sim.Object {
	if loc, ok := c.items[req.ID]; ok && (loc.list == arcB1 || loc.list == arcB2) {
		// Ghost hit: adapt the target split toward the side that would have
		// kept the object, then admit straight into T2.
		obj, from, _ := c.unlink(req.ID)
		if from == arcB1 {
			delta := req.Size
			if c.bytes[arcB2] > c.bytes[arcB1] && c.bytes[arcB1] > 0 {
				delta = req.Size * (c.bytes[arcB2] / c.bytes[arcB1])
			}
			if c.p+delta > c.capacity {
				c.p = c.capacity
			} else {
				c.p += delta
			}
		} else {
			delta := req.Size
			if c.bytes[arcB1] > c.bytes[arcB2] && c.bytes[arcB2] > 0 {
				delta = req.Size * (c.bytes[arcB1] / c.bytes[arcB2])
			}
			if delta > c.p {
				c.p = 0
			} else {
				c.p -= delta
			}
		}
		obj.Size = req.Size
		c.pushFront(arcT2, obj)
		return obj
	}

	obj := &sim.Object{ID: req.ID, Size: req.Size}
	c.pushFront(arcT1, obj)
	// Directory bounds: recency side (T1+B1) within capacity, everything
	// within twice the capacity.
	for c.bytes[arcT1]+c.bytes[arcB1] > c.capacity && c.lists[arcB1].Len() > 0 {
		c.dropLRU(arcB1)
	}
	total := c.bytes[arcT1] + c.bytes[arcT2] + c.bytes[arcB1] + c.bytes[arcB2]
	for total > 2*c.capacity && c.lists[arcB2].Len() > 0 {
		c.dropLRU(arcB2)
		total = c.bytes[arcT1] + c.bytes[arcT2] + c.bytes[arcB1] + c.bytes[arcB2]
	}
	return obj
}

func (c *arc) Evict() *sim.Object {
	var from int
	switch {
	case c.lists[arcT1].Len() > 0 && (c.bytes[arcT1] > c.p || c.lists[arcT2].Len() == 0):
		from = arcT1
	case c.lists[arcT2].Len() > 0:
		from = arcT2
	case c.lists[arcT1].Len() > 0:
		from = arcT1
	default:
		return nil
	}
	back := c.lists[from].Back()
	obj := back.Value.(*sim.Object)
	c.lists[from].Remove(back)
	c.bytes[from] -= obj.Size
	delete(c.items, obj.ID)
	if from == arcT1 {
		c.pushFront(arcB1, obj)
	} else {
		c.pushFront(arcB2, obj)
	}
	return obj
}

func (c *arc) Remove(id uint64) bool {
	loc, ok := c.items[id]
	if !ok {
		return false
	}
	resident := loc.list == arcT1 || loc.list == arcT2
	c.unlink(id)
	return resident
}

func (c *arc) OccupiedBytes() uint64 { return c.bytes[arcT1] + c.bytes[arcT2] }
