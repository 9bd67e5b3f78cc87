package cache

import (
	"container/list"

	"github.com/mrc-sim/mrc-sim/sim"
)

func init() {
	Register("lfu", NewLFU)
}

type lfuEntry struct {
	obj  *sim.Object
	freq int
}

// lfu evicts the least frequently used object, breaking frequency ties by
// recency (least recent goes first). Entries live in per-frequency lists so
// promotion and eviction avoid scans.
type lfu struct {
	capacity uint64
	occupied uint64
	items    map[uint64]*list.Element
	freqs    map[int]*list.List
	minFreq  int
	maxFreq  int
}

// NewLFU returns an LFU cache bounded to capacity bytes.
func NewLFU(capacity uint64) sim.Cache {
	return &lfu{
		capacity: capacity,
		items:    make(map[uint64]*list.Element),
		freqs:    make(map[int]*list.List),
	}
}

func (c *lfu) Name() string { return "lfu" }

func (c *lfu) Get(req *sim.Request) bool { return access(c, req) }

func (c *lfu) bucket(freq int) *list.List {
	ll, ok := c.freqs[freq]
	if !ok {
		ll = list.New()
		c.freqs[freq] = ll
	}
	return ll
}

func (c *lfu) promote(ele *list.Element) {
	ent := ele.Value.(*lfuEntry)
	old := ent.freq
	c.freqs[old].Remove(ele)
	if c.freqs[old].Len() == 0 {
		delete(c.freqs, old)
		if c.minFreq == old {
			c.minFreq = old + 1
		}
	}
	ent.freq++
	if ent.freq > c.maxFreq {
		c.maxFreq = ent.freq
	}
	c.items[ent.obj.ID] = c.bucket(ent.freq).PushFront(ent)
}

func (c *lfu) Find(req *sim.Request, update bool) (*sim.Object, bool) {
	ele, ok := c.items[req.ID]
	if !ok {
		return nil, false
	}
	ent := ele.Value.(*lfuEntry)
	if update {
		c.promote(ele)
	}
	return ent.obj, true
}

func (c *lfu) CanInsert(req *sim.Request) bool { return req.Size <= c.capacity }

func (c *lfu) NeedEviction(req *sim.Request) bool { return c.occupied+req.Size > c.capacity }

func (c *lfu) Insert(req *sim.Request) *sim.Object {
	obj := &sim.Object{ID: req.ID, Size: req.Size}
	ent := &lfuEntry{obj: obj, freq: 1}
	c.items[req.ID] = c.bucket(1).PushFront(ent)
	c.occupied += req.Size
	c.minFreq = 1
	if c.maxFreq < 1 {
		c.maxFreq = 1
	}
	return obj
}

func (c *lfu) Evict() *sim.Object {
	if len(c.items) == 0 {
		return nil
	}
	for c.minFreq <= c.maxFreq {
		if ll, ok := c.freqs[c.minFreq]; ok && ll.Len() > 0 {
			break
		}
		c.minFreq++
	}
	ll := c.freqs[c.minFreq]
	back := ll.Back()
	ent := back.Value.(*lfuEntry)
	ll.Remove(back)
	if ll.Len() == 0 {
		delete(c.freqs, c.minFreq)
	}
	delete(c.items, ent.obj.ID)
	c.occupied -= ent.obj.Size
	return ent.obj
}

func (c *lfu) Remove(id uint64) bool {
	ele, ok := c.items[id]
	if !ok {
		return false
	}
	ent := ele.Value.(*lfuEntry)
	ll := c.freqs[ent.freq]
	ll.Remove(ele)
	if ll.Len() == 0 {
		delete(c.freqs, ent.freq)
	}
	delete(c.items, id)
	c.occupied -= ent.obj.Size
	return true
}

func (c *lfu) OccupiedBytes() uint64 { return c.occupied }
