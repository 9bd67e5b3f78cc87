// Splay-tree reuse index used for stack-distance computation.
//
// The tree is keyed by logical access time and every node carries the byte
// sum of its subtree, so "total bytes of distinct objects accessed after
// time t" is one splay plus one subtree-sum read. Nodes live in an arena
// and reference each other by index, not pointer.

package sim

// nilNode marks an absent child/parent link in the arena.
const nilNode int32 = -1

type reuseNode struct {
	time int64
	size uint64
	sum  uint64 // byte sum of the subtree rooted here, own size included
	left, right, parent int32
}

// ReuseIndex holds one entry per currently tracked distinct object:
// its last access time and its size. Insert, Erase and DistanceSince are
// amortized O(log n) via splaying.
type ReuseIndex struct {
	nodes []reuseNode
	free  []int32
	root  int32
	count int
}

// NewReuseIndex returns an empty index.
func NewReuseIndex() *ReuseIndex {
	return &ReuseIndex{root: nilNode}
}

// Len returns the number of entries currently indexed.
func (ix *ReuseIndex) Len() int { return ix.count }

// TotalBytes returns the byte sum over all indexed entries.
func (ix *ReuseIndex) TotalBytes() uint64 { return ix.sum(ix.root) }

func (ix *ReuseIndex) alloc(t int64, size uint64) int32 {
	if n := len(ix.free); n > 0 {
		id := ix.free[n-1]
		ix.free = ix.free[:n-1]
		ix.nodes[id] = reuseNode{time: t, size: size, sum: size, left: nilNode, right: nilNode, parent: nilNode}
		return id
	}
	ix.nodes = append(ix.nodes, reuseNode{time: t, size: size, sum: size, left: nilNode, right: nilNode, parent: nilNode})
	return int32(len(ix.nodes) - 1)
}

func (ix *ReuseIndex) sum(n int32) uint64 {
	if n == nilNode {
		return 0
	}
	return ix.nodes[n].sum
}

// pull recomputes n's subtree sum from its children.
func (ix *ReuseIndex) pull(n int32) {
	nd := &ix.nodes[n]
	nd.sum = nd.size + ix.sum(nd.left) + ix.sum(nd.right)
}

// rotate lifts x above its parent, keeping subtree sums consistent.
func (ix *ReuseIndex) rotate(x int32) {
	p := ix.nodes[x].parent
	g := ix.nodes[p].parent
	if ix.nodes[p].left == x {
		b := ix.nodes[x].right
		ix.nodes[p].left = b
		if b != nilNode {
			ix.nodes[b].parent = p
		}
		ix.nodes[x].right = p
	} else {
		b := ix.nodes[x].left
		ix.nodes[p].right = b
		if b != nilNode {
			ix.nodes[b].parent = p
		}
		ix.nodes[x].left = p
	}
	ix.nodes[p].parent = x
	ix.nodes[x].parent = g
	if g != nilNode {
		if ix.nodes[g].left == p {
			ix.nodes[g].left = x
		} else {
			ix.nodes[g].right = x
		}
	} else {
		ix.root = x
	}
	ix.pull(p)
	ix.pull(x)
}

// splay moves x to the root of its tree using zig/zig-zig/zig-zag steps.
func (ix *ReuseIndex) splay(x int32) {
	for {
		p := ix.nodes[x].parent
		if p == nilNode {
			return
		}
		g := ix.nodes[p].parent
		if g != nilNode {
			if (ix.nodes[g].left == p) == (ix.nodes[p].left == x) {
				ix.rotate(p) // zig-zig
			} else {
				ix.rotate(x) // zig-zag
			}
		}
		ix.rotate(x)
	}
}

// find locates the node keyed t and splays it (or, when absent, the last
// node touched on the search path) to the root. Returns nilNode if absent.
func (ix *ReuseIndex) find(t int64) int32 {
	n := ix.root
	last := nilNode
	for n != nilNode {
		last = n
		nd := &ix.nodes[n]
		switch {
		case t < nd.time:
			n = nd.left
		case t > nd.time:
			n = nd.right
		default:
			ix.splay(n)
			return n
		}
	}
	if last != nilNode {
		ix.splay(last)
	}
	return nilNode
}

// Insert adds an entry for an access at time t with the given byte size.
// Logical times are unique per trace position; inserting an existing time
// overwrites that entry's size.
func (ix *ReuseIndex) Insert(t int64, size uint64) {
	if ix.root == nilNode {
		ix.root = ix.alloc(t, size)
		ix.count++
		return
	}
	n := ix.root
	for {
		nd := &ix.nodes[n]
		if t == nd.time {
			nd.size = size
			ix.splay(n)
			ix.pull(n)
			return
		}
		if t < nd.time {
			if nd.left == nilNode {
				c := ix.alloc(t, size)
				ix.nodes[c].parent = n
				ix.nodes[n].left = c
				ix.count++
				ix.splay(c)
				return
			}
			n = nd.left
		} else {
			if nd.right == nilNode {
				c := ix.alloc(t, size)
				ix.nodes[c].parent = n
				ix.nodes[n].right = c
				ix.count++
				ix.splay(c)
				return
			}
			n = nd.right
		}
	}
}

// Erase removes the entry at time t, if present.
func (ix *ReuseIndex) Erase(t int64) bool {
	n := ix.find(t)
	if n == nilNode {
		return false
	}
	// n is now the root; join its subtrees.
	l, r := ix.nodes[n].left, ix.nodes[n].right
	if l != nilNode {
		ix.nodes[l].parent = nilNode
	}
	if r != nilNode {
		ix.nodes[r].parent = nilNode
	}
	if l == nilNode {
		ix.root = r
	} else {
		// Splay the maximum of the left subtree to its root, then hang the
		// right subtree off it.
		m := l
		for ix.nodes[m].right != nilNode {
			m = ix.nodes[m].right
		}
		ix.root = l
		ix.splay(m)
		ix.nodes[m].right = r
		if r != nilNode {
			ix.nodes[r].parent = m
		}
		ix.pull(m)
	}
	ix.free = append(ix.free, n)
	ix.count--
	return true
}

// DistanceSince returns the byte sum of all entries accessed strictly after
// time t, i.e. the reuse distance of an access whose previous access was at
// t. Returns ok=false when t is not indexed.
func (ix *ReuseIndex) DistanceSince(t int64) (uint64, bool) {
	n := ix.find(t)
	if n == nilNode {
		return 0, false
	}
	return ix.sum(ix.nodes[n].right), true
}
