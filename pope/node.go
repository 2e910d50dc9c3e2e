package pope

import "github.com/dsroche/pope/oracle"

// node is a leaf/internal tagged variant held directly in memory: there
// is no pointer-indirect page store, since the whole tree lives in the
// process's memory for its lifetime. Ownership is exclusive parent-to-
// child; there are no back-pointers.
//
// Leaf: buffer holds an unsorted multiset of CTs, pivots and children are
// nil.
//
// Internal: pivots holds k strictly increasing CTs and children holds
// k+1 child nodes; buffer holds CTs that arrived (via flush from this
// node's parent, or via Insert for the root) since this node was last
// flushed.
type node struct {
	leaf     bool
	buffer   []oracle.CT
	pivots   []oracle.CT
	children []*node
}

// newLeaf returns a fresh leaf with an empty buffer.
func newLeaf() *node {
	return &node{leaf: true}
}

func (n *node) isLeaf() bool {
	return n.leaf
}

// appendToBuffer appends ct to n's buffer. Used both by insert (appending
// to the root) and by flush (appending to a child's buffer).
func (n *node) appendToBuffer(ct oracle.CT) {
	n.buffer = append(n.buffer, ct)
}

// promoteToInternal replaces a leaf's contents in place with an internal
// node carrying the given pivots and children. It panics if n is already
// internal: promotion is a one-way, one-time transition for a given node
// object.
func (n *node) promoteToInternal(pivots []oracle.CT, children []*node) {
	if !n.leaf {
		panic("pope: promoteToInternal called on an internal node")
	}
	if len(children) != len(pivots)+1 {
		panic("pope: promoteToInternal needs exactly len(pivots)+1 children")
	}
	n.leaf = false
	n.pivots = pivots
	n.children = children
	n.buffer = nil
}
