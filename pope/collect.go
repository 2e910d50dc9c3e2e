package pope

import "github.com/dsroche/pope/oracle"

// collectAll appends every CT stored anywhere in the subtree rooted at n
// to out: its own buffer, its pivots (pivots are permanently installed
// CTs, not transient buffer contents — see DESIGN.md's resolution of the
// conservation invariant), and, recursively, every child. It makes no
// oracle calls, since every CT in the subtree is already known to fall
// within the query range by the time a caller reaches for deep
// collection: no further partitioning is needed.
func collectAll(n *node, out []oracle.CT) []oracle.CT {
	out = append(out, n.buffer...)
	if n.isLeaf() {
		return out
	}
	out = append(out, n.pivots...)
	for _, child := range n.children {
		out = collectAll(child, out)
	}
	return out
}
