package pope

import (
	"context"
	"fmt"

	"github.com/dsroche/pope/oracle"
)

// Verify walks the whole tree and checks the invariants that must
// always hold: every internal node has exactly one more child than
// pivot, pivots are strictly increasing per the oracle, and the total
// number of stored ciphertexts (buffers plus permanently installed
// pivots, recursively) equals the count of successful Insert calls.
//
// It is not part of the server's operational contract; it exists for
// tests and for an operator who wants to sanity-check a tree after a
// suspected oracle inconsistency.
func (t *Tree) Verify(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	n, err := t.verifyNode(ctx, t.root)
	if err != nil {
		return err
	}

	all := collectAll(t.root, nil)
	if int64(len(all)) != t.count {
		return fmt.Errorf("pope: conservation broken: %d ciphertexts stored, %d inserted", len(all), t.count)
	}
	t.log.Trace("verify", "visited %d nodes, %d ciphertexts accounted for", n, len(all))
	return nil
}

// verifyNode recursively checks a single node's shape invariant and,
// for internal nodes, its pivots' ordering, and returns the number of
// nodes visited in this subtree.
func (t *Tree) verifyNode(ctx context.Context, n *node) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if n.isLeaf() {
		if len(n.pivots) != 0 || len(n.children) != 0 {
			return 0, fmt.Errorf("pope: leaf node carries pivots/children")
		}
		return 1, nil
	}

	if len(n.children) != len(n.pivots)+1 {
		return 0, fmt.Errorf("pope: internal node has %d pivots but %d children", len(n.pivots), len(n.children))
	}

	for i := 1; i < len(n.pivots); i++ {
		ord, err := t.oracle.Cmp(ctx, n.pivots[i-1], n.pivots[i])
		if err != nil {
			return 0, err
		}
		if ord != oracle.Less {
			return 0, fmt.Errorf("pope: pivots not strictly increasing at index %d: %w", i, oracle.ErrInconsistent)
		}
	}

	visited := 1
	for _, child := range n.children {
		count, err := t.verifyNode(ctx, child)
		if err != nil {
			return 0, err
		}
		visited += count
	}
	return visited, nil
}

// Stats summarizes the shape of the tree: node, leaf and pivot counts,
// and the depth of the deepest leaf. There is no on-disk page store to account
// for; every node counted here lives in process memory.
type Stats struct {
	Nodes     int
	Leaves    int
	Pivots    int
	LeafDepth int
}

// Stats walks the tree and returns shape counters. It makes no oracle
// calls.
func (t *Tree) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	statNode(t.root, 0, &s)
	return s
}

func statNode(n *node, depth int, s *Stats) {
	s.Nodes++
	if n.isLeaf() {
		s.Leaves++
		if depth > s.LeafDepth {
			s.LeafDepth = depth
		}
		return
	}
	s.Pivots += len(n.pivots)
	for _, child := range n.children {
		statNode(child, depth+1, s)
	}
}
