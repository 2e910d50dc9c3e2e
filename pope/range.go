package pope

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dsroche/pope/oracle"
)

// Range returns the multiset of inserted ciphertexts whose plaintext
// falls in the closed interval [low, high], per the oracle's order. It
// is the only operation that touches the oracle and the only one that
// mutates tree shape: visited internal nodes flush their buffers, and
// oversized leaves on the query path are promoted.
//
// A mid-query oracle failure leaves the tree invariant-consistent (every
// partition already performed is itself a valid refinement) and reports
// the query failed; no partial result is returned.
func (t *Tree) Range(ctx context.Context, low, high oracle.CT) ([]oracle.CT, error) {
	if len(low) == 0 || len(high) == 0 {
		return nil, ErrEmptyCiphertext
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	reqID := uuid.New()
	t.log.Trace("range", "%s: range(%x, %x) begin", reqID, low, high)

	if t.root.isLeaf() && len(t.root.buffer) == 0 {
		t.log.Trace("range", "%s: empty tree, zero oracle calls", reqID)
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ord, err := t.oracle.Cmp(ctx, low, high)
	if err != nil {
		return nil, fmt.Errorf("pope: comparing range bounds: %w", err)
	}
	if ord == oracle.Greater {
		return nil, nil
	}

	out, err := t.descend(ctx, t.root, low, high, nil)
	if err != nil {
		t.log.Trace("range", "%s: failed: %v", reqID, err)
		return nil, err
	}
	t.log.Trace("range", "%s: returning %d results", reqID, len(out))
	return out, nil
}

// descend resolves a range query at a single node and recurses toward
// the boundary children, appending matches to out.
func (t *Tree) descend(ctx context.Context, n *node, low, high oracle.CT, out []oracle.CT) ([]oracle.CT, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if n.isLeaf() {
		return t.descendLeaf(ctx, n, low, high, out)
	}
	return t.descendInternal(ctx, n, low, high, out)
}

// descendLeaf bulk-compares an in-cap leaf's buffer against [low, high],
// or promotes an oversized one and retries.
func (t *Tree) descendLeaf(ctx context.Context, n *node, low, high oracle.CT, out []oracle.CT) ([]oracle.CT, error) {
	if len(n.buffer) <= t.l {
		for _, ct := range n.buffer {
			in, err := t.inRange(ctx, ct, low, high)
			if err != nil {
				return nil, err
			}
			if in {
				out = append(out, ct)
			}
		}
		return out, nil
	}

	if err := t.promote(ctx, n); err != nil {
		return nil, err
	}
	// n is now internal; re-descend into it for the same query.
	return t.descend(ctx, n, low, high, out)
}

// descendInternal flushes the node's buffer against its pivots, locates
// the boundary children that overlap [low, high], deep collects every
// fully-in-range child in between, and recurses into the two boundary
// children.
func (t *Tree) descendInternal(ctx context.Context, n *node, low, high oracle.CT, out []oracle.CT) ([]oracle.CT, error) {
	if err := t.flush(ctx, n); err != nil {
		return nil, err
	}

	iLo, equalLow, err := oracle.Bisect(ctx, t.oracle, low, n.pivots)
	if err != nil {
		return nil, err
	}
	iHi, equalHigh, err := oracle.Bisect(ctx, t.oracle, high, n.pivots)
	if err != nil {
		return nil, err
	}
	if iLo > iHi {
		return nil, fmt.Errorf("pope: bisection of range bounds disagreed (iLo=%d, iHi=%d): %w", iLo, iHi, oracle.ErrInconsistent)
	}

	// Every pivot strictly between the two boundary children (indices
	// iLo through iHi-1) is provably within [low, high] by construction
	// of iLo/iHi (see the bisect doc comment in oracle/fallback.go): no
	// extra oracle calls are needed to confirm it. Pivot iHi only belongs
	// if high landed exactly on it. When iLo == iHi there is no pivot
	// between the boundaries, and that single pivot belongs only if low
	// landed exactly on it; it must not be emitted twice.
	includedLo := iLo < iHi
	for m := iLo; m < iHi; m++ {
		out = append(out, n.pivots[m])
	}
	if equalLow && !includedLo {
		out = append(out, n.pivots[iLo])
		includedLo = true
	}
	if equalHigh && !(iHi == iLo && includedLo) {
		out = append(out, n.pivots[iHi])
	}

	for j := iLo + 1; j < iHi; j++ {
		out = collectAll(n.children[j], out)
	}

	out, err = t.descend(ctx, n.children[iLo], low, high, out)
	if err != nil {
		return nil, err
	}
	if iHi != iLo {
		out, err = t.descend(ctx, n.children[iHi], low, high, out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// flush partitions an internal node's buffer against its pivots via a
// single batched oracle call and pushes each item into the appropriate
// child's buffer.
func (t *Tree) flush(ctx context.Context, n *node) error {
	if len(n.buffer) == 0 {
		return nil
	}

	buckets, err := t.oracle.Partition(ctx, n.buffer, n.pivots)
	if err != nil {
		return err
	}
	if len(buckets) != len(n.buffer) {
		return fmt.Errorf("pope: Partition returned %d buckets for %d items: %w", len(buckets), len(n.buffer), oracle.ErrInconsistent)
	}
	for _, b := range buckets {
		if b < 0 || b >= len(n.children) {
			return fmt.Errorf("pope: Partition returned out-of-range bucket %d: %w", b, oracle.ErrInconsistent)
		}
	}

	for i, ct := range n.buffer {
		n.children[buckets[i]].appendToBuffer(ct)
	}
	t.log.Trace("flush", "flushed %d items into %d children", len(n.buffer), len(n.children))
	n.buffer = nil
	return nil
}

// inRange reports whether low <= ct <= high per the oracle, using at
// most two comparisons per candidate.
func (t *Tree) inRange(ctx context.Context, ct, low, high oracle.CT) (bool, error) {
	lowOrd, err := t.oracle.Cmp(ctx, low, ct)
	if err != nil {
		return false, err
	}
	if lowOrd == oracle.Greater {
		return false, nil
	}
	highOrd, err := t.oracle.Cmp(ctx, ct, high)
	if err != nil {
		return false, err
	}
	return highOrd != oracle.Greater, nil
}
