package pope

import (
	"bytes"
	"context"
	"fmt"

	"github.com/dsroche/pope/oracle"
)

// promote turns an oversized leaf into an internal node: sort the
// buffer, collapse oracle-equal runs into one representative each,
// sample up to l of the resulting distinct values as pivots, and
// partition the original buffer across l+1 fresh leaf children.
//
// Pivots are chosen by evenly spaced sampling rather than taking every
// distinct value, because a single leaf's buffer can hold arbitrarily
// more than l·(l+1) items; a child that ends up oversized anyway is
// handled by descendLeaf re-entering promote on its next visit. See
// DESIGN.md for the full rationale.
func (t *Tree) promote(ctx context.Context, n *node) error {
	sorted, err := t.oracle.Sort(ctx, n.buffer)
	if err != nil {
		return err
	}
	if len(sorted) != len(n.buffer) {
		return fmt.Errorf("pope: Sort returned %d items for %d input: %w", len(sorted), len(n.buffer), oracle.ErrInconsistent)
	}

	distinct, err := t.dedupeSorted(ctx, sorted)
	if err != nil {
		return err
	}

	pivots := samplePivots(distinct, t.l)
	children := make([]*node, len(pivots)+1)
	for i := range children {
		children[i] = newLeaf()
	}

	buckets, err := t.oracle.Partition(ctx, n.buffer, pivots)
	if err != nil {
		return err
	}
	if len(buckets) != len(n.buffer) {
		return fmt.Errorf("pope: Partition returned %d buckets for %d input: %w", len(buckets), len(n.buffer), oracle.ErrInconsistent)
	}
	// Each pivot is one of the buffer's own CTs. Exactly one buffer
	// instance of it is held as the pivot and left out of the children;
	// any further copies go to the child on its left like other equal CTs.
	installed := make([]bool, len(pivots))
	for i, ct := range n.buffer {
		b := buckets[i]
		if b < 0 || b >= len(children) {
			return fmt.Errorf("pope: Partition returned out-of-range bucket %d: %w", b, oracle.ErrInconsistent)
		}
		if b < len(pivots) && !installed[b] && bytes.Equal(ct, pivots[b]) {
			installed[b] = true
			continue
		}
		children[b].appendToBuffer(ct)
	}

	n.promoteToInternal(pivots, children)
	t.log.Trace("promote", "leaf promoted: %d pivots, %d children", len(pivots), len(children))
	return nil
}

// dedupeSorted collapses adjacent oracle-equal items from an
// oracle.Sort-ordered slice into a single representative each, using one
// Cmp call per adjacent pair. A Greater result between supposedly
// adjacent sorted items means the oracle contradicted its own Sort
// result, which is reported as ErrInconsistent rather than silently
// reordered.
func (t *Tree) dedupeSorted(ctx context.Context, sorted []oracle.CT) ([]oracle.CT, error) {
	if len(sorted) == 0 {
		return nil, nil
	}

	distinct := make([]oracle.CT, 0, len(sorted))
	distinct = append(distinct, sorted[0])
	for i := 1; i < len(sorted); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ord, err := t.oracle.Cmp(ctx, sorted[i-1], sorted[i])
		if err != nil {
			return nil, err
		}
		switch ord {
		case oracle.Less:
			distinct = append(distinct, sorted[i])
		case oracle.Equal:
			// same plaintext value as the previous entry; collapse
		case oracle.Greater:
			return nil, fmt.Errorf("pope: Sort result not actually ordered at index %d: %w", i, oracle.ErrInconsistent)
		}
	}
	return distinct, nil
}

// samplePivots picks up to l strictly increasing pivots out of distinct,
// which must already be sorted ascending with no duplicates. When
// len(distinct) <= l, every distinct value becomes a pivot, so fewer than
// l pivots come back whenever there are fewer than l distinct values.
// Otherwise it samples l evenly spaced values; since len(distinct) > l,
// consecutive sample indices differ by at least one, so exactly l
// pivots are produced in that case.
func samplePivots(distinct []oracle.CT, l int) []oracle.CT {
	m := len(distinct)
	if m <= l {
		out := make([]oracle.CT, m)
		copy(out, distinct)
		return out
	}

	pivots := make([]oracle.CT, 0, l)
	lastIdx := -1
	for i := 0; i < l; i++ {
		idx := (i + 1) * m / (l + 1)
		if idx >= m {
			idx = m - 1
		}
		if idx == lastIdx {
			continue
		}
		pivots = append(pivots, distinct[idx])
		lastIdx = idx
	}
	return pivots
}
