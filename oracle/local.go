package oracle

import "context"

// CompareFunc reports the plaintext order of a and b: negative if a < b,
// zero if equal, positive if a > b. It is the same shape as the
// comparator a caller would hand to sort.Slice or slices.BinarySearchFunc.
type CompareFunc func(a, b CT) int

// Local is a reference, in-process oracle backed directly by a plaintext
// comparator. It stands in for the real comparison oracle the way
// kloset/btree's InMemoryStore stands in for a real node store: useful for
// tests and for a local demo, never for production (a real deployment's
// oracle is a separate, keyed process reached over some transport, which
// is explicitly out of scope here).
type Local struct {
	compare CompareFunc
}

// NewLocal returns a Local oracle using the given comparator.
func NewLocal(compare CompareFunc) *Local {
	return &Local{compare: compare}
}

func (l *Local) Cmp(ctx context.Context, a, b CT) (Ordering, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	switch c := l.compare(a, b); {
	case c < 0:
		return Less, nil
	case c > 0:
		return Greater, nil
	default:
		return Equal, nil
	}
}

func (l *Local) Sort(ctx context.Context, items []CT) ([]CT, error) {
	return SortViaCmp(ctx, l.Cmp, items)
}

func (l *Local) Partition(ctx context.Context, items []CT, pivots []CT) ([]int, error) {
	return PartitionViaCmp(ctx, l.Cmp, items, pivots)
}
