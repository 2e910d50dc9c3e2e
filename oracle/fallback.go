package oracle

import (
	"context"
	"sort"
)

// SortViaCmp sorts items using only a Cmp-shaped comparison function. It
// lets an Oracle implementation that only wants to provide Cmp still
// satisfy the full interface: Sort = SortViaCmp(ctx, cmp, items).
func SortViaCmp(ctx context.Context, cmp func(context.Context, CT, CT) (Ordering, error), items []CT) ([]CT, error) {
	out := make([]CT, len(items))
	copy(out, items)

	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		if sortErr != nil {
			return false
		}
		ord, err := cmp(ctx, out[i], out[j])
		if err != nil {
			sortErr = err
			return false
		}
		return ord == Less
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return out, nil
}

// PartitionViaCmp buckets items against pivots using only Cmp, via one
// binary search per item (O(|items| * log(len(pivots)+1)) comparisons).
func PartitionViaCmp(ctx context.Context, cmp func(context.Context, CT, CT) (Ordering, error), items []CT, pivots []CT) ([]int, error) {
	out := make([]int, len(items))
	for i, item := range items {
		idx, _, err := bisect(ctx, cmp, item, pivots)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// bisect locates target among a strictly increasing pivot list. It
// returns the number of pivots strictly less than target, and whether
// pivots[index] (when it exists) is exactly equal to target. Pivot
// uniqueness (at most one equal index) is assumed, per the tree's
// invariant that pivots are strictly increasing.
func bisect(ctx context.Context, cmp func(context.Context, CT, CT) (Ordering, error), target CT, pivots []CT) (index int, equal bool, err error) {
	lo, hi := 0, len(pivots)
	for lo < hi {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		mid := (lo + hi) / 2
		ord, err := cmp(ctx, target, pivots[mid])
		if err != nil {
			return 0, false, err
		}
		switch ord {
		case Less:
			hi = mid
		case Greater:
			lo = mid + 1
		case Equal:
			return mid, true, nil
		}
	}
	return lo, false, nil
}

// Bisect exposes bisect for callers (the pope package) that need the
// exact same locate-a-target-among-pivots primitive outside of a full
// Partition call, e.g. to find the boundary children for a range query.
func Bisect(ctx context.Context, o Oracle, target CT, pivots []CT) (index int, equal bool, err error) {
	return bisect(ctx, o.Cmp, target, pivots)
}
