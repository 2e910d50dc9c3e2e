// Package oracle defines the comparison-oracle capability consumed by the
// POPE tree. The oracle is the key holder's side of the two-party
// construction: it knows the plaintext order of opaque ciphertexts, the
// server never does.
package oracle

import "context"

// CT is an opaque ciphertext. The tree never interprets it; the oracle is
// the only party that can derive order or equality from it.
type CT = []byte

// Ordering is the result of comparing two ciphertexts' plaintexts.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Equal:
		return "equal"
	case Greater:
		return "greater"
	default:
		return "invalid"
	}
}

// Oracle is the capability the POPE tree takes by reference to resolve
// plaintext order. It has exactly the three operations spec'd: a single
// comparison that any implementation must support, and two batched
// operations that exist purely so a remote oracle can amortize round
// trips. An oracle that only wants to implement Cmp can build Sort and
// Partition atop it with SortViaCmp and PartitionViaCmp.
type Oracle interface {
	// Cmp compares the plaintexts underlying a and b.
	Cmp(ctx context.Context, a, b CT) (Ordering, error)

	// Sort returns items in ascending plaintext order. The relative order
	// of plaintext-equal items is unspecified but stable within one call.
	Sort(ctx context.Context, items []CT) ([]CT, error)

	// Partition buckets items against a strictly increasing pivot list.
	// The returned slice has one entry per item in items, each in
	// [0, len(pivots)]: bucket i holds items whose plaintext falls in the
	// open interval (pivots[i-1], pivots[i]) (with sentinel -inf/+inf at
	// the ends). An item whose plaintext equals pivots[j] is reported in
	// bucket j — i.e. the bucket immediately to the left of the pivot it
	// equals — so that duplicate-of-pivot placement is consistent without
	// a separate equality case.
	Partition(ctx context.Context, items []CT, pivots []CT) ([]int, error)
}
