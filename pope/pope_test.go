package pope

import (
	"context"
	"slices"
	"sort"
	"strconv"
	"testing"

	"github.com/dsroche/pope/oracle"
)

func intCompare(a, b oracle.CT) int {
	ai, _ := strconv.Atoi(string(a))
	bi, _ := strconv.Atoi(string(b))
	return ai - bi
}

func ct(n int) oracle.CT {
	return oracle.CT(strconv.Itoa(n))
}

func newIntTree(t *testing.T, l int) *Tree {
	t.Helper()
	o := oracle.NewLocal(intCompare)
	tree, err := New(o, l)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tree
}

func insertAll(t *testing.T, tree *Tree, values []int) {
	t.Helper()
	for _, v := range values {
		if err := tree.Insert(ct(v)); err != nil {
			t.Fatalf("Insert(%d) failed: %v", v, err)
		}
	}
}

func toInts(t *testing.T, cts []oracle.CT) []int {
	t.Helper()
	out := make([]int, len(cts))
	for i, c := range cts {
		n, err := strconv.Atoi(string(c))
		if err != nil {
			t.Fatalf("result %q is not an int: %v", c, err)
		}
		out[i] = n
	}
	return out
}

func assertSameMultiset(t *testing.T, got, want []int) {
	t.Helper()
	gotSorted := slices.Clone(got)
	wantSorted := slices.Clone(want)
	sort.Ints(gotSorted)
	sort.Ints(wantSorted)
	if !slices.Equal(gotSorted, wantSorted) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNewRejectsNonPositiveFanout(t *testing.T) {
	o := oracle.NewLocal(intCompare)
	if _, err := New(o, 0); err != ErrInvalidFanout {
		t.Fatalf("New(0) error = %v, want ErrInvalidFanout", err)
	}
	if _, err := New(o, -1); err != ErrInvalidFanout {
		t.Fatalf("New(-1) error = %v, want ErrInvalidFanout", err)
	}
}

func TestInsertRejectsEmptyCiphertext(t *testing.T) {
	tree := newIntTree(t, 4)
	if err := tree.Insert(oracle.CT{}); err != ErrEmptyCiphertext {
		t.Fatalf("Insert(empty) error = %v, want ErrEmptyCiphertext", err)
	}
	if tree.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", tree.Size())
	}
}

func TestRangeRejectsEmptyBounds(t *testing.T) {
	tree := newIntTree(t, 4)
	if _, err := tree.Range(context.Background(), oracle.CT{}, ct(5)); err != ErrEmptyCiphertext {
		t.Fatalf("Range(empty, 5) error = %v, want ErrEmptyCiphertext", err)
	}
}

func TestRangeOnEmptyTree(t *testing.T) {
	tree := newIntTree(t, 4)
	out, err := tree.Range(context.Background(), ct(1), ct(10))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("Range on empty tree returned %v, want none", out)
	}
}

func TestRangeLowGreaterThanHighReturnsEmpty(t *testing.T) {
	tree := newIntTree(t, 4)
	insertAll(t, tree, []int{1, 2, 3})
	out, err := tree.Range(context.Background(), ct(9), ct(1))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("Range(9, 1) returned %v, want none", out)
	}
}

func TestRangeWithinSingleLeaf(t *testing.T) {
	tree := newIntTree(t, 10)
	insertAll(t, tree, []int{5, 1, 9, 3, 7, 2, 8})

	out, err := tree.Range(context.Background(), ct(3), ct(8))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	assertSameMultiset(t, toInts(t, out), []int{3, 5, 7, 8})
}

func TestRangeForcesPromotionOfOversizedLeaf(t *testing.T) {
	tree := newIntTree(t, 3)
	insertAll(t, tree, []int{10, 1, 7, 3, 9, 2, 8, 4, 6, 5})

	out, err := tree.Range(context.Background(), ct(4), ct(8))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	assertSameMultiset(t, toInts(t, out), []int{4, 5, 6, 7, 8})
	if tree.root.isLeaf() {
		t.Fatalf("root should have been promoted by the range query")
	}
	if err := tree.Verify(context.Background()); err != nil {
		t.Fatalf("Verify failed after promotion: %v", err)
	}
}

func TestRangeExactPivotBoundaries(t *testing.T) {
	tree := newIntTree(t, 3)
	insertAll(t, tree, []int{10, 1, 7, 3, 9, 2, 8, 4, 6, 5})

	if _, err := tree.Range(context.Background(), ct(0), ct(100)); err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if tree.root.isLeaf() {
		t.Fatalf("root should have been promoted")
	}

	pivot := tree.root.pivots[0]
	out, err := tree.Range(context.Background(), pivot, pivot)
	if err != nil {
		t.Fatalf("Range(pivot, pivot) failed: %v", err)
	}
	if len(out) != 1 || string(out[0]) != string(pivot) {
		t.Fatalf("Range(pivot, pivot) = %v, want [%s]", out, pivot)
	}
}

func TestRangeIsRepeatable(t *testing.T) {
	tree := newIntTree(t, 3)
	insertAll(t, tree, []int{10, 1, 7, 3, 9, 2, 8, 4, 6, 5, 11, 12, 13, 0})

	out1, err := tree.Range(context.Background(), ct(2), ct(11))
	if err != nil {
		t.Fatalf("first Range failed: %v", err)
	}
	out2, err := tree.Range(context.Background(), ct(2), ct(11))
	if err != nil {
		t.Fatalf("second Range failed: %v", err)
	}

	want := []int{2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	assertSameMultiset(t, toInts(t, out1), want)
	assertSameMultiset(t, toInts(t, out2), want)
}

func TestRangeWithDuplicates(t *testing.T) {
	tree := newIntTree(t, 3)
	insertAll(t, tree, []int{5, 5, 5, 1, 9, 5, 2})

	out, err := tree.Range(context.Background(), ct(5), ct(5))
	if err != nil {
		t.Fatalf("Range failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("Range(5, 5) returned %d results, want 4", len(out))
	}
	if err := tree.Verify(context.Background()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
}

func TestVerifyPassesAfterMixedWorkload(t *testing.T) {
	tree := newIntTree(t, 4)
	insertAll(t, tree, []int{20, 3, 17, 9, 1, 14, 6, 11, 19, 2, 8, 15, 4, 13, 10, 18, 5, 12, 16, 7})

	if _, err := tree.Range(context.Background(), ct(5), ct(15)); err != nil {
		t.Fatalf("first Range failed: %v", err)
	}
	if _, err := tree.Range(context.Background(), ct(1), ct(20)); err != nil {
		t.Fatalf("second Range failed: %v", err)
	}

	if err := tree.Verify(context.Background()); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if tree.Size() != 20 {
		t.Fatalf("Size() = %d, want 20", tree.Size())
	}
}

func TestRangeCancelledContext(t *testing.T) {
	tree := newIntTree(t, 2)
	insertAll(t, tree, []int{3, 1, 4, 1, 5, 9, 2, 6})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tree.Range(ctx, ct(1), ct(9)); err == nil {
		t.Fatalf("Range with cancelled context succeeded, want error")
	}
}
