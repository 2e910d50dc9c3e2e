// Package pope implements the server side of a Partial Order Preserving
// Encryption index: a buffer-tree-like structure that lets a caller
// insert opaque ciphertexts and later issue range queries, revealing to
// the server only the partial order that answering those queries has
// actually required. The tree holds no key; a oracle.Oracle supplies
// whatever plaintext-order information a query needs.
package pope

import (
	"sync"

	"github.com/dsroche/pope/logging"
	"github.com/dsroche/pope/oracle"
)

// Tree is a POPE server index over opaque ciphertexts. It is sequential:
// every exported method holds the tree's mutex for its whole duration, so
// concurrent calls against the same tree run one at a time and exactly
// one operation is ever in flight.
type Tree struct {
	mu sync.Mutex

	root   *node
	l      int // fan-out: leaf cap and max pivot count per internal node
	oracle oracle.Oracle
	count  int64

	log *logging.Logger
}

// New returns a new, empty tree with fan-out l backed by the given
// oracle. l must be positive.
func New(o oracle.Oracle, l int) (*Tree, error) {
	if l <= 0 {
		return nil, ErrInvalidFanout
	}
	return &Tree{
		root:   newLeaf(),
		l:      l,
		oracle: o,
		log:    logging.Discard(),
	}, nil
}

// SetLogger attaches a logger the tree will use to trace its range-path
// work (range begin/end, flushes, promotions) and Verify. The default is
// a no-op logger.
func (t *Tree) SetLogger(l *logging.Logger) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.log = l
}

// Insert appends ct to the root's buffer. This is the whole contract:
// O(1), zero oracle calls, no recursion, no rebalancing. All ordering
// work is deferred to whatever Range call eventually needs it.
func (t *Tree) Insert(ct oracle.CT) error {
	if len(ct) == 0 {
		return ErrEmptyCiphertext
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.root.appendToBuffer(ct)
	t.count++
	return nil
}

// Size returns the number of ciphertexts inserted so far.
func (t *Tree) Size() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}
