// Package workload records and replays scripted sequences of pope
// operations, serialized as a tagged-union msgpack envelope. This is the
// tool used to capture a reproducible insert/range trace for regression
// testing or for sharing a workload between the demo CLI and a test
// file.
package workload

import (
	"context"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dsroche/pope/pope"
)

// Op is one scripted operation against a Tree.
type Op interface {
	apply(ctx context.Context, tree *pope.Tree) (results int, err error)
}

// Insert is a scripted Tree.Insert call.
type Insert struct {
	CT []byte
}

func (o Insert) apply(_ context.Context, tree *pope.Tree) (int, error) {
	if err := tree.Insert(o.CT); err != nil {
		return 0, err
	}
	return 0, nil
}

// Range is a scripted Tree.Range call.
type Range struct {
	Low, High []byte
}

func (o Range) apply(ctx context.Context, tree *pope.Tree) (int, error) {
	out, err := tree.Range(ctx, o.Low, o.High)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// serializedOp is the wire form of an Op: a type tag plus its
// msgpack-encoded payload.
type serializedOp struct {
	Type string
	Data []byte
}

// Encode serializes a sequence of Ops as msgpack.
func Encode(ops []Op) ([]byte, error) {
	serialized := make([]serializedOp, 0, len(ops))
	for _, op := range ops {
		var s serializedOp
		var err error
		switch o := op.(type) {
		case Insert:
			s.Type = "Insert"
			s.Data, err = msgpack.Marshal(o)
		case Range:
			s.Type = "Range"
			s.Data, err = msgpack.Marshal(o)
		default:
			return nil, fmt.Errorf("workload: unknown op type %T", op)
		}
		if err != nil {
			return nil, fmt.Errorf("workload: encoding %T: %w", op, err)
		}
		serialized = append(serialized, s)
	}
	return msgpack.Marshal(serialized)
}

// Decode deserializes a msgpack-encoded op sequence previously produced
// by Encode.
func Decode(data []byte) ([]Op, error) {
	var serialized []serializedOp
	if err := msgpack.Unmarshal(data, &serialized); err != nil {
		return nil, fmt.Errorf("workload: decoding envelope: %w", err)
	}

	ops := make([]Op, 0, len(serialized))
	for _, s := range serialized {
		var op Op
		switch s.Type {
		case "Insert":
			var o Insert
			if err := msgpack.Unmarshal(s.Data, &o); err != nil {
				return nil, fmt.Errorf("workload: decoding Insert: %w", err)
			}
			op = o
		case "Range":
			var o Range
			if err := msgpack.Unmarshal(s.Data, &o); err != nil {
				return nil, fmt.Errorf("workload: decoding Range: %w", err)
			}
			op = o
		default:
			return nil, fmt.Errorf("workload: unknown op type %q", s.Type)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Result is one op's outcome during Replay: its index in the script and
// the number of ciphertexts a Range returned (always 0 for Insert). An
// op that fails gets no Result; Replay stops and returns its error.
type Result struct {
	Index   int
	Results int
}

// Replay applies ops against tree in order and returns one Result per
// successfully applied op. It stops at the first error.
func Replay(ctx context.Context, tree *pope.Tree, ops []Op) ([]Result, error) {
	results := make([]Result, 0, len(ops))
	for i, op := range ops {
		n, err := op.apply(ctx, tree)
		if err != nil {
			return results, fmt.Errorf("workload: op %d (%T): %w", i, op, err)
		}
		results = append(results, Result{Index: i, Results: n})
	}
	return results, nil
}
