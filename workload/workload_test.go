package workload

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dsroche/pope/oracle"
	"github.com/dsroche/pope/pope"
)

func intCompare(a, b oracle.CT) int {
	ai, _ := strconv.Atoi(string(a))
	bi, _ := strconv.Atoi(string(b))
	return ai - bi
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ops := []Op{
		Insert{CT: []byte("5")},
		Insert{CT: []byte("3")},
		Range{Low: []byte("1"), High: []byte("9")},
	}

	data, err := Encode(ops)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, ops, decoded)
}

func TestReplayAppliesOpsInOrder(t *testing.T) {
	o := oracle.NewLocal(intCompare)
	tree, err := pope.New(o, 4)
	require.NoError(t, err)

	ops := []Op{
		Insert{CT: []byte("5")},
		Insert{CT: []byte("3")},
		Insert{CT: []byte("9")},
		Range{Low: []byte("1"), High: []byte("6")},
	}

	results, err := Replay(context.Background(), tree, ops)
	require.NoError(t, err)
	require.Len(t, results, 4)
	require.Equal(t, 2, results[3].Results)
	require.Equal(t, int64(3), tree.Size())
}

func TestReplayStopsAtFirstError(t *testing.T) {
	o := oracle.NewLocal(intCompare)
	tree, err := pope.New(o, 4)
	require.NoError(t, err)

	ops := []Op{
		Insert{CT: []byte("1")},
		Insert{CT: nil},
		Insert{CT: []byte("2")},
	}

	results, err := Replay(context.Background(), tree, ops)
	require.Error(t, err)
	require.Len(t, results, 1)
	require.Equal(t, int64(1), tree.Size())
}
