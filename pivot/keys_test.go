package pivot

import (
	"testing"

	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/vector"
	"github.com/stretchr/testify/require"
)

func TestHashRowsIgnoresVariableOffsets(t *testing.T) {
	mem := checkedAllocator(t)
	count := 100
	in := []vector.Vector{
		newInts(t, mem, "ints", count, everyNth(2)),
		newStrings(t, mem, "strs", count, everyNth(3)),
		newBools(t, mem, "bools", count, everyNth(1)),
	}
	layout, fixed, variable := pivotAll(t, mem, in, count)

	// same rows again, with the payloads shifted along the variable block store
	fixed2, variable2 := newStores(t, mem, layout, in, count)
	variable2.EnsureAvailableDataSpace(17)
	_, _, err := variable2.Append([]byte("some leading junk"))
	require.NoError(t, err)
	variable2.EnsureAvailableDataSpace(RequiredVariableSpace(layout, in, count))
	require.NoError(t, Pivot(layout, in, count, fixed2, variable2))

	hashes := make([]uint64, count)
	require.NoError(t, HashRows(layout, fixed, variable, 0, count, hashes))
	hashes2 := make([]uint64, count)
	require.NoError(t, HashRows(layout, fixed2, variable2, 0, count, hashes2))
	require.Equal(t, hashes, hashes2)

	for i := 0; i < count; i++ {
		require.True(t, rowsEqual(t, layout, fixed, variable, i, fixed2, variable2, i))
		require.Equal(t, hashes[i], HashRow(layout, fixed, variable, i))
	}
	require.False(t, rowsEqual(t, layout, fixed, variable, 3, fixed2, variable2, 6))
	require.NotEqual(t, hashes[3], hashes[6])
}

func TestRowsEqualNullVersusEmpty(t *testing.T) {
	mem := checkedAllocator(t)
	strs := vector.NewVariable(mem, "strs")
	defer strs.Release()
	strs.Allocate(4, 8)
	strs.SetString(0, "")
	strs.SetNull(1)
	strs.SetString(2, "x")
	strs.SetString(3, "y")
	strs.SetValueCount(4)
	in := []vector.Vector{strs}
	layout, fixed, variable := pivotAll(t, mem, in, 4)

	require.True(t, rowsEqual(t, layout, fixed, variable, 0, fixed, variable, 0))
	require.False(t, rowsEqual(t, layout, fixed, variable, 0, fixed, variable, 1))
	require.False(t, rowsEqual(t, layout, fixed, variable, 2, fixed, variable, 3))

	hasher := NewRowHasher(layout)
	require.NotEqual(t, hasher.Hash(fixed, variable, 2), hasher.Hash(fixed, variable, 3))
	require.Equal(t, hasher.Hash(fixed, variable, 2), hasher.Hash(fixed, variable, 2))
}

func TestHashRowsErrors(t *testing.T) {
	mem := checkedAllocator(t)
	in := []vector.Vector{newInts(t, mem, "ints", 10, everyNth(1))}
	layout, fixed, variable := pivotAll(t, mem, in, 10)

	err := HashRows(layout, fixed, variable, 5, 6, make([]uint64, 6))
	require.True(t, errors.IsCode(err, errors.RowCountMismatch))
	err = HashRows(layout, fixed, variable, 0, 10, make([]uint64, 9))
	require.True(t, errors.IsCode(err, errors.BufferTooSmall))
	require.NoError(t, HashRows(layout, fixed, variable, 5, 5, make([]uint64, 5)))
}

func TestRowsEqualErrors(t *testing.T) {
	mem := checkedAllocator(t)
	in := []vector.Vector{newStrings(t, mem, "strs", 10, everyNth(1))}
	layout, fixed, variable := pivotAll(t, mem, in, 10)

	_, err := RowsEqual(layout, fixed, variable, 10, fixed, variable, 0)
	require.True(t, errors.IsCode(err, errors.RowCountMismatch))
	_, err = RowsEqual(layout, fixed, variable, 0, fixed, variable, -1)
	require.True(t, errors.IsCode(err, errors.RowCountMismatch))

	wide := NewFixedBlockStore(mem, layout.RowWidth()+1)
	defer wide.Release()
	wide.EnsureAvailableBlocks(10)
	_, err = RowsEqual(layout, fixed, variable, 0, wide, variable, 0)
	require.Error(t, err)

	// a variable store that lost its payloads
	empty := NewVariableBlockStore(mem, 0)
	defer empty.Release()
	_, err = RowsEqual(layout, fixed, variable, 0, fixed, empty, 0)
	require.True(t, errors.IsCode(err, errors.BufferTooSmall))

	equal, err := RowsEqual(layout, fixed, variable, 9, fixed, variable, 9)
	require.NoError(t, err)
	require.True(t, equal)
}
