package pivot

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/vector"
	"github.com/stretchr/testify/require"
)

// checkedAllocator fails the test if anything allocated from it is still live once the test and its cleanups finish
func checkedAllocator(t *testing.T) *memory.CheckedAllocator {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

type presentFunc func(row int) bool

func everyNth(n int) presentFunc {
	return func(row int) bool { return row%n == 0 }
}

// wordPatterns gives 64 rows all present, then 64 all null, then alternating rows from there on
func wordPatterns(row int) bool {
	switch {
	case row < 64:
		return true
	case row < 128:
		return false
	default:
		return row%2 == 0
	}
}

// cycledWordPatterns repeats, one 64 row word at a time, all present, every third row present and all null
func cycledWordPatterns(row int) bool {
	switch (row / 64) % 3 {
	case 0:
		return true
	case 1:
		return row%3 == 0
	default:
		return false
	}
}

func newInts(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, 4)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetInt32(i, int32(i*7+1))
		}
	}
	v.SetValueCount(count)
	return v
}

func newBigInts(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, 8)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetInt64(i, int64(i)*1_000_000_007-5)
		}
	}
	v.SetValueCount(count)
	return v
}

func newTinyInts(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, 1)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetInt8(i, int8(i%120-60))
		}
	}
	v.SetValueCount(count)
	return v
}

func newSmallInts(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, 2)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetInt16(i, int16(i*3-1000))
		}
	}
	v.SetValueCount(count)
	return v
}

func newDoubles(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, 8)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetFloat64(i, float64(i)*1.25-3)
		}
	}
	v.SetValueCount(count)
	return v
}

func newDecimals(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, common.DecimalByteWidth)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetDecimal(i, common.NewDecFromInt64(int64(i)*-982451653))
		}
	}
	v.SetValueCount(count)
	return v
}

// decimal38 returns a 38 digit value for row, negative on odd rows
func decimal38(row int) *big.Int {
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(37), nil)
	v.Mul(v, big.NewInt(int64(1+row%9)))
	v.Add(v, big.NewInt(int64(row)))
	if row%2 == 1 {
		v.Neg(v)
	}
	return v
}

func newDecimals38(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Fixed {
	v := vector.NewFixed(mem, name, common.DecimalByteWidth)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetDecimal(i, common.NewDecFromBigInt(decimal38(i)))
		}
	}
	v.SetValueCount(count)
	return v
}

func newBools(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Bit {
	v := vector.NewBit(mem, name)
	t.Cleanup(v.Release)
	v.Allocate(count)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetBool(i, i%3 != 0)
		}
	}
	v.SetValueCount(count)
	return v
}

func newStrings(t *testing.T, mem memory.Allocator, name string, count int, present presentFunc) *vector.Variable {
	v := vector.NewVariable(mem, name)
	t.Cleanup(v.Release)
	v.Allocate(count, 16)
	for i := 0; i < count; i++ {
		if present(i) {
			v.SetString(i, fmt.Sprintf("hello-%d", i))
		}
	}
	v.SetValueCount(count)
	return v
}

// newStores creates empty block stores sized for count rows of in
func newStores(t *testing.T, mem memory.Allocator, layout *Layout, in []vector.Vector, count int) (*FixedBlockStore,
	*VariableBlockStore) {
	fixed := NewFixedBlockStore(mem, layout.RowWidth())
	t.Cleanup(fixed.Release)
	fixed.EnsureAvailableBlocks(count)
	variable := NewVariableBlockStore(mem, layout.VariableCount())
	t.Cleanup(variable.Release)
	variable.EnsureAvailableDataSpace(RequiredVariableSpace(layout, in, count))
	return fixed, variable
}

func pivotAll(t *testing.T, mem memory.Allocator, in []vector.Vector, count int) (*Layout, *FixedBlockStore,
	*VariableBlockStore) {
	fields := make([]Field, len(in))
	for i, v := range in {
		f, err := FieldFromVector(v)
		require.NoError(t, err)
		fields[i] = f
	}
	layout, err := Plan(fields)
	require.NoError(t, err)
	fixed, variable := newStores(t, mem, layout, in, count)
	require.NoError(t, Pivot(layout, in, count, fixed, variable))
	require.Equal(t, count, fixed.RowCount())
	return layout, fixed, variable
}

// newOutputs allocates one empty output vector per field, sized to unpivot rows [start, start+count)
func newOutputs(t *testing.T, mem memory.Allocator, layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore,
	start int, count int) []vector.Vector {
	out := make([]vector.Vector, layout.FieldCount())
	for i := range out {
		field := layout.Field(i)
		name := field.Name + "-out"
		switch field.Kind.Kind {
		case KindFixed:
			v := vector.NewFixed(mem, name, field.Kind.Width)
			v.Allocate(count)
			out[i] = v
		case KindBit:
			v := vector.NewBit(mem, name)
			v.Allocate(count)
			out[i] = v
		case KindVariable:
			size, err := VariableDataSize(layout, fixed, variable, i, start, count)
			require.NoError(t, err)
			v := vector.NewVariable(mem, name)
			v.Allocate(count, size)
			out[i] = v
		default:
			require.Fail(t, "unexpected field kind", field.Kind.String())
		}
		t.Cleanup(out[i].Release)
	}
	return out
}

func unpivotAll(t *testing.T, mem memory.Allocator, layout *Layout, fixed *FixedBlockStore, variable *VariableBlockStore,
	start int, count int) []vector.Vector {
	out := newOutputs(t, mem, layout, fixed, variable, start, count)
	require.NoError(t, UnpivotRange(layout, fixed, variable, start, count, out))
	return out
}

// requireSameVectors checks rows [0, count) of actual hold the same nulls and values as rows [offset, offset+count)
// of expected
func requireSameVectors(t *testing.T, expected []vector.Vector, offset int, actual []vector.Vector, count int) {
	t.Helper()
	require.Equal(t, len(expected), len(actual))
	for f := range expected {
		require.Equal(t, count, actual[f].ValueCount())
		for i := 0; i < count; i++ {
			row := offset + i
			msg := fmt.Sprintf("field %s row %d", expected[f].Name(), row)
			require.Equal(t, expected[f].IsNull(row), actual[f].IsNull(i), msg)
			if expected[f].IsNull(row) {
				continue
			}
			switch exp := expected[f].(type) {
			case *vector.Fixed:
				require.Equal(t, exp.Value(row), actual[f].(*vector.Fixed).Value(i), msg)
			case *vector.Bit:
				require.Equal(t, exp.Bool(row), actual[f].(*vector.Bit).Bool(i), msg)
			case *vector.Variable:
				require.Equal(t, exp.Bytes(row), actual[f].(*vector.Variable).Bytes(i), msg)
			}
		}
	}
}

func rowsEqual(t *testing.T, layout *Layout, fixedA *FixedBlockStore, variableA *VariableBlockStore, a int,
	fixedB *FixedBlockStore, variableB *VariableBlockStore, b int) bool {
	t.Helper()
	equal, err := RowsEqual(layout, fixedA, variableA, a, fixedB, variableB, b)
	require.NoError(t, err)
	return equal
}
