package vector

import (
	"fmt"
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/stretchr/testify/require"
)

func TestFixedSetGet(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	ints := NewFixed(mem, "ints", 4)
	defer ints.Release()
	ints.Allocate(100)
	require.Equal(t, 100, ints.Capacity())
	require.Equal(t, 0, ints.ValueCount())
	for i := 0; i < 100; i++ {
		require.True(t, ints.IsNull(i))
		if i%3 == 0 {
			ints.SetInt32(i, int32(math.MaxInt32-i))
		}
	}
	ints.SetValueCount(100)
	require.Equal(t, 100, ints.ValueCount())
	for i := 0; i < 100; i++ {
		if i%3 == 0 {
			require.False(t, ints.IsNull(i))
			require.Equal(t, int32(math.MaxInt32-i), ints.Int32(i))
		} else {
			require.True(t, ints.IsNull(i))
		}
	}
	ints.SetNull(3)
	require.True(t, ints.IsNull(3))
}

func TestFixedTypedAccessors(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	v8 := NewFixed(mem, "i8", 1)
	v16 := NewFixed(mem, "i16", 2)
	v64 := NewFixed(mem, "i64", 8)
	vf := NewFixed(mem, "f64", 8)
	vd := NewFixed(mem, "dec", 16)
	vecs := []*Fixed{v8, v16, v64, vf, vd}
	for _, v := range vecs {
		v.Allocate(4)
	}
	defer func() {
		for _, v := range vecs {
			v.Release()
		}
	}()
	v8.SetInt8(1, -7)
	v16.SetInt16(2, math.MinInt16)
	v64.SetInt64(3, math.MinInt64)
	vf.SetFloat64(0, -1234.5678)
	dec, err := common.NewDecFromString("-98765.4321", 38, 4)
	require.NoError(t, err)
	vd.SetDecimal(2, dec)

	require.Equal(t, int8(-7), v8.Int8(1))
	require.Equal(t, int16(math.MinInt16), v16.Int16(2))
	require.Equal(t, int64(math.MinInt64), v64.Int64(3))
	require.Equal(t, -1234.5678, vf.Float64(0))
	require.Equal(t, "-98765.4321", vd.Decimal(2).ToString(4))
	require.Equal(t, 16, len(vd.Value(2)))
}

func TestFixedAllocatePreserves(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	v := NewFixed(mem, "grow", 8)
	defer v.Release()
	v.Allocate(10)
	for i := 0; i < 10; i++ {
		v.SetInt64(i, int64(i*i))
	}
	v.Allocate(1000)
	require.Equal(t, 1000, v.Capacity())
	for i := 0; i < 10; i++ {
		require.Equal(t, int64(i*i), v.Int64(i))
	}
	for i := 10; i < 1000; i++ {
		require.True(t, v.IsNull(i))
		require.Equal(t, int64(0), v.Int64(i))
	}
	require.Equal(t, 0, len(v.Validity())%8)
}

func TestFixedUnsupportedWidth(t *testing.T) {
	require.Panics(t, func() {
		NewFixed(memory.NewGoAllocator(), "bad", 3)
	})
}

func TestBitVector(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	v := NewBit(mem, "bools")
	defer v.Release()
	v.Allocate(130)
	for i := 0; i < 130; i++ {
		if i%3 != 2 {
			v.SetBool(i, i%2 == 1)
		}
	}
	v.SetValueCount(130)
	for i := 0; i < 130; i++ {
		if i%3 == 2 {
			require.True(t, v.IsNull(i))
			continue
		}
		require.False(t, v.IsNull(i))
		require.Equal(t, i%2 == 1, v.Bool(i))
	}
	require.Equal(t, 24, len(v.Values()))
}

func TestVariableWithHoles(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	v := NewVariable(mem, "strs")
	defer v.Release()
	v.Allocate(20, 8)
	for i := 0; i < 20; i++ {
		if i%5 == 0 {
			v.SetString(i, fmt.Sprintf("hello-%d", i))
		}
	}
	v.SetValueCount(20)
	size := 0
	for i := 0; i < 20; i++ {
		if i%5 == 0 {
			require.False(t, v.IsNull(i))
			require.Equal(t, fmt.Sprintf("hello-%d", i), v.String(i))
			size += len(fmt.Sprintf("hello-%d", i))
		} else {
			require.True(t, v.IsNull(i))
			require.Equal(t, 0, len(v.Bytes(i)))
		}
	}
	require.Equal(t, size, v.DataSize())
	require.GreaterOrEqual(t, v.DataCapacity(), size)
}

func TestVariableEmptyValueIsNotNull(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	v := NewVariable(mem, "empty")
	defer v.Release()
	v.Allocate(3, 0)
	v.SetBytes(0, []byte{})
	v.SetNull(1)
	v.SetBytes(2, []byte("x"))
	v.SetValueCount(3)
	require.False(t, v.IsNull(0))
	require.Equal(t, 0, len(v.Bytes(0)))
	require.True(t, v.IsNull(1))
	require.Equal(t, "x", v.String(2))
}

func TestVariableOutOfOrderPanics(t *testing.T) {
	v := NewVariable(memory.NewGoAllocator(), "order")
	defer v.Release()
	v.Allocate(4, 16)
	v.SetString(2, "b")
	require.Panics(t, func() {
		v.SetString(1, "a")
	})
}

func TestSetValueCountBeyondCapacityPanics(t *testing.T) {
	v := NewFixed(memory.NewGoAllocator(), "small", 4)
	defer v.Release()
	v.Allocate(2)
	require.Panics(t, func() {
		v.SetValueCount(3)
	})
}
