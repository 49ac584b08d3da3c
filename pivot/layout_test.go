package pivot

import (
	"fmt"
	"testing"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/stretchr/testify/require"
)

func mixedFields() []Field {
	return []Field{
		{Name: "id", Kind: FixedWidthKind(4)},
		{Name: "name", Kind: VariableKind},
		{Name: "active", Kind: BitKind},
		{Name: "total", Kind: FixedWidthKind(8)},
		{Name: "deleted", Kind: BitKind},
		{Name: "amount", Kind: FixedWidthKind(16)},
	}
}

func TestPlanMixedLayout(t *testing.T) {
	layout, err := Plan(mixedFields())
	require.NoError(t, err)

	require.Equal(t, 6, layout.FieldCount())
	require.Equal(t, 0, layout.NullBitmapOffset())
	require.Equal(t, 1, layout.NullBitmapWidth())
	require.Equal(t, 1, layout.BitValueOffset())
	require.Equal(t, 1, layout.BitValueWidth())
	require.Equal(t, []BitSlot{{FieldIndex: 2, Bit: 8}, {FieldIndex: 4, Bit: 9}}, layout.BitSlots())
	require.Equal(t, []FixedSlot{
		{FieldIndex: 0, Offset: 2, Width: 4},
		{FieldIndex: 3, Offset: 6, Width: 8},
		{FieldIndex: 5, Offset: 14, Width: 16},
	}, layout.FixedSlots())
	// byte wide values follow the boolean value bits, not the null bitmap
	require.Equal(t, layout.NullBitmapWidth()+layout.BitValueWidth(), layout.FixedSlots()[0].Offset)
	require.Equal(t, 30, layout.VariableOffset())
	require.Equal(t, []VariableSlot{{FieldIndex: 1, Offset: 30, Index: 0}}, layout.VariableSlots())
	require.Equal(t, 1, layout.VariableCount())
	require.Equal(t, 38, layout.RowWidth())

	b, mask := layout.NullBit(5)
	require.Equal(t, 0, b)
	require.Equal(t, byte(0x20), mask)
}

func TestPlanNullBitmapWidth(t *testing.T) {
	testCases := []struct {
		fields    int
		nullWidth int
		rowWidth  int
		lastByte  int
		lastMask  byte
	}{
		{fields: 1, nullWidth: 1, rowWidth: 5, lastByte: 0, lastMask: 0x01},
		{fields: 8, nullWidth: 1, rowWidth: 33, lastByte: 0, lastMask: 0x80},
		{fields: 9, nullWidth: 2, rowWidth: 38, lastByte: 1, lastMask: 0x01},
		{fields: 80, nullWidth: 10, rowWidth: 330, lastByte: 9, lastMask: 0x80},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("fields-%d", tc.fields), func(t *testing.T) {
			fields := make([]Field, tc.fields)
			for i := range fields {
				fields[i] = Field{Name: fmt.Sprintf("f%d", i), Kind: FixedWidthKind(4)}
			}
			layout, err := Plan(fields)
			require.NoError(t, err)
			require.Equal(t, tc.nullWidth, layout.NullBitmapWidth())
			require.Equal(t, 0, layout.BitValueWidth())
			require.Equal(t, tc.rowWidth, layout.RowWidth())
			b, mask := layout.NullBit(tc.fields - 1)
			require.Equal(t, tc.lastByte, b)
			require.Equal(t, tc.lastMask, mask)
		})
	}
}

func TestPlanIsDeterministic(t *testing.T) {
	l1, err := Plan(mixedFields())
	require.NoError(t, err)
	l2, err := Plan(mixedFields())
	require.NoError(t, err)
	require.Equal(t, l1, l2)
	require.Equal(t, l1.String(), l2.String())
}

func TestPlanEmpty(t *testing.T) {
	layout, err := Plan(nil)
	require.NoError(t, err)
	require.Equal(t, 0, layout.FieldCount())
	require.Equal(t, 0, layout.RowWidth())
	require.Equal(t, 0, layout.VariableCount())
}

func TestPlanUnsupportedKinds(t *testing.T) {
	testCases := []Field{
		{Name: "odd", Kind: FixedWidthKind(3)},
		{Name: "wide", Kind: FixedWidthKind(32)},
		{Name: "what", Kind: UnknownFieldKind},
	}
	for _, f := range testCases {
		t.Run(f.Name, func(t *testing.T) {
			_, err := Plan([]Field{{Name: "ok", Kind: BitKind}, f})
			require.Error(t, err)
			require.True(t, errors.IsCode(err, errors.UnsupportedFieldKind))
			require.Contains(t, err.Error(), f.Name)
		})
	}
}

func TestPlanFromColumnTypes(t *testing.T) {
	layout, err := PlanFromColumnTypes(
		[]string{"a", "b", "c", "d", "e"},
		[]common.ColumnType{common.IntColumnType, common.BooleanColumnType, common.VarcharColumnType,
			common.NewDecimalColumnType(38, 0), common.TimestampColumnType},
	)
	require.NoError(t, err)
	require.Equal(t, FixedWidthKind(4), layout.Field(0).Kind)
	require.Equal(t, BitKind, layout.Field(1).Kind)
	require.Equal(t, VariableKind, layout.Field(2).Kind)
	require.Equal(t, FixedWidthKind(16), layout.Field(3).Kind)
	require.Equal(t, FixedWidthKind(8), layout.Field(4).Kind)

	_, err = PlanFromColumnTypes([]string{"a"}, nil)
	require.True(t, errors.IsCode(err, errors.FieldCountMismatch))

	_, err = PlanFromColumnTypes([]string{"a"}, []common.ColumnType{common.UnknownColumnType})
	require.True(t, errors.IsCode(err, errors.UnsupportedFieldKind))
}

func TestPlanFromVectors(t *testing.T) {
	mem := checkedAllocator(t)
	ints := newInts(t, mem, "ints", 4, everyNth(1))
	bools := newBools(t, mem, "bools", 4, everyNth(1))
	strs := newStrings(t, mem, "strs", 4, everyNth(1))
	layout, err := PlanFromVectors([]FieldVectorPair{{In: ints}, {In: bools}, {In: strs}})
	require.NoError(t, err)
	require.Equal(t, Field{Name: "ints", Kind: FixedWidthKind(4)}, layout.Field(0))
	require.Equal(t, Field{Name: "bools", Kind: BitKind}, layout.Field(1))
	require.Equal(t, Field{Name: "strs", Kind: VariableKind}, layout.Field(2))
	// 1 null byte, 1 bit value byte, 4 int bytes, 8 pointer bytes
	require.Equal(t, 14, layout.RowWidth())
}
