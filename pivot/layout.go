package pivot

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
)

const (
	// WordBits is the number of rows whose null bits are classified together
	WordBits = 64

	// VariableSlotWidth is the size of the pointer slot a variable width field takes in a row block: a little-endian
	// uint32 offset into the variable block store followed by a uint32 length
	VariableSlotWidth = 8
)

// FixedSlot is where a fixed width field lives in a row block
type FixedSlot struct {
	FieldIndex int
	Offset     int
	Width      int
}

// BitSlot is where a boolean field keeps its value. Bit counts from the start of the row block.
type BitSlot struct {
	FieldIndex int
	Bit        int
}

// VariableSlot is where a variable width field keeps its pointer slot. Index is the position among variable fields.
type VariableSlot struct {
	FieldIndex int
	Offset     int
	Index      int
}

type slotRef struct {
	kind  Kind
	index int
}

// Layout maps every field of a schema onto a fixed width row block:
//
//	[null bitmap][boolean value bits][fixed width values][variable pointer slots]
//
// Field i owns null bit i of the null bitmap, the bit is set when the value is null. Boolean fields keep their values
// in their own bitmap, one bit per boolean field in field order, placed between the null bitmap and the byte aligned
// values, so the byte wide fixed values start at NullBitmapWidth()+BitValueWidth() rather than right after the null
// bitmap. Fixed width values are packed in field order without padding. A Layout is immutable once planned and can be
// shared between goroutines.
type Layout struct {
	fields           []Field
	slots            []slotRef
	nullBitmapOffset int
	nullBitmapWidth  int
	bitValueOffset   int
	bitValueWidth    int
	variableOffset   int
	rowWidth         int
	fixed            []FixedSlot
	bits             []BitSlot
	variables        []VariableSlot
}

// Plan computes the row block layout for fields. The same fields in the same order always give the same layout.
func Plan(fields []Field) (*Layout, error) {
	l := &Layout{
		fields: append([]Field(nil), fields...),
		slots:  make([]slotRef, len(fields)),
	}
	bitCount := 0
	for i, f := range fields {
		switch f.Kind.Kind {
		case KindBit:
			bitCount++
		case KindFixed:
			if !isSupportedWidth(f.Kind.Width) {
				return nil, errors.NewUnsupportedFieldKindError(f.Name, f.Kind.String())
			}
		case KindVariable:
		default:
			return nil, errors.NewUnsupportedFieldKindError(f.Name, f.Kind.String())
		}
		l.slots[i].kind = f.Kind.Kind
	}
	l.nullBitmapWidth = (len(fields) + 7) / 8
	l.bitValueOffset = l.nullBitmapOffset + l.nullBitmapWidth
	l.bitValueWidth = (bitCount + 7) / 8

	offset := l.bitValueOffset + l.bitValueWidth
	bit := l.bitValueOffset * 8
	for i, f := range fields {
		switch f.Kind.Kind {
		case KindBit:
			l.slots[i].index = len(l.bits)
			l.bits = append(l.bits, BitSlot{FieldIndex: i, Bit: bit})
			bit++
		case KindFixed:
			l.slots[i].index = len(l.fixed)
			l.fixed = append(l.fixed, FixedSlot{FieldIndex: i, Offset: offset, Width: f.Kind.Width})
			offset += f.Kind.Width
		}
	}
	l.variableOffset = offset
	for i, f := range fields {
		if f.Kind.Kind == KindVariable {
			l.slots[i].index = len(l.variables)
			l.variables = append(l.variables, VariableSlot{FieldIndex: i, Offset: offset, Index: len(l.variables)})
			offset += VariableSlotWidth
		}
	}
	l.rowWidth = offset
	log.Debugf("planned row layout %s", l)
	return l, nil
}

// PlanFromVectors plans a layout for the input vectors of pairs
func PlanFromVectors(pairs []FieldVectorPair) (*Layout, error) {
	fields := make([]Field, len(pairs))
	for i, p := range pairs {
		f, err := FieldFromVector(p.In)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return Plan(fields)
}

// PlanFromColumnTypes plans a layout for a schema described by column names and types
func PlanFromColumnTypes(names []string, types []common.ColumnType) (*Layout, error) {
	if len(names) != len(types) {
		return nil, errors.NewFieldCountMismatchError(len(names), len(types))
	}
	fields := make([]Field, len(types))
	for i, ct := range types {
		f, err := FieldFromColumnType(names[i], ct)
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return Plan(fields)
}

func (l *Layout) FieldCount() int {
	return len(l.fields)
}

func (l *Layout) Field(i int) Field {
	return l.fields[i]
}

// RowWidth is the number of bytes every row takes in the fixed block store
func (l *Layout) RowWidth() int {
	return l.rowWidth
}

func (l *Layout) NullBitmapOffset() int {
	return l.nullBitmapOffset
}

func (l *Layout) NullBitmapWidth() int {
	return l.nullBitmapWidth
}

func (l *Layout) BitValueOffset() int {
	return l.bitValueOffset
}

func (l *Layout) BitValueWidth() int {
	return l.bitValueWidth
}

// VariableOffset is where the first variable pointer slot starts. Everything before it is the same for equal keys.
func (l *Layout) VariableOffset() int {
	return l.variableOffset
}

// VariableCount is the number of fields that need space in the variable block store
func (l *Layout) VariableCount() int {
	return len(l.variables)
}

func (l *Layout) FixedSlots() []FixedSlot {
	return append([]FixedSlot(nil), l.fixed...)
}

func (l *Layout) BitSlots() []BitSlot {
	return append([]BitSlot(nil), l.bits...)
}

func (l *Layout) VariableSlots() []VariableSlot {
	return append([]VariableSlot(nil), l.variables...)
}

// NullBit returns the byte within the row block holding the null bit of field i, and the mask selecting it
func (l *Layout) NullBit(i int) (int, byte) {
	return l.nullBitmapOffset + i/8, byte(1) << uint(i%8)
}

func (l *Layout) fixedSlot(i int) FixedSlot {
	return l.fixed[l.slots[i].index]
}

func (l *Layout) bitSlot(i int) BitSlot {
	return l.bits[l.slots[i].index]
}

func (l *Layout) variableSlot(i int) VariableSlot {
	return l.variables[l.slots[i].index]
}

func (l *Layout) String() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("layout[width=%d,nulls=%d@%d,bits=%d@%d", l.rowWidth, l.nullBitmapWidth,
		l.nullBitmapOffset, l.bitValueWidth, l.bitValueOffset))
	for i, f := range l.fields {
		sb.WriteString(fmt.Sprintf(",%s:%s", f.Name, f.Kind))
		switch l.slots[i].kind {
		case KindBit:
			sb.WriteString(fmt.Sprintf("@bit%d", l.bitSlot(i).Bit))
		case KindFixed:
			sb.WriteString(fmt.Sprintf("@%d", l.fixedSlot(i).Offset))
		case KindVariable:
			sb.WriteString(fmt.Sprintf("@%d", l.variableSlot(i).Offset))
		}
	}
	sb.WriteString("]")
	return sb.String()
}
