package pivot

import (
	"fmt"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/vector"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindBit
	KindFixed
	KindVariable
)

// FieldKind says how a field is transcoded. Fixed width fields carry their byte width.
type FieldKind struct {
	Kind  Kind
	Width int
}

var (
	BitKind          = FieldKind{Kind: KindBit}
	VariableKind     = FieldKind{Kind: KindVariable}
	UnknownFieldKind = FieldKind{Kind: KindUnknown}
)

func FixedWidthKind(width int) FieldKind {
	return FieldKind{Kind: KindFixed, Width: width}
}

func (k FieldKind) String() string {
	switch k.Kind {
	case KindBit:
		return "bit"
	case KindFixed:
		return fmt.Sprintf("fixed(%d)", k.Width)
	case KindVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Field describes one column of the schema being transcoded. Name is only used in diagnostics.
type Field struct {
	Name string
	Kind FieldKind
}

// FieldVectorPair couples the vector a field is pivoted from with the vector it is unpivoted into. Both are
// borrowed from the caller.
type FieldVectorPair struct {
	In  vector.Vector
	Out vector.Vector
}

// KindOf returns the field kind matching the physical layout of v
func KindOf(v vector.Vector) (FieldKind, error) {
	switch vec := v.(type) {
	case *vector.Bit:
		return BitKind, nil
	case *vector.Fixed:
		return FixedWidthKind(vec.Width()), nil
	case *vector.Variable:
		return VariableKind, nil
	default:
		return UnknownFieldKind, errors.NewUnsupportedFieldKindError(v.Name(), fmt.Sprintf("%T", v))
	}
}

func FieldFromVector(v vector.Vector) (Field, error) {
	kind, err := KindOf(v)
	if err != nil {
		return Field{}, err
	}
	return Field{Name: v.Name(), Kind: kind}, nil
}

func FieldFromColumnType(name string, ct common.ColumnType) (Field, error) {
	switch {
	case ct.Type == common.TypeBoolean:
		return Field{Name: name, Kind: BitKind}, nil
	case ct.IsVariableWidth():
		return Field{Name: name, Kind: VariableKind}, nil
	case ct.ByteWidth() > 0:
		return Field{Name: name, Kind: FixedWidthKind(ct.ByteWidth())}, nil
	default:
		return Field{}, errors.NewUnsupportedFieldKindError(name, ct.String())
	}
}

func isSupportedWidth(width int) bool {
	switch width {
	case 1, 2, 4, 8, 16:
		return true
	default:
		return false
	}
}
