package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kunichan2013/dremio-oss/errors"
)

type Type int

const (
	TypeUnknown Type = iota
	TypeTinyInt
	TypeSmallInt
	TypeInt
	TypeBigInt
	TypeDouble
	TypeDecimal
	TypeVarchar
	TypeVarbinary
	TypeBoolean
	TypeTimestamp
)

// MaxDecimalPrecision is the largest precision a 128-bit decimal can hold
const MaxDecimalPrecision = 38

var (
	TinyIntColumnType   = ColumnType{Type: TypeTinyInt}
	SmallIntColumnType  = ColumnType{Type: TypeSmallInt}
	IntColumnType       = ColumnType{Type: TypeInt}
	BigIntColumnType    = ColumnType{Type: TypeBigInt}
	DoubleColumnType    = ColumnType{Type: TypeDouble}
	VarcharColumnType   = ColumnType{Type: TypeVarchar}
	VarbinaryColumnType = ColumnType{Type: TypeVarbinary}
	BooleanColumnType   = ColumnType{Type: TypeBoolean}
	TimestampColumnType = ColumnType{Type: TypeTimestamp}
	UnknownColumnType   = ColumnType{Type: TypeUnknown}

	// ColumnTypesByName allows lookup of non-parameterised ColumnType by its SQL name.
	ColumnTypesByName = map[string]ColumnType{
		"TINYINT":   TinyIntColumnType,
		"SMALLINT":  SmallIntColumnType,
		"INT":       IntColumnType,
		"BIGINT":    BigIntColumnType,
		"DOUBLE":    DoubleColumnType,
		"VARCHAR":   VarcharColumnType,
		"VARBINARY": VarbinaryColumnType,
		"BOOLEAN":   BooleanColumnType,
		"TIMESTAMP": TimestampColumnType,
	}
)

func NewDecimalColumnType(precision int, scale int) ColumnType {
	return ColumnType{
		Type:         TypeDecimal,
		DecPrecision: precision,
		DecScale:     scale,
	}
}

type ColumnType struct {
	Type         Type
	DecPrecision int
	DecScale     int
}

// ByteWidth returns the number of bytes a value of this type occupies in a fixed width vector. Variable width and
// bit packed types return 0.
func (t ColumnType) ByteWidth() int {
	switch t.Type {
	case TypeTinyInt:
		return 1
	case TypeSmallInt:
		return 2
	case TypeInt:
		return 4
	case TypeBigInt, TypeDouble, TypeTimestamp:
		return 8
	case TypeDecimal:
		return 16
	default:
		return 0
	}
}

func (t ColumnType) IsVariableWidth() bool {
	return t.Type == TypeVarchar || t.Type == TypeVarbinary
}

func (t ColumnType) String() string {
	switch t.Type {
	case TypeTinyInt:
		return "tinyint"
	case TypeSmallInt:
		return "smallint"
	case TypeInt:
		return "int"
	case TypeBigInt:
		return "bigint"
	case TypeDouble:
		return "double"
	case TypeDecimal:
		return fmt.Sprintf("decimal(%d, %d)", t.DecPrecision, t.DecScale)
	case TypeVarchar:
		return "varchar"
	case TypeVarbinary:
		return "varbinary"
	case TypeBoolean:
		return "boolean"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// UnmarshalText allows column types to be used directly as command line flags and config values
func (t *ColumnType) UnmarshalText(text []byte) error {
	ct, err := ParseColumnType(string(text))
	if err != nil {
		return err
	}
	*t = ct
	return nil
}

// ParseColumnType parses SQL style type names such as INT, VARCHAR or DECIMAL(38, 0)
func ParseColumnType(s string) (ColumnType, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	if ct, ok := ColumnTypesByName[text]; ok {
		return ct, nil
	}
	if !strings.HasPrefix(text, "DECIMAL") {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("unknown column type %s", s))
	}
	params := strings.TrimSpace(strings.TrimPrefix(text, "DECIMAL"))
	if params == "" {
		return NewDecimalColumnType(MaxDecimalPrecision, 0), nil
	}
	if !strings.HasPrefix(params, "(") || !strings.HasSuffix(params, ")") {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("invalid decimal type %s", s))
	}
	parts := strings.Split(params[1:len(params)-1], ",")
	if len(parts) != 2 {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("decimal type %s must specify precision and scale", s))
	}
	prec, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("invalid decimal precision in %s", s))
	}
	scale, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("invalid decimal scale in %s", s))
	}
	if prec < 1 || prec > MaxDecimalPrecision {
		return UnknownColumnType, errors.NewInvalidConfigurationError(fmt.Sprintf("decimal precision must be between 1 and %d", MaxDecimalPrecision))
	}
	if scale < 0 || scale > prec {
		return UnknownColumnType, errors.NewInvalidConfigurationError("decimal scale must be between 0 and precision")
	}
	return NewDecimalColumnType(prec, scale), nil
}
