package bench

import (
	"fmt"
	"math/rand"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/vector"
)

// ArrowType returns the Arrow type a column of type ct is generated as and verified against
func ArrowType(ct common.ColumnType) (arrow.DataType, error) {
	switch ct.Type {
	case common.TypeTinyInt:
		return arrow.PrimitiveTypes.Int8, nil
	case common.TypeSmallInt:
		return arrow.PrimitiveTypes.Int16, nil
	case common.TypeInt:
		return arrow.PrimitiveTypes.Int32, nil
	case common.TypeBigInt:
		return arrow.PrimitiveTypes.Int64, nil
	case common.TypeDouble:
		return arrow.PrimitiveTypes.Float64, nil
	case common.TypeDecimal:
		return &arrow.Decimal128Type{Precision: int32(ct.DecPrecision), Scale: int32(ct.DecScale)}, nil
	case common.TypeVarchar:
		return arrow.BinaryTypes.String, nil
	case common.TypeVarbinary:
		return arrow.BinaryTypes.Binary, nil
	case common.TypeBoolean:
		return arrow.FixedWidthTypes.Boolean, nil
	case common.TypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_us, nil
	default:
		return nil, errors.NewUnsupportedFieldKindError("", ct.String())
	}
}

// Batch is one generated batch, held both as Arrow arrays and as the vectors the engines read
type Batch struct {
	Index   int
	Rows    int
	Arrays  []arrow.Array
	Vectors []vector.Vector
}

func (b *Batch) Release() {
	for _, a := range b.Arrays {
		a.Release()
	}
	for _, v := range b.Vectors {
		v.Release()
	}
	b.Arrays = nil
	b.Vectors = nil
}

// ColumnNames gives the generated columns their names, col0, col1 and so on
func ColumnNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("col%d", i)
	}
	return names
}

// GenerateBatch creates rows of random values for every column type. The same index always gives the same batch.
// Value row of column col is null when nullStride is positive and (row+col) is a multiple of it.
func GenerateBatch(mem memory.Allocator, types []common.ColumnType, index int, rows int, nullStride int) (*Batch, error) {
	rnd := rand.New(rand.NewSource(int64(index) + 1)) //nolint:gosec
	batch := &Batch{Index: index, Rows: rows}
	names := ColumnNames(len(types))
	for col, ct := range types {
		arr, err := generateColumn(mem, ct, col, rows, nullStride, rnd)
		if err != nil {
			batch.Release()
			return nil, err
		}
		batch.Arrays = append(batch.Arrays, arr)
		v, err := vector.FromArrow(mem, names[col], arr)
		if err != nil {
			batch.Release()
			return nil, err
		}
		batch.Vectors = append(batch.Vectors, v)
	}
	return batch, nil
}

func generateColumn(mem memory.Allocator, ct common.ColumnType, col int, rows int, nullStride int,
	rnd *rand.Rand) (arrow.Array, error) {
	dt, err := ArrowType(ct)
	if err != nil {
		return nil, err
	}
	builder := array.NewBuilder(mem, dt)
	defer builder.Release()
	builder.Reserve(rows)
	decimalBound := decimalBound(ct.DecPrecision)
	for row := 0; row < rows; row++ {
		if nullStride > 0 && (row+col)%nullStride == 0 {
			builder.AppendNull()
			continue
		}
		switch b := builder.(type) {
		case *array.Int8Builder:
			b.Append(int8(rnd.Intn(256) - 128))
		case *array.Int16Builder:
			b.Append(int16(rnd.Intn(65536) - 32768))
		case *array.Int32Builder:
			b.Append(rnd.Int31() - rnd.Int31())
		case *array.Int64Builder:
			b.Append(rnd.Int63() - rnd.Int63())
		case *array.Float64Builder:
			b.Append(rnd.NormFloat64() * 1e6)
		case *array.Decimal128Builder:
			b.Append(decimal128.FromI64(rnd.Int63n(2*decimalBound) - decimalBound))
		case *array.StringBuilder:
			b.Append(fmt.Sprintf("value-%d-%d", col, rnd.Intn(1_000_000)))
		case *array.BinaryBuilder:
			value := make([]byte, rnd.Intn(32))
			rnd.Read(value)
			b.Append(value)
		case *array.BooleanBuilder:
			b.Append(rnd.Intn(2) == 1)
		case *array.TimestampBuilder:
			b.Append(arrow.Timestamp(rnd.Int63n(4102444800000000)))
		default:
			return nil, errors.Errorf("no generator for %s", dt)
		}
	}
	return builder.NewArray(), nil
}

// decimalBound keeps generated unscaled decimal values within precision digits
func decimalBound(precision int) int64 {
	bound := int64(1)
	for i := 0; i < precision && i < 18; i++ {
		bound *= 10
	}
	return bound
}

// VerifyBatch checks every output vector holds the same values and nulls as the batch it was pivoted from
func VerifyBatch(types []common.ColumnType, batch *Batch, out []vector.Vector) error {
	for col, ct := range types {
		dt, err := ArrowType(ct)
		if err != nil {
			return err
		}
		actual, err := vector.ToArrow(out[col], dt)
		if err != nil {
			return err
		}
		equal := array.Equal(batch.Arrays[col], actual)
		actual.Release()
		if !equal {
			return errors.Errorf("batch %d column %s (%s) did not survive the round trip", batch.Index,
				out[col].Name(), ct)
		}
	}
	return nil
}
