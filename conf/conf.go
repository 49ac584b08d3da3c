package conf

import (
	"fmt"
	"strings"

	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/errors"
)

const (
	WorkloadRoundTrip = "roundtrip"
	WorkloadPivot     = "pivot"
	WorkloadHash      = "hash"

	DefaultColumns           = "INT;BIGINT;VARCHAR;DECIMAL(38,0);BOOLEAN"
	DefaultBatchSize         = 4096
	DefaultBatches           = 100
	DefaultNullStride        = 5
	DefaultConcurrency       = 1
	DefaultMetricsListenAddr = "localhost:2112"

	// MaxBatchSize keeps variable pointer offsets of a single batch well inside uint32 range
	MaxBatchSize = 1 << 20
)

// Config drives the pivot benchmark. Columns is a semicolon separated list of column types, for example
// "INT;VARCHAR;DECIMAL(38,0)". Every NullStride-th value of a column is null, zero means no nulls.
type Config struct {
	Columns           string `help:"Semicolon separated column types" default:"INT;BIGINT;VARCHAR;DECIMAL(38,0);BOOLEAN"`
	BatchSize         int    `help:"Rows per batch" default:"4096"`
	Batches           int    `help:"Total number of batches to run" default:"100"`
	NullStride        int    `help:"Every n-th value is null, 0 for no nulls" default:"5"`
	Workload          string `help:"Workload to run, one of roundtrip, pivot or hash" default:"roundtrip"`
	Concurrency       int    `help:"Number of workers running batches in parallel" default:"1"`
	Verify            bool   `help:"Check every unpivoted batch against its input" default:"true"`
	MetricsEnabled    bool   `help:"Export metrics over http"`
	MetricsListenAddr string `help:"Address the metrics http server listens on" default:"localhost:2112"`
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Columns) == "" {
		return errors.NewInvalidConfigurationError("Columns must be specified")
	}
	if _, err := c.ColumnTypes(); err != nil {
		return err
	}
	if c.BatchSize < 1 {
		return errors.NewInvalidConfigurationError("BatchSize must be >= 1")
	}
	if c.BatchSize > MaxBatchSize {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("BatchSize must be <= %d", MaxBatchSize))
	}
	if c.Batches < 1 {
		return errors.NewInvalidConfigurationError("Batches must be >= 1")
	}
	if c.NullStride < 0 {
		return errors.NewInvalidConfigurationError("NullStride must be >= 0")
	}
	switch c.Workload {
	case WorkloadRoundTrip, WorkloadPivot, WorkloadHash:
	default:
		return errors.NewInvalidConfigurationError(fmt.Sprintf("Workload must be one of %s, %s or %s",
			WorkloadRoundTrip, WorkloadPivot, WorkloadHash))
	}
	if c.Concurrency < 1 {
		return errors.NewInvalidConfigurationError("Concurrency must be >= 1")
	}
	if c.MetricsEnabled && c.MetricsListenAddr == "" {
		return errors.NewInvalidConfigurationError("MetricsListenAddr must be specified")
	}
	return nil
}

// ColumnTypes parses Columns
func (c *Config) ColumnTypes() ([]common.ColumnType, error) {
	parts := strings.Split(c.Columns, ";")
	types := make([]common.ColumnType, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ct, err := common.ParseColumnType(part)
		if err != nil {
			return nil, err
		}
		types = append(types, ct)
	}
	if len(types) == 0 {
		return nil, errors.NewInvalidConfigurationError("Columns must be specified")
	}
	return types, nil
}

func NewDefaultConfig() *Config {
	return &Config{
		Columns:           DefaultColumns,
		BatchSize:         DefaultBatchSize,
		Batches:           DefaultBatches,
		NullStride:        DefaultNullStride,
		Workload:          WorkloadRoundTrip,
		Concurrency:       DefaultConcurrency,
		Verify:            true,
		MetricsListenAddr: DefaultMetricsListenAddr,
	}
}

func NewTestConfig() *Config {
	cnf := NewDefaultConfig()
	cnf.BatchSize = 200
	cnf.Batches = 3
	return cnf
}
