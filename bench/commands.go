package bench

import (
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/conf"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/metrics"
	"github.com/kunichan2013/dremio-oss/pivot"
	"github.com/kunichan2013/dremio-oss/vector"
	log "github.com/sirupsen/logrus"
)

// Command runs one workload over generated batches. Each worker owns its own command, so a command may keep its
// block stores between batches.
type Command interface {
	Run(batch *Batch) error

	Release()
}

// CommandFactory creates Command instances for a worker
// Each workload has its own CommandFactory instance
type CommandFactory interface {

	// Name returns the name of the workload, as used in the config
	Name() string

	// CreateCommand creates a Command instance
	CreateCommand(workerID int, env *Env) Command
}

// Env is what every command of a run shares
type Env struct {
	Layout  *pivot.Layout
	Types   []common.ColumnType
	Mem     memory.Allocator
	Verify  bool
	Metrics *Metrics
}

// Metrics are the counters every workload reports to
type Metrics struct {
	BatchesProcessed metrics.Counter
	RowsPivoted      metrics.Counter
	RowsUnpivoted    metrics.Counter
	RowsHashed       metrics.Counter
	VariableBytes    metrics.Counter
	BatchTime        metrics.Observer
}

var batchTimeBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1}

func NewMetrics(factory metrics.Factory) (*Metrics, error) {
	m := &Metrics{}
	counters := []struct {
		counter *metrics.Counter
		name    string
		help    string
	}{
		{&m.BatchesProcessed, "pivot_batches_processed_total", "counter for number of batches processed"},
		{&m.RowsPivoted, "pivot_rows_pivoted_total", "counter for number of rows pivoted into row blocks"},
		{&m.RowsUnpivoted, "pivot_rows_unpivoted_total", "counter for number of rows unpivoted into vectors"},
		{&m.RowsHashed, "pivot_rows_hashed_total", "counter for number of pivoted rows hashed"},
		{&m.VariableBytes, "pivot_variable_bytes_total", "counter for number of bytes appended to variable block stores"},
	}
	for _, c := range counters {
		counter, err := factory.CreateCounter(c.name, c.help)
		if err != nil {
			return nil, err
		}
		*c.counter = counter
	}
	observer, err := factory.CreateObserver("pivot_batch_time_seconds",
		"histogram measuring time to run a workload over one batch in seconds", batchTimeBuckets)
	if err != nil {
		return nil, err
	}
	m.BatchTime = observer
	return m, nil
}

// pivotStores holds the block stores a command pivots into, reused from batch to batch
type pivotStores struct {
	env      *Env
	fixed    *pivot.FixedBlockStore
	variable *pivot.VariableBlockStore
}

func newPivotStores(env *Env) pivotStores {
	return pivotStores{
		env:      env,
		fixed:    pivot.NewFixedBlockStore(env.Mem, env.Layout.RowWidth()),
		variable: pivot.NewVariableBlockStore(env.Mem, env.Layout.VariableCount()),
	}
}

// pivotBatch empties the stores, sizes them for the batch and pivots it
func (s *pivotStores) pivotBatch(batch *Batch) error {
	s.fixed.Reset()
	s.variable.Reset()
	s.fixed.EnsureAvailableBlocks(batch.Rows)
	required := pivot.RequiredVariableSpace(s.env.Layout, batch.Vectors, batch.Rows)
	s.variable.EnsureAvailableDataSpace(required)
	if err := pivot.Pivot(s.env.Layout, batch.Vectors, batch.Rows, s.fixed, s.variable); err != nil {
		return err
	}
	s.env.Metrics.RowsPivoted.Add(float64(batch.Rows))
	s.env.Metrics.VariableBytes.Add(float64(required))
	return nil
}

func (s *pivotStores) release() {
	s.fixed.Release()
	s.variable.Release()
}

type PivotCommandFactory struct {
}

func (p *PivotCommandFactory) Name() string {
	return conf.WorkloadPivot
}

func (p *PivotCommandFactory) CreateCommand(workerID int, env *Env) Command {
	return &PivotCommand{workerID: workerID, stores: newPivotStores(env)}
}

// PivotCommand only pivots, it measures the columnar to row direction on its own
type PivotCommand struct {
	workerID int
	stores   pivotStores
}

func (p *PivotCommand) Run(batch *Batch) error {
	return p.stores.pivotBatch(batch)
}

func (p *PivotCommand) Release() {
	p.stores.release()
}

type RoundTripCommandFactory struct {
}

func (r *RoundTripCommandFactory) Name() string {
	return conf.WorkloadRoundTrip
}

func (r *RoundTripCommandFactory) CreateCommand(workerID int, env *Env) Command {
	return &RoundTripCommand{workerID: workerID, env: env, stores: newPivotStores(env)}
}

// RoundTripCommand pivots a batch, unpivots it into fresh vectors and optionally checks the result
type RoundTripCommand struct {
	workerID int
	env      *Env
	stores   pivotStores
}

func (r *RoundTripCommand) Run(batch *Batch) error {
	if err := r.stores.pivotBatch(batch); err != nil {
		return err
	}
	out, err := r.allocateOutputs(batch.Rows)
	defer func() {
		for _, v := range out {
			v.Release()
		}
	}()
	if err != nil {
		return err
	}
	if err := pivot.Unpivot(r.env.Layout, r.stores.fixed, r.stores.variable, batch.Rows, out); err != nil {
		return err
	}
	r.env.Metrics.RowsUnpivoted.Add(float64(batch.Rows))
	if r.env.Verify {
		return VerifyBatch(r.env.Types, batch, out)
	}
	return nil
}

func (r *RoundTripCommand) allocateOutputs(rows int) ([]vector.Vector, error) {
	layout := r.env.Layout
	out := make([]vector.Vector, 0, layout.FieldCount())
	for i := 0; i < layout.FieldCount(); i++ {
		field := layout.Field(i)
		switch field.Kind.Kind {
		case pivot.KindFixed:
			v := vector.NewFixed(r.env.Mem, field.Name, field.Kind.Width)
			v.Allocate(rows)
			out = append(out, v)
		case pivot.KindBit:
			v := vector.NewBit(r.env.Mem, field.Name)
			v.Allocate(rows)
			out = append(out, v)
		case pivot.KindVariable:
			size, err := pivot.VariableDataSize(layout, r.stores.fixed, r.stores.variable, i, 0, rows)
			if err != nil {
				return out, err
			}
			v := vector.NewVariable(r.env.Mem, field.Name)
			v.Allocate(rows, size)
			out = append(out, v)
		default:
			return out, errors.NewUnsupportedFieldKindError(field.Name, field.Kind.String())
		}
	}
	return out, nil
}

func (r *RoundTripCommand) Release() {
	r.stores.release()
}

type HashCommandFactory struct {
}

func (h *HashCommandFactory) Name() string {
	return conf.WorkloadHash
}

func (h *HashCommandFactory) CreateCommand(workerID int, env *Env) Command {
	return &HashCommand{workerID: workerID, env: env, stores: newPivotStores(env)}
}

// HashCommand pivots a batch and computes the row keys a hash table would use. With verification on, every hash is
// checked to be stable and rows sharing a hash are compared to count collisions.
type HashCommand struct {
	workerID   int
	env        *Env
	stores     pivotStores
	hashes     []uint64
	collisions int
}

func (h *HashCommand) Run(batch *Batch) error {
	if err := h.stores.pivotBatch(batch); err != nil {
		return err
	}
	if cap(h.hashes) < batch.Rows {
		h.hashes = make([]uint64, batch.Rows)
	}
	hashes := h.hashes[:batch.Rows]
	layout, fixed, variable := h.env.Layout, h.stores.fixed, h.stores.variable
	if err := pivot.HashRows(layout, fixed, variable, 0, batch.Rows, hashes); err != nil {
		return err
	}
	h.env.Metrics.RowsHashed.Add(float64(batch.Rows))
	if !h.env.Verify {
		return nil
	}
	firstByHash := make(map[uint64]int, batch.Rows)
	for row, hash := range hashes {
		if pivot.HashRow(layout, fixed, variable, row) != hash {
			return errors.Errorf("batch %d row %d hash is not stable", batch.Index, row)
		}
		first, ok := firstByHash[hash]
		if !ok {
			firstByHash[hash] = row
			continue
		}
		equal, err := pivot.RowsEqual(layout, fixed, variable, first, fixed, variable, row)
		if err != nil {
			return err
		}
		if !equal {
			h.collisions++
		}
	}
	return nil
}

func (h *HashCommand) Release() {
	log.Debugf("hash worker %d saw %d hash collisions", h.workerID, h.collisions)
	h.stores.release()
}

// timeBatch runs the command over the batch and records how long it took
func timeBatch(cmd Command, batch *Batch, m *Metrics) error {
	start := time.Now()
	if err := cmd.Run(batch); err != nil {
		return err
	}
	m.BatchTime.Observe(time.Since(start).Seconds())
	m.BatchesProcessed.Inc()
	return nil
}
