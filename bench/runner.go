package bench

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/common"
	"github.com/kunichan2013/dremio-oss/conf"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/metrics"
	"github.com/kunichan2013/dremio-oss/pivot"
	log "github.com/sirupsen/logrus"
)

// Runner generates batches for the configured schema and runs them through a workload on a number of workers.
// Batch i is run by worker i % Concurrency.
type Runner struct {
	conf             conf.Config
	mem              memory.Allocator
	metricsFactory   metrics.Factory
	commandFactories map[string]CommandFactory
	rows             int64
	batches          int64
}

// Summary describes a finished run
type Summary struct {
	Workload string
	Batches  int64
	Rows     int64
	Duration time.Duration
}

// RowsPerSecond is the throughput over the whole run
func (s Summary) RowsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Rows) / s.Duration.Seconds()
}

func NewRunner(cnf conf.Config, mem memory.Allocator, metricsFactory metrics.Factory) *Runner {
	return &Runner{
		conf:             cnf,
		mem:              mem,
		metricsFactory:   metricsFactory,
		commandFactories: make(map[string]CommandFactory),
	}
}

// Run runs every batch of the configured workload. It stops early when ctx is cancelled or a batch fails.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := r.conf.Validate(); err != nil {
		return Summary{}, err
	}
	types, err := r.conf.ColumnTypes()
	if err != nil {
		return Summary{}, err
	}
	layout, err := pivot.PlanFromColumnTypes(ColumnNames(len(types)), types)
	if err != nil {
		return Summary{}, err
	}
	if err := r.registerCommands(); err != nil {
		return Summary{}, err
	}
	factory, ok := r.commandFactories[r.conf.Workload]
	if !ok {
		return Summary{}, errors.NewInvalidConfigurationError("unknown workload " + r.conf.Workload)
	}
	if err := r.metricsFactory.Start(); err != nil {
		return Summary{}, err
	}
	defer func() {
		if err := r.metricsFactory.Stop(); err != nil {
			log.Warnf("failed to stop metrics %v", err)
		}
	}()
	m, err := NewMetrics(r.metricsFactory)
	if err != nil {
		return Summary{}, err
	}
	env := &Env{Layout: layout, Types: types, Mem: r.mem, Verify: r.conf.Verify, Metrics: m}

	log.Infof("Running %s workload with %d batches of %d rows on %d workers, row width %d bytes", r.conf.Workload,
		r.conf.Batches, r.conf.BatchSize, r.conf.Concurrency, layout.RowWidth())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	start := time.Now()
	chans := make([]chan error, r.conf.Concurrency)
	for i := 0; i < r.conf.Concurrency; i++ {
		ch := make(chan error, 1)
		chans[i] = ch
		go r.runWorkerWithCh(ctx, ch, i, factory.CreateCommand(i, env), env)
	}
	var firstErr error
	for _, ch := range chans {
		if err := <-ch; err != nil && firstErr == nil {
			log.Errorf("workload %s failed %v", r.conf.Workload, err)
			firstErr = err
			cancel()
		}
	}
	summary := Summary{
		Workload: r.conf.Workload,
		Batches:  atomic.LoadInt64(&r.batches),
		Rows:     atomic.LoadInt64(&r.rows),
		Duration: time.Since(start),
	}
	if firstErr != nil {
		return summary, firstErr
	}
	log.Infof("Workload %s processed %d rows in %d batches in %s, %.0f rows/sec", summary.Workload, summary.Rows,
		summary.Batches, summary.Duration, summary.RowsPerSecond())
	return summary, nil
}

func (r *Runner) runWorkerWithCh(ctx context.Context, ch chan error, workerID int, cmd Command, env *Env) {
	ch <- r.runWorker(ctx, workerID, cmd, env)
}

func (r *Runner) runWorker(ctx context.Context, workerID int, cmd Command, env *Env) (err error) {
	defer common.RecoverInternalError(&err)
	defer cmd.Release()
	for index := workerID; index < r.conf.Batches; index += r.conf.Concurrency {
		if err := ctx.Err(); err != nil {
			return errors.WithStack(err)
		}
		batch, err := GenerateBatch(r.mem, env.Types, index, r.conf.BatchSize, r.conf.NullStride)
		if err != nil {
			return err
		}
		err = timeBatch(cmd, batch, env.Metrics)
		batch.Release()
		if err != nil {
			return errors.Wrapf(err, "worker %d batch %d", workerID, index)
		}
		atomic.AddInt64(&r.batches, 1)
		atomic.AddInt64(&r.rows, int64(r.conf.BatchSize))
		log.Tracef("worker %d finished batch %d", workerID, index)
	}
	return nil
}

func (r *Runner) registerCommandFactory(factory CommandFactory) error {
	_, ok := r.commandFactories[factory.Name()]
	if ok {
		return errors.Errorf("command factory already registered with name %s", factory.Name())
	}
	r.commandFactories[factory.Name()] = factory
	return nil
}

func (r *Runner) registerCommands() error {
	if len(r.commandFactories) > 0 {
		return nil
	}
	if err := r.registerCommandFactory(&RoundTripCommandFactory{}); err != nil {
		return err
	}
	if err := r.registerCommandFactory(&PivotCommandFactory{}); err != nil {
		return err
	}
	return r.registerCommandFactory(&HashCommandFactory{})
}
