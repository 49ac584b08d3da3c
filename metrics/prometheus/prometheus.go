package prometheus

import (
	"net/http"
	"sync"

	"github.com/kunichan2013/dremio-oss/conf"
	"github.com/kunichan2013/dremio-oss/errors"
	"github.com/kunichan2013/dremio-oss/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const defaultListenAddr = "localhost:2112"

// Factory creates metrics in its own registry. The registry is only exported over HTTP when metrics are enabled in
// the config, so collecting without serving is possible.
type Factory struct {
	config     conf.Config
	lock       sync.Mutex
	registry   *prometheus.Registry
	httpServer *http.Server
	started    bool
}

func NewFactory(config conf.Config) *Factory {
	return &Factory{config: config, registry: prometheus.NewRegistry()}
}

func (f *Factory) CreateCounter(name string, description string) (metrics.Counter, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.started {
		return nil, errors.New("not started")
	}
	counter, err := register(f.registry, prometheus.NewCounter(prometheus.CounterOpts{
		Name: name,
		Help: description,
	}))
	if err != nil {
		return nil, err
	}
	return &Counter{pCounter: counter}, nil
}

func (f *Factory) CreateObserver(name string, description string, buckets []float64) (metrics.Observer, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.started {
		return nil, errors.New("not started")
	}
	histogram, err := register(f.registry, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    name,
		Help:    description,
		Buckets: buckets,
	}))
	if err != nil {
		return nil, err
	}
	return histogram, nil
}

// register adds c to the registry, handing back the existing collector if one with the same description is there
func register[C prometheus.Collector](registry *prometheus.Registry, c C) (C, error) {
	if err := registry.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, errors.WithStack(err)
	}
	return c, nil
}

// Registry is where every metric of this factory is collected
func (f *Factory) Registry() *prometheus.Registry {
	return f.registry
}

func (f *Factory) Start() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.started {
		return errors.New("already started")
	}
	f.started = true
	if !f.config.MetricsEnabled {
		return nil
	}
	metricsListenAddr := defaultListenAddr
	if f.config.MetricsListenAddr != "" {
		metricsListenAddr = f.config.MetricsListenAddr
	}
	handler := promhttp.InstrumentMetricHandler(f.registry, promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{}))
	f.httpServer = &http.Server{Addr: metricsListenAddr, Handler: handler} //nolint:gosec
	go func(srv *http.Server) {
		log.Debugf("Starting prometheus http server on address %s", metricsListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("prometheus http export server failed to listen %v", err)
		}
	}(f.httpServer)
	return nil
}

func (f *Factory) Stop() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	if !f.started {
		return errors.New("not started")
	}
	f.started = false
	if f.httpServer != nil {
		srv := f.httpServer
		f.httpServer = nil
		return srv.Close()
	}
	return nil
}

type Counter struct {
	pCounter prometheus.Counter
}

func (c *Counter) Inc() {
	c.pCounter.Inc()
}

func (c *Counter) Add(v float64) {
	c.pCounter.Add(v)
}
