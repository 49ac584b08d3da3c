package metrics

type Counter interface {
	Inc()

	Add(v float64)
}

// Observer records samples into a distribution, such as batch latencies
type Observer interface {
	Observe(v float64)
}

type Factory interface {
	CreateCounter(name string, description string) (Counter, error)

	CreateObserver(name string, description string, buckets []float64) (Observer, error)

	Start() error

	Stop() error
}
