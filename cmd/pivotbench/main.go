package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	konghcl "github.com/alecthomas/kong-hcl/v2"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/kunichan2013/dremio-oss/bench"
	"github.com/kunichan2013/dremio-oss/conf"
	"github.com/kunichan2013/dremio-oss/errors"
	plog "github.com/kunichan2013/dremio-oss/log"
	"github.com/kunichan2013/dremio-oss/metrics/prometheus"
)

type arguments struct {
	Config kong.ConfigFlag `help:"Path to config file" type:"existingfile"`
	Log    plog.Config     `help:"Configuration for the logger" embed:"" prefix:"log-"`
	Bench  conf.Config     `help:"Benchmark configuration" embed:"" prefix:""`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if _, err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string) (bench.Summary, error) {
	cfg := arguments{}
	parser, err := kong.New(&cfg, kong.Configuration(konghcl.Loader))
	if err != nil {
		return bench.Summary{}, errors.WithStack(err)
	}
	_, err = parser.Parse(args)
	if err != nil {
		return bench.Summary{}, errors.WithStack(err)
	}
	if err := cfg.Log.Configure(); err != nil {
		return bench.Summary{}, err
	}
	if err := cfg.Bench.Validate(); err != nil {
		return bench.Summary{}, err
	}
	runner := bench.NewRunner(cfg.Bench, memory.NewGoAllocator(), prometheus.NewFactory(cfg.Bench))
	return runner.Run(ctx)
}
