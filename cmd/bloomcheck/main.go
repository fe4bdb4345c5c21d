package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	bbloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/huandu/skiplist"
	"github.com/sirupsen/logrus"

	"bloomkit/pkg/bloom"
	"bloomkit/pkg/entropy"
)

var ErrFalseNegative = errors.New("inserted value reported as absent")

type config struct {
	n       uint64
	p       float64
	samples uint64
	verbose bool
}

type report struct {
	M         uint64
	K         uint32
	ByteCount uint64
	Inserted  uint64
	Samples   uint64

	FalsePositives uint64
	FPRate         float64
	EstimatedRate  float64

	// bits-and-blooms/bloom 在相同参数下的结果
	ReferenceFalsePositives uint64
	ReferenceFPRate         float64

	Refills uint64
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("bloomcheck", flag.ContinueOnError)
	fs.Uint64Var(&cfg.n, "n", 1_000_000, "number of items to insert")
	fs.Float64Var(&cfg.p, "p", 0.01, "target false positive rate")
	fs.Uint64Var(&cfg.samples, "samples", 1_000_000, "number of absent values to probe")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if cfg.n == 0 {
		return config{}, errors.New("-n must be positive")
	}
	if cfg.p <= 0 || cfg.p >= 1 {
		return config{}, fmt.Errorf("-p must be in (0, 1), got %v", cfg.p)
	}
	return cfg, nil
}

// run inserts cfg.n random values, checks every one of them is still reported
// present, then probes cfg.samples fresh values that were never inserted.
// The inserted values are kept in a skiplist so the probes are known absent.
func run(cfg config, buf *entropy.Buffer) (report, error) {
	filter := bloom.New[entropy.Uint128](cfg.n, cfg.p)
	reference := bbloom.NewWithEstimates(uint(cfg.n), cfg.p)
	index := skiplist.New(skiplist.Bytes)

	rep := report{
		M:         filter.M(),
		K:         filter.K(),
		ByteCount: filter.ByteCount(),
	}

	for uint64(index.Len()) < cfg.n {
		v, err := buf.Uint128()
		if err != nil {
			return rep, err
		}
		key := v.Bytes()
		if index.Get(key[:]) != nil {
			continue
		}
		index.Set(key[:], v)
		filter.Insert(v)
		reference.Add(key[:])
	}
	rep.Inserted = uint64(index.Len())
	logrus.Debugf("inserted %d values, popcount=%d", rep.Inserted, filter.PopCount())

	for elem := index.Front(); elem != nil; elem = elem.Next() {
		v := elem.Value.(entropy.Uint128)
		if !filter.Contains(v) {
			return rep, fmt.Errorf("%s: %w", v, ErrFalseNegative)
		}
	}

	for rep.Samples < cfg.samples {
		v, err := buf.Uint128()
		if err != nil {
			return rep, err
		}
		key := v.Bytes()
		if index.Get(key[:]) != nil {
			continue
		}
		rep.Samples++
		if filter.Contains(v) {
			rep.FalsePositives++
		}
		if reference.Test(key[:]) {
			rep.ReferenceFalsePositives++
		}
	}

	if rep.Samples > 0 {
		rep.FPRate = float64(rep.FalsePositives) / float64(rep.Samples)
		rep.ReferenceFPRate = float64(rep.ReferenceFalsePositives) / float64(rep.Samples)
	}
	rep.EstimatedRate = filter.EstimatedFPRate()
	rep.Refills = buf.Refills()
	return rep, nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logrus.Fatal(err)
	}
	if cfg.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	rep, err := run(cfg, entropy.NewDefault())
	if err != nil {
		logrus.Fatalf("bloomcheck failed, err:%v", err)
	}

	logrus.WithFields(logrus.Fields{
		"m":             rep.M,
		"k":             rep.K,
		"bytes":         rep.ByteCount,
		"inserted":      rep.Inserted,
		"samples":       rep.Samples,
		"false_pos":     rep.FalsePositives,
		"fp_rate":       rep.FPRate,
		"estimated":     rep.EstimatedRate,
		"reference_fp":  rep.ReferenceFPRate,
		"target":        cfg.p,
		"entropy_fills": rep.Refills,
	}).Info("bloomcheck done")
}
