package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"

	"github.com/fumin/arithcode"
	"github.com/fumin/arithcode/ac"
	"github.com/fumin/arithcode/trace"
)

// demoInput is coded when neither a file nor -s is given.
const demoInput = "KURBATOVMAKSIMANDREEVIC"

var (
	text       = flag.String("s", "", "text to code instead of a file")
	config     = flag.String("c", "", `JSON configuration, e.g. {"Precision": 1024, "Epsilon": "1e-80"}`)
	autoScale  = flag.Bool("autoscale", true, "widen precision for long inputs")
	verbose    = flag.Bool("verbose", false, "log every intermediate step")
	digits     = flag.Int("digits", 33, "significant digits of logged bounds")
	cpuprofile = flag.String("cpuprofile", "", "write a CPU profile to this directory")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] [filename]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile)).Stop()
	}

	input, err := readInput(flag.Arg(0))
	if err != nil {
		log.Fatalf("%+v", err)
	}
	opts, err := parseOptions()
	if err != nil {
		log.Fatalf("%+v", err)
	}
	if err := run(input, opts); err != nil {
		log.Fatalf("%+v", err)
	}
}

func readInput(name string) ([]rune, error) {
	switch {
	case *text != "":
		return []rune(*text), nil
	case name != "":
		b, err := os.ReadFile(name)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		return []rune(string(b)), nil
	default:
		return []rune(demoInput), nil
	}
}

func parseOptions() (arithcode.Options, error) {
	opts := arithcode.DefaultOptions()
	opts.AutoScale = *autoScale
	if *config != "" {
		cfg, err := ac.ParseConfig([]byte(*config))
		if err != nil {
			return arithcode.Options{}, errors.Wrap(err, "")
		}
		opts.Config = cfg
	}
	if *verbose {
		opts.Observer = trace.NewLogObserver(log.StandardLogger()).WithDigits(*digits)
	}
	return opts, nil
}

func run(input []rune, opts arithcode.Options) error {
	res, err := arithcode.Run(input, opts)
	if err != nil {
		return errors.Wrap(err, "")
	}

	cfgB, err := res.Config.MarshalJSON()
	if err != nil {
		return errors.Wrap(err, "")
	}
	log.Infof("config: %s", cfgB)

	fmt.Printf("Symbol intervals:\n")
	for _, s := range res.Partition.Symbols() {
		iv, _ := res.Partition.Interval(s)
		fmt.Printf("%q: count %d, [%s, %s)\n", s, res.Table.Count(s), iv.Low.Text('g', *digits), iv.High.Text('g', *digits))
	}
	fmt.Printf("Low: %s\n", res.Interval.Low.Text('g', *digits))
	fmt.Printf("High: %s\n", res.Interval.High.Text('g', *digits))
	fmt.Printf("Range: %s\n", res.Interval.Width().Text('g', *digits))
	fmt.Printf("q: %d\n", res.Codeword.Q)
	fmt.Printf("p: %s\n", res.Codeword.P.String())
	fmt.Printf("Code: %s (%d bits)\n", res.Codeword.String(), res.Codeword.Q)
	fmt.Printf("Bits per symbol: %.3f\n", res.BitsPerSymbol())
	fmt.Printf("Hamming code: %s (m=%d, r=%d, n=%d)\n", res.Hamming.String(), res.Hamming.M, res.Hamming.R, res.Hamming.N())
	fmt.Printf("Rate: %.3f\n", res.CompressionRate())
	return nil
}
