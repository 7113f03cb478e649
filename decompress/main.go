package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fumin/arithcode"
	"github.com/fumin/arithcode/ac"
	"github.com/fumin/arithcode/trace"
)

var (
	counts  = flag.String("counts", "", "symbol counts of the model, e.g. A=3,B=1")
	length  = flag.Int("n", 0, "number of symbols to decode, defaults to the sum of counts")
	config  = flag.String("c", "", "JSON configuration used when compressing")
	verbose = flag.Bool("verbose", false, "log every decode step")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s -counts A=3,B=1 [flags] codebits\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}
	if *counts == "" || flag.Arg(0) == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*counts, flag.Arg(0)); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(countList, bits string) error {
	cfg := ac.DefaultConfig()
	if *config != "" {
		var err error
		cfg, err = ac.ParseConfig([]byte(*config))
		if err != nil {
			return errors.Wrap(err, "")
		}
	}

	model, err := parseCounts(countList)
	if err != nil {
		return errors.Wrap(err, "")
	}
	table, err := ac.NewTableFromCounts(model, cfg)
	if err != nil {
		return errors.Wrap(err, "")
	}
	n := *length
	if n <= 0 {
		n = int(table.Total())
	}
	cw, err := ac.ParseCodeword(bits)
	if err != nil {
		return errors.Wrap(err, "")
	}
	// Scale the same way the compressor does, so that both sides use one Config.
	if scaled := arithcode.ScaleConfig(cfg, table); scaled.Precision != cfg.Precision {
		cfg = scaled
		if table, err = ac.NewTableFromCounts(model, cfg); err != nil {
			return errors.Wrap(err, "")
		}
	}

	var obs trace.Observer
	if *verbose {
		obs = trace.NewLogObserver(log.StandardLogger())
	}
	part, err := ac.NewPartition(table, cfg, obs)
	if err != nil {
		return errors.Wrap(err, "")
	}
	decoded, err := ac.DecodeCodeword(cw, n, part, cfg, obs)
	if err != nil {
		log.Errorf("partial decode %q", string(decoded))
		return errors.Wrap(err, "")
	}
	fmt.Println(string(decoded))
	return nil
}

// parseCounts reads comma separated symbol=count pairs, where each symbol is a single character.
func parseCounts(list string) (map[rune]int64, error) {
	model := make(map[rune]int64)
	for _, kv := range strings.Split(list, ",") {
		i := strings.LastIndex(kv, "=")
		if i < 0 {
			return nil, errors.Errorf("missing '=' in %q", kv)
		}
		sym, cnt := kv[:i], kv[i+1:]
		if utf8.RuneCountInString(sym) != 1 {
			return nil, errors.Errorf("symbol %q is not a single character", sym)
		}
		c, err := strconv.ParseInt(cnt, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%q", kv))
		}
		r, _ := utf8.DecodeRuneInString(sym)
		model[r] += c
	}
	return model, nil
}
