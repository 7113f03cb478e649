// Command cluster prints the normalized compression distance between every pair of files in a
// directory, where the complexity of a file is the length of its static arithmetic code.
package main

import (
	"bytes"
	"flag"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/fumin/arithcode"
	"github.com/fumin/arithcode/ac"
)

var (
	complexityType = flag.String("i", "ac", "complexity measure, ac or targz")
	dataDir        = flag.String("d", "mammals10", "data directory")
)

func main() {
	flag.Parse()
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := run(*complexityType, *dataDir); err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(measure, dir string) error {
	data, err := listFiles(dir)
	if err != nil {
		return errors.Wrap(err, "")
	}
	distMat, err := distanceMatrix(measure, data)
	if err != nil {
		return errors.Wrap(err, "")
	}

	if err := display(data, distMat); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func display(data []string, distMat []float64) error {
	// Print data as a comma separated array.
	names := make([]string, 0, len(data))
	for _, fpath := range data {
		name := filepath.Base(fpath)
		names = append(names, strconv.Quote(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	log.Infof("[%s]", strings.Join(names, ","))

	// Print distance matrix as a comma separated array.
	dists := make([]string, 0, len(distMat))
	for _, f := range distMat {
		dists = append(dists, strconv.FormatFloat(f, 'f', -1, 64))
	}
	log.Infof("[%s]", strings.Join(dists, ","))
	return nil
}

func distance(cacher map[string]float64, measure, x, y string) (float64, error) {
	xy, err := os.CreateTemp("", "cluster.xy")
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	defer os.Remove(xy.Name())
	if err := concatFiles(xy, x, y); err != nil {
		return -1, errors.Wrap(err, "")
	}

	kxy, err := complexity(nil, measure, xy.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	kx, err := complexity(cacher, measure, x)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	ky, err := complexity(cacher, measure, y)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}

	minxy := kx
	if ky < kx {
		minxy = ky
	}
	maxxy := kx
	if ky > kx {
		maxxy = ky
	}

	dist := (kxy - minxy) / maxxy
	return dist, nil
}

func complexity(cacher map[string]float64, measure, fpath string) (float64, error) {
	if size, ok := cacher[fpath]; ok {
		return size, nil
	}

	var size float64
	var err error
	switch measure {
	case "ac":
		size, err = complexityAC(fpath)
	default:
		size, err = complexityTarGz(fpath)
	}
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	if cacher != nil {
		cacher[fpath] = size
	}
	return size, nil
}

// complexityAC returns the length in bits of the arithmetic code of the file's bytes.
func complexityAC(fpath string) (float64, error) {
	b, err := os.ReadFile(fpath)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	cfg := ac.DefaultConfig()
	table, err := ac.NewTable(b, cfg)
	if err != nil {
		return -1, errors.Wrap(err, fpath)
	}
	cfg = arithcode.ScaleConfig(cfg, table)
	if table, err = ac.NewTable(b, cfg); err != nil {
		return -1, errors.Wrap(err, "")
	}
	part, err := ac.NewPartition(table, cfg, nil)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	iv, err := ac.Encode(b, part, cfg, nil)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	cw, err := ac.Quantize(iv, cfg, nil)
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(cw.Q), nil
}

func complexityTarGz(fpath string) (float64, error) {
	dst, err := os.CreateTemp("", "cluster.tgz")
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	dst.Close()
	defer os.Remove(dst.Name())
	var stderr bytes.Buffer
	cmd := exec.Command("tar", "zcf", dst.Name(), fpath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return -1, errors.Wrap(err, stderr.String())
	}
	info, err := os.Stat(dst.Name())
	if err != nil {
		return -1, errors.Wrap(err, "")
	}
	return float64(8 * info.Size()), nil
}

func concatFiles(tmpf *os.File, fs ...string) error {
	for _, fpath := range fs {
		err := func(fpath string) error {
			f, err := os.Open(fpath)
			if err != nil {
				return errors.Wrap(err, "")
			}
			defer f.Close()
			if _, err := io.Copy(tmpf, f); err != nil {
				return errors.Wrap(err, "")
			}
			return nil
		}(fpath)
		if err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := tmpf.Close(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

func distanceMatrix(measure string, data []string) ([]float64, error) {
	if len(data) < 2 {
		return nil, errors.Errorf("need at least two files, got %d", len(data))
	}
	cacher := make(map[string]float64)

	n := len(data)
	mat := make([]float64, 0, n*(n-1)/2)
	for i, dx := range data[:n-1] {
		for _, dy := range data[i+1:] {
			dist, err := distance(cacher, measure, dx, dy)
			if err != nil {
				return nil, errors.Wrap(err, "")
			}
			mat = append(mat, dist)
			log.Infof("%q-%q: %f", dx, dy, dist)
		}
	}
	return mat, nil
}

func listFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data = append(data, filepath.Join(dir, e.Name()))
	}
	return data, nil
}
