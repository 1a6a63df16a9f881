package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/maxrand/go/internal/dataset"
	"github.com/maxrand/go/pkg/probspec"
)

type Command int

const (
	CmdBaseline Command = iota
	CmdPValue
	CmdPMF
	CmdCDF
	CmdSweep
)

type Args struct {
	Cmd        Command
	N          int
	T          int
	P          float64
	HasP       bool
	PS         string // comma-separated probabilities
	Labels     string // "2:50,5:50" label-count mapping
	LabelsFile string // path or URL, one label count per line
	Acc        float64
	NumCorrect float64
	Remote     string // base URL of a baseline server, empty for local compute
}

func Parse() Args {
	var (
		pvalue  = flag.Bool("pvalue", false, "p-value of -acc against the max of -t random classifiers")
		pmf     = flag.Bool("pmf", false, "pmf of the max at -k correct")
		cdf     = flag.Bool("cdf", false, "distribution function of the max at -k correct")
		swp     = flag.Bool("sweep", false, "baseline over a grid of classifier counts up to -t")
		n       = flag.Int("n", 0, "number of examples (inferred from -labels-file if 0)")
		t       = flag.Int("t", 1, "number of random classifiers")
		p       = flag.Float64("p", -1, "uniform chance-guessing probability")
		ps      = flag.String("ps", "", "comma-separated per-example probabilities")
		labels  = flag.String("labels", "", "label-count mapping, e.g. 2:50,5:50")
		lfile   = flag.String("labels-file", "", "file or URL with one label count per line")
		acc     = flag.Float64("acc", 0, "observed accuracy (for -pvalue)")
		k       = flag.Float64("k", 0, "number correct (for -pmf / -cdf)")
		remote  = flag.String("remote", "", "baseline server URL (compute locally if empty)")
	)
	flag.Parse()
	out := Args{
		N: *n, T: *t, P: *p, HasP: *p >= 0,
		PS: *ps, Labels: *labels, LabelsFile: *lfile,
		Acc: *acc, NumCorrect: *k, Remote: *remote,
	}
	switch {
	case *pvalue:
		out.Cmd = CmdPValue
	case *pmf:
		out.Cmd = CmdPMF
	case *cdf:
		out.Cmd = CmdCDF
	case *swp:
		out.Cmd = CmdSweep
	default:
		out.Cmd = CmdBaseline
	}
	return out
}

// Spec resolves the probability flags into a specification and the example
// count. Exactly one of -p, -ps, -labels, -labels-file must be given; n is
// inferred from -ps or -labels-file when omitted.
func (a Args) Spec(ctx context.Context) (probspec.Spec, int, error) {
	given := 0
	if a.HasP {
		given++
	}
	if a.PS != "" {
		given++
	}
	if a.Labels != "" {
		given++
	}
	if a.LabelsFile != "" {
		given++
	}
	if given != 1 {
		return nil, 0, fmt.Errorf("%w: give exactly one of -p, -ps, -labels, -labels-file", probspec.ErrUnrecognized)
	}

	switch {
	case a.HasP:
		if a.N <= 0 {
			return nil, 0, fmt.Errorf("-n is required with -p")
		}
		return probspec.Uniform(a.P), a.N, nil
	case a.PS != "":
		seq, err := parseFloats(a.PS)
		if err != nil {
			return nil, 0, err
		}
		n := a.N
		if n == 0 {
			n = len(seq)
		}
		return probspec.PerExample(seq), n, nil
	case a.Labels != "":
		if a.N <= 0 {
			return nil, 0, fmt.Errorf("-n is required with -labels")
		}
		lc, err := parseLabelCounts(a.Labels)
		if err != nil {
			return nil, 0, err
		}
		return lc, a.N, nil
	default:
		counts, err := dataset.Load(ctx, a.LabelsFile)
		if err != nil {
			return nil, 0, err
		}
		n := a.N
		if n == 0 {
			n = len(counts)
		}
		return dataset.Probabilities(counts), n, nil
	}
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad probability %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseLabelCounts(s string) (probspec.LabelCounts, error) {
	lc := probspec.LabelCounts{}
	for _, part := range strings.Split(s, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), ":", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("bad label-count entry %q, want labels:count", part)
		}
		k, err := strconv.Atoi(kv[0])
		if err != nil {
			return nil, fmt.Errorf("bad label count %q", kv[0])
		}
		v, err := strconv.Atoi(kv[1])
		if err != nil {
			return nil, fmt.Errorf("bad example count %q", kv[1])
		}
		lc[k] += v
	}
	return lc, nil
}
