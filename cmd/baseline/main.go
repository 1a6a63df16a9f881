package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/maxrand/go/pkg/api"
	"github.com/maxrand/go/pkg/cli"
	"github.com/maxrand/go/pkg/client"
	"github.com/maxrand/go/pkg/maxorder"
	"github.com/maxrand/go/pkg/probspec"
	"github.com/maxrand/go/pkg/sweep"
)

func main() {
	args := cli.Parse()
	ctx := context.Background()

	spec, n, err := args.Spec(ctx)
	if err != nil {
		fail(err)
	}

	var out any
	if args.Remote != "" {
		out, err = runRemote(ctx, args, spec, n)
	} else {
		out, err = runLocal(args, spec, n)
	}
	if err != nil {
		fail(err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)
}

func runLocal(args cli.Args, spec probspec.Spec, n int) (any, error) {
	if err := maxorder.CheckT(args.T); err != nil {
		return nil, err
	}
	d, err := maxorder.New(n, spec)
	if err != nil {
		return nil, err
	}
	switch args.Cmd {
	case cli.CmdPValue:
		return map[string]any{"n": n, "t": args.T, "accuracy": args.Acc,
			"p_value": d.PValue(args.Acc, args.T)}, nil
	case cli.CmdPMF:
		return map[string]any{"n": n, "t": args.T, "num_correct": args.NumCorrect,
			"pmf": d.PMF(args.NumCorrect, args.T)}, nil
	case cli.CmdCDF:
		return map[string]any{"n": n, "t": args.T, "num_correct": args.NumCorrect,
			"cdf": d.F(args.NumCorrect, args.T)}, nil
	case cli.CmdSweep:
		return map[string]any{"n": n, "points": sweep.Run(d, sweep.TGrid(args.T))}, nil
	default:
		return map[string]any{"n": n, "t": args.T, "baseline": d.Baseline(args.T)}, nil
	}
}

func runRemote(ctx context.Context, args cli.Args, spec probspec.Spec, n int) (any, error) {
	wireSpec, err := api.SpecFrom(spec)
	if err != nil {
		return nil, err
	}
	c := client.New(args.Remote, os.Getenv("MAXRAND_TOKEN"))
	base := api.BaselineRequest{N: n, T: args.T, Spec: wireSpec}
	switch args.Cmd {
	case cli.CmdPValue:
		return c.PValue(ctx, api.PValueRequest{BaselineRequest: base, Accuracy: args.Acc})
	case cli.CmdPMF:
		return c.PMF(ctx, api.PointRequest{BaselineRequest: base, NumCorrect: args.NumCorrect})
	case cli.CmdCDF:
		return c.CDF(ctx, api.PointRequest{BaselineRequest: base, NumCorrect: args.NumCorrect})
	case cli.CmdSweep:
		return c.Sweep(ctx, api.SweepRequest{BaselineRequest: base})
	default:
		return c.Baseline(ctx, base)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err.Error())
	os.Exit(1)
}
