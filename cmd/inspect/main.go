package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/propwatch/propwatch/notify"
	"github.com/propwatch/propwatch/pathspec"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:      "inspect",
		Usage:     "Parse observation path expressions and print their normalized segments",
		ArgsUsage: "PATH [PATH...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "shape",
				Usage: "notifier shape of the observed values (emitter, changed-only or plain); also prints strategy resolution",
			},
		},
		Action: inspect,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func inspect(ctx context.Context, cmd *cli.Command) error {
	exprs := cmd.Args().Slice()
	if len(exprs) == 0 {
		return fmt.Errorf("at least one path expression is required")
	}

	var shapeType reflect.Type
	if shape := cmd.String("shape"); shape != "" {
		t, err := shapeSample(shape)
		if err != nil {
			return err
		}
		shapeType = t
	}

	for _, expr := range exprs {
		path, err := pathspec.Parse(expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: rejected: %v\n", expr, err)
			continue
		}

		fmt.Printf("%s  (canonical %s, fingerprint %016x)\n", expr, path, path.Fingerprint())
		tbl := tablewriter.NewWriter(os.Stdout)
		tbl.SetHeader([]string{"#", "kind", "segment"})
		for i, seg := range path.Segments() {
			tbl.Append([]string{strconv.Itoa(i), segmentKind(seg), seg.String()})
		}
		tbl.Render()
	}

	if shapeType != nil {
		fmt.Printf("strategy resolution for %v\n", shapeType)
		tbl := tablewriter.NewWriter(os.Stdout)
		tbl.SetHeader([]string{"timing", "strategy", "notes"})
		reg := notify.DefaultRegistry()
		for _, timing := range []notify.Timing{notify.After, notify.Before} {
			strategy, notes := resolveShape(reg, shapeType, timing)
			tbl.Append([]string{timing.String(), strategy, notes})
		}
		tbl.Render()
	}
	return nil
}

// emitterShape broadcasts on both timings.
type emitterShape struct {
	notify.Emitter
}

// changedOnlyShape exposes only the after-mutation hook; before-timing
// subscriptions must land on the fallback band.
type changedOnlyShape struct {
	e notify.Emitter
}

func (s *changedOnlyShape) SubscribeChanged(fn func(property string)) (stop func()) {
	return s.e.SubscribeChanged(fn)
}

// plainShape carries no notification mechanism at all.
type plainShape struct{}

func shapeSample(shape string) (reflect.Type, error) {
	switch shape {
	case "emitter":
		return reflect.TypeOf(&emitterShape{}), nil
	case "changed-only":
		return reflect.TypeOf(&changedOnlyShape{}), nil
	case "plain":
		return reflect.TypeOf(&plainShape{}), nil
	default:
		return nil, fmt.Errorf("unknown shape %q (want emitter, changed-only or plain)", shape)
	}
}

func resolveShape(reg *notify.Registry, t reflect.Type, timing notify.Timing) (strategy, notes string) {
	chosen, err := reg.Select(t, timing)
	if err != nil {
		return "-", err.Error()
	}
	if fallback, _ := reg.Fallback(t, timing); fallback {
		return chosen.Name(), "fallback band: emits once, then never again"
	}
	return chosen.Name(), ""
}

func segmentKind(seg pathspec.Segment) string {
	switch {
	case seg.Length:
		return "length"
	case seg.Indexer:
		return "indexer"
	default:
		return "member"
	}
}
