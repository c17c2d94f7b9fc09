package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/propwatch/propwatch/notify"
	"github.com/propwatch/propwatch/observe"
)

var (
	depths   = []int{1, 2, 4, 8}
	fanouts  = []int{1, 10, 100}
	iters    = 1000
	replaces = 1000
)

type node struct {
	notify.Emitter
	Next  *node
	Value int
}

func (n *node) SetNext(next *node) {
	n.Next = next
	n.NotifyChanged("Next")
}

func (n *node) SetValue(v int) {
	n.Value = v
	n.NotifyChanged("Value")
}

func buildChain(depth int) (head, tail *node) {
	head = &node{}
	tail = head
	for i := 0; i < depth; i++ {
		next := &node{}
		tail.SetNext(next)
		tail = next
	}
	return head, tail
}

func chainExpr(depth int) string {
	var sb strings.Builder
	for i := 0; i < depth; i++ {
		sb.WriteString("Next.")
	}
	sb.WriteString("Value")
	return sb.String()
}

func main() {
	flag.Parse()

	f, err := os.Create("default.pgo")
	if err != nil {
		log.Fatal(err)
	}
	pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()

	log.Printf("warming up, %s mutations per cell", humanize.Comma(int64(iters)))

	benchmarkLeafMutation(true)
	benchmarkLinkReplacement(true)
}

func benchmarkLeafMutation(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Leaf Mutation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, depth := range depths {
		for _, fanout := range fanouts {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			o := observe.Default()
			head, tail := buildChain(depth)
			sink := 0
			for i := 0; i < fanout; i++ {
				stop, err := observe.Changed(o, head, chainExpr(depth), observe.Options{}, func(v int) {
					sink += v
				})
				if err != nil {
					log.Fatal(err)
				}
				defer stop()
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				tail.SetValue(i)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("mutate: depth %d * fanout %d", depth, fanout),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

func benchmarkLinkReplacement(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Intermediate Replacement")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, depth := range depths[1:] {
		for _, fanout := range fanouts {
			tach := tachymeter.New(&tachymeter.Config{Size: replaces})

			o := observe.Default()
			head, _ := buildChain(depth)
			sink := 0
			for i := 0; i < fanout; i++ {
				stop, err := observe.Changed(o, head, chainExpr(depth), observe.Options{}, func(v int) {
					sink += v
				})
				if err != nil {
					log.Fatal(err)
				}
				defer stop()
			}

			for i := 0; i < replaces; i++ {
				sub, subTail := buildChain(depth - 1)
				subTail.Value = i
				start := time.Now()
				head.SetNext(sub)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("replace: depth %d * fanout %d", depth, fanout),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
