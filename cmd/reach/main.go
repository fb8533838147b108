// Command reach runs the points-to and reaching-definitions engine over
// a small built-in toy program and prints a Markdown report. It exists
// to exercise the engine end to end, since the real IR front end that
// would normally feed it is out of scope (see internal/toyir).
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/o2lab/reach/config"
	"github.com/o2lab/reach/internal/toyir"
	"github.com/o2lab/reach/pss"
	"github.com/o2lab/reach/rd"
	"github.com/o2lab/reach/report"
)

func main() {
	debug := flag.Bool("debug", false, "Prints debug messages.")
	help := flag.Bool("help", false, "Show all command-line options.")
	html := flag.Bool("html", false, "Render the report as HTML instead of Markdown.")
	flag.Parse()

	if *help {
		fmt.Println("Usage:")
		flag.PrintDefaults()
		return
	}
	if *debug {
		log.SetLevel(log.DebugLevel)
	}
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	opts := config.Default()

	ps, addrOfX, prog := buildDemoProgram()

	result, err := pss.Run(ps, pss.NewFieldInsensitive(), opts.PSSConfig())
	if err != nil {
		log.Fatalf("reach: running points-to analysis: %v", err)
	}

	oracle := toyir.NewOracle()
	oracle.Set(addrOfX, ps.Root())

	builder := rd.NewBuilder(toyir.DataLayout{}, oracle)
	rdGraph, err := builder.Build(prog)
	if err != nil {
		log.Fatalf("reach: building reaching-definitions graph: %v", err)
	}

	out := report.Markdown(result, rdGraph)
	if *html {
		out, err = report.HTML(out)
		if err != nil {
			log.Fatalf("reach: rendering HTML report: %v", err)
		}
	}

	fmt.Fprintln(os.Stdout, out)
}

// buildDemoProgram builds the smallest interesting program: a function
// that allocates x and stores its own address back into x (x = &x),
// then returns. It exercises the pss Alloc row and the rd builder's
// ALLOCA/STORE/RETURN dispatch on a single block.
func buildDemoProgram() (ps *pss.PointerSubgraph, addrOfX rd.Value, prog *toyir.Program) {
	xAlloca := toyir.NewAlloca("x")
	store := toyir.NewStore(xAlloca, toyir.Type{Size: 8})
	ret := toyir.NewReturn()

	mainFn := toyir.NewFunction("main")
	blk := mainFn.NewBlock()
	blk.AddInst(xAlloca)
	blk.AddInst(store)
	blk.AddInst(ret)

	prog = toyir.NewProgram()
	prog.SetMain(mainFn)

	ps = pss.NewPointerSubgraph()
	alloc := ps.NewNode(pss.Alloc)
	alloc.Name = "x"
	alloc.UserData = xAlloca
	ps.SetRoot(alloc)

	return ps, xAlloca, prog
}
