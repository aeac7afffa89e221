package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/herohde/kestrel/pkg/engine"
	"github.com/herohde/kestrel/pkg/engine/console"
	"github.com/herohde/kestrel/pkg/engine/uci"
	"github.com/herohde/kestrel/pkg/eval"
	"github.com/herohde/kestrel/pkg/search"
	"github.com/seekerror/logw"
)

var (
	hash  = flag.Uint("hash", 128, "Transposition table size in MiB")
	depth = flag.Uint("depth", 0, "Default search depth limit (zero if unlimited)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: kestrel [options]

KESTREL is a UCI chess engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	ev := eval.NewTapered()
	s := search.AlphaBeta{Eval: ev}
	e := engine.New(ctx, "kestrel", "herohde", s,
		engine.WithOptions(engine.Options{Depth: *depth, Hash: *hash}),
	)

	in, errc := engine.ReadStdinLines(ctx)
	switch <-in {
	case uci.ProtocolName:
		// Use UCI protocol.

		driver, out := uci.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, eval.NewTapered(), in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}

	select {
	case err, ok := <-errc:
		if ok && err != nil {
			logw.Exitf(ctx, "Input failed: %v", err)
		}
	default:
	}
}
