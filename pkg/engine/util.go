package engine

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/seekerror/logw"
)

// ReadStdinLines reads stdin lines into a chan. Async. The channel is closed
// on EOF or read failure; a failure is reported on the error channel so the
// process can exit nonzero.
func ReadStdinLines(ctx context.Context) (<-chan string, <-chan error) {
	ret := make(chan string, 1)
	errc := make(chan error, 1)
	go func() {
		defer close(ret)
		defer close(errc)

		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			logw.Debugf(ctx, "<< %v", scanner.Text())
			ret <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			errc <- err
		}
	}()
	return ret, errc
}

// WriteStdoutLines writes lines from the given chan to stdout.
func WriteStdoutLines(ctx context.Context, out <-chan string) {
	for line := range out {
		logw.Debugf(ctx, ">> %v", line)
		_, _ = fmt.Fprintln(os.Stdout, line)
	}
}
