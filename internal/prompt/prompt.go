// Package prompt asks a single yes/no question with a hard deadline.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultTimeout is how long Confirm waits before taking the default answer
const DefaultTimeout = 15 * time.Second

// Answer is the outcome of a Confirm call
type Answer struct {
	Yes      bool
	TimedOut bool // true when the default was used because no line arrived in time
	Raw      string
}

// Gate decides whether an optional step should run
type Gate interface {
	Confirm(ctx context.Context, question string) Answer
}

// Confirm writes question to out and waits for one line on in. "y" or "yes"
// in any case answers yes and any other line answers no. On timeout, EOF,
// read error or ctx cancellation it returns def with TimedOut set.
//
// The reader goroutine may outlive the call when in never delivers a line;
// for os.Stdin that is the same trade-off as a daemon input thread.
func Confirm(ctx context.Context, in io.Reader, out io.Writer, question string, timeout time.Duration, def bool) Answer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if out != nil {
		defLabel := "N"
		if def {
			defLabel = "Y"
		}
		fmt.Fprintf(out, "%s (Y/N) [Defaults to %s in %s]: ", question, defLabel, timeout)
	}

	lines := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			close(lines)
			return
		}
		lines <- line
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case line, ok := <-lines:
		if !ok {
			return Answer{Yes: def, TimedOut: true}
		}
		raw := strings.TrimSpace(line)
		switch strings.ToUpper(raw) {
		case "Y", "YES":
			return Answer{Yes: true, Raw: raw}
		default:
			return Answer{Yes: false, Raw: raw}
		}
	case <-timer.C:
		if out != nil {
			fmt.Fprintf(out, "\n%s timeout reached, using default.\n", timeout)
		}
		return Answer{Yes: def, TimedOut: true}
	case <-ctx.Done():
		return Answer{Yes: def, TimedOut: true}
	}
}

// StreamGate is a Gate backed by a reader/writer pair such as stdin/stderr
type StreamGate struct {
	In      io.Reader
	Out     io.Writer
	Timeout time.Duration
	Default bool
}

func (g *StreamGate) Confirm(ctx context.Context, question string) Answer {
	return Confirm(ctx, g.In, g.Out, question, g.Timeout, g.Default)
}

// FixedGate always returns the same answer without prompting
type FixedGate bool

func (g FixedGate) Confirm(context.Context, string) Answer {
	return Answer{Yes: bool(g)}
}
