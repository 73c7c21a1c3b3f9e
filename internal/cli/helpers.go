package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/polyglotter/internal/presentation/tui"
	"github.com/aretw0/polyglotter/pkg/grammar"
)

// ErrInvalid is returned when at least one evaluated transform has error problems.
var ErrInvalid = errors.New("transform has validation errors")

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}
	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sc.sigCh)
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
		}
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// writeReports renders reports as JSON, as glamour markdown on a terminal or
// as a plain colored summary otherwise.
func writeReports(w io.Writer, reports []*grammar.Report, opts Options) error {
	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(reports) == 1 {
			return enc.Encode(reports[0])
		}
		return enc.Encode(reports)
	}

	if f, ok := w.(*os.File); ok && !opts.Plain && tui.IsTerminal(f) {
		render := tui.NewRenderer(tui.Width(f, 100))
		for _, r := range reports {
			out, err := render(tui.ReportMarkdown(r))
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
		}
		return nil
	}

	for _, r := range reports {
		if err := tui.WriteReport(w, r); err != nil {
			return err
		}
	}
	return nil
}

func anyInvalid(reports []*grammar.Report) bool {
	for _, r := range reports {
		if r.HasErrors() {
			return true
		}
	}
	return false
}
