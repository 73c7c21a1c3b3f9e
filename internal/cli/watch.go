package cli

import (
	"io"

	"github.com/aretw0/polyglotter"
	"github.com/aretw0/polyglotter/internal/presentation/tui"
	"github.com/aretw0/polyglotter/pkg/grammar"
)

// RunWatch evaluates the definition files and re-renders the reports every
// time the term source changes, until ctx is cancelled.
func RunWatch(ctx *SignalContext, opts Options, paths []string, w io.Writer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, ids, closeSource, err := createEngine(ctx, opts, logger, paths)
	if err != nil {
		return err
	}
	defer closeSource()

	if !opts.JSON {
		tui.PrintBanner(w, polyglotter.Version)
	}

	render := func() error {
		reports := make([]*grammar.Report, 0, len(ids))
		for _, id := range ids {
			r, err := eng.Evaluate(ctx, id)
			if err != nil {
				return err
			}
			reports = append(reports, r)
		}
		return writeReports(w, reports, opts)
	}
	if err := render(); err != nil {
		return err
	}

	changes, err := eng.Watch(ctx)
	if err != nil {
		return err
	}
	logger.Info("watching term source", "transforms", len(ids))

	for n := range changes {
		if n == 0 {
			continue
		}
		if !opts.JSON {
			printSystemMessage(w, "%d term(s) changed", n)
		}
		if err := render(); err != nil {
			return err
		}
	}

	if sig := ctx.Signal(); sig != nil && !opts.JSON {
		printSystemMessage(w, "Stopped (%s).", sig)
	}
	return nil
}
