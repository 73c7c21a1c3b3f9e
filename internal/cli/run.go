package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/polyglotter/pkg/definition"
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/operation"
	"github.com/aretw0/polyglotter/pkg/registry"
)

// RunEval loads the definition files, evaluates them and writes the reports.
// It returns ErrInvalid after writing when a transform has error problems.
func RunEval(ctx context.Context, opts Options, paths []string, w io.Writer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, ids, closeSource, err := createEngine(ctx, opts, logger, paths)
	if err != nil {
		return err
	}
	defer closeSource()

	reports := make([]*grammar.Report, 0, len(ids))
	for _, id := range ids {
		r, err := eng.Evaluate(ctx, id)
		if err != nil {
			return err
		}
		reports = append(reports, r)
	}
	if err := writeReports(w, reports, opts); err != nil {
		return err
	}
	if anyInvalid(reports) {
		return ErrInvalid
	}
	return nil
}

// RunValidate checks the structure, references, literal types and kinds of
// definition files. It needs no term source.
func RunValidate(paths []string, w io.Writer) error {
	reg := operation.NewRegistry()
	failed := false
	for _, path := range paths {
		def, err := definition.LoadFile(path)
		if err == nil {
			err = definition.Validate(def, reg)
		}
		if err != nil {
			failed = true
			fmt.Fprintf(w, "❌ %s\n%v\n", path, err)
			continue
		}
		fmt.Fprintf(w, "✅ %s (%d terms, %d operations)\n", path, len(def.Terms), len(def.Operations))
	}
	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// RunGraph writes the Mermaid dependency graph of each definition file.
func RunGraph(ctx context.Context, opts Options, paths []string, w io.Writer) error {
	logger, err := createLogger(opts)
	if err != nil {
		return err
	}
	eng, ids, closeSource, err := createEngine(ctx, opts, logger, paths)
	if err != nil {
		return err
	}
	defer closeSource()

	for _, id := range ids {
		chart, err := eng.Mermaid(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprint(w, chart)
	}
	return nil
}

// RunKinds lists the registered operation kinds.
func RunKinds(reg *registry.Registry, w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tCATEGORY\tNAME\tDESCRIPTION")
	for _, e := range reg.Kinds() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Kind, e.Category, e.Name, e.Description)
	}
	return tw.Flush()
}
