/*
Package polyglotter evaluates typed expression transforms.

A transform is a small dependency graph: terms carry values, operations
compute over an ordered list of terms, and an operation is itself a term that
other operations can consume. Every operation validates its inputs before it
calculates, memoizes its result and drops it again when one of its inputs
changes. Problems found by validation are data (see grammar.ValidationProblem),
never panics.

# Usage

Transforms are usually declared in YAML, JSON or HCL files and loaded through
the Engine:

	eng := polyglotter.New(polyglotter.WithLogger(logger))

	tr, err := eng.Load(ctx, "pricing.yaml")
	if err != nil {
		log.Fatal(err)
	}

	report, err := eng.Evaluate(ctx, tr.ID())
	if err != nil {
		log.Fatal(err)
	}
	for _, op := range report.Operations {
		fmt.Println(op.ID, op.Value, op.State)
	}

Terms declared with a key instead of a literal value are bound to a
ports.TermSource (see pkg/adapters/memory and pkg/adapters/redis). Refresh
pulls new values from the source; Watch does it every time the source
signals a change.

# Packages

  - pkg/grammar: terms, operations, transforms and validation problems.
  - pkg/operation: the built-in operation kinds.
  - pkg/registry: kind name to constructor mapping.
  - pkg/definition: declarative transform files.
  - pkg/dsl: fluent construction of definitions in Go.
  - pkg/observability: lifecycle logging and prometheus metrics.
*/
package polyglotter
