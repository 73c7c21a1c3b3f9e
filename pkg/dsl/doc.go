/*
Package dsl provides a Go DSL for programmatically constructing transforms.

It is the code-first twin of definition files: the builder produces a
definition.Definition, so transforms written in Go and transforms loaded
from YAML or HCL go through the same validation and assembly.

Example usage:

	b := dsl.New("pricing").Describe("Order totals")

	b.Term("price").Value(10)
	b.Term("rate").Key("tax-rate").Type("number")

	b.Operation("total").
		Add("price", "rate")

	tr, err := b.Build(ctx, operation.NewRegistry(), definition.WithSource(store))
*/
package dsl
