/*
Package grammar contains the core of the transformation grammar: terms,
operations, transforms and the validation problem model.

Operations consume an ordered list of terms and compute a typed result. They
never fail with a Go error for data problems; instead each operation collects
ValidationProblems and only calculates when none of them is an error.

# Lifecycle

Every operation is built on BaseOperation, which drives a small state machine:

	Unvalidated --Validate()--> Valid   --Result()--> calculate once, memoize
	                        \-> Invalid --Result()--> no value
	any mutation (term added/removed/replaced or a term value change) --> Unvalidated

Because an Operation is itself a Term, operations can feed other operations and
form a DAG. Cycles can be built but are reported as structural errors when the
operation is validated.

# Kinds

A concrete operation kind only supplies the Kind hooks (category, name,
description, Validate and Calculate); caching, invalidation and problem
collection are inherited from BaseOperation. See package operation for the
reference Add kind and package registry for kind discovery.

Operations and transforms are not safe for concurrent use.
*/
package grammar
