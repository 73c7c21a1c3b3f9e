/*
Package observability turns operation lifecycle events into metrics and logs.

Both helpers return grammar.Hooks, so they compose with grammar.ChainHooks
and are installed on a transform like any other hook set:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := grammar.ChainHooks(metrics.Hooks(), observability.LoggingHooks(logger))
	tr.SetHooks(hooks)
*/
package observability
