package polyglotter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/aretw0/polyglotter/internal/presentation/graph"
	"github.com/aretw0/polyglotter/pkg/definition"
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/observability"
	"github.com/aretw0/polyglotter/pkg/operation"
	"github.com/aretw0/polyglotter/pkg/ports"
	"github.com/aretw0/polyglotter/pkg/registry"
)

var (
	// ErrUnknownTransform is returned when no loaded transform has the requested id.
	ErrUnknownTransform = errors.New("unknown transform")
	// ErrNotWatchable is returned by Watch when the term source cannot signal changes.
	ErrNotWatchable = errors.New("term source does not support watching")
)

// Engine is the high-level entry point of the library. It owns a set of
// transforms built from definitions and serializes every access to them.
type Engine struct {
	mu         sync.Mutex
	transforms map[grammar.Identifier]*grammar.Transform
	order      []grammar.Identifier

	registry *registry.Registry
	source   ports.TermSource
	metrics  *observability.Metrics
	hooks    grammar.Hooks
	logger   *slog.Logger

	watchMu  sync.Mutex
	watching *watchLoop
	watchers map[chan int]struct{}
}

// watchLoop is the single source watch shared by every Watch caller.
type watchLoop struct {
	cancel context.CancelFunc
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRegistry replaces the default registry of operation kinds.
func WithRegistry(reg *registry.Registry) Option {
	return func(e *Engine) {
		e.registry = reg
	}
}

// WithTermSource binds keyed definition terms to a host model.
func WithTermSource(source ports.TermSource) Option {
	return func(e *Engine) {
		e.source = source
	}
}

// WithHooks registers lifecycle hooks on every transform the engine builds.
func WithHooks(hooks grammar.Hooks) Option {
	return func(e *Engine) {
		e.hooks = grammar.ChainHooks(e.hooks, hooks)
	}
}

// WithMetrics records lifecycle metrics for every transform the engine builds.
func WithMetrics(m *observability.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine. Without options it knows the built-in operation
// kinds, has no term source and logs nothing.
func New(opts ...Option) *Engine {
	e := &Engine{
		transforms: make(map[grammar.Identifier]*grammar.Transform),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = operation.NewRegistry()
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	hooks := []grammar.Hooks{observability.LoggingHooks(e.logger)}
	if e.metrics != nil {
		hooks = append(hooks, e.metrics.Hooks())
	}
	e.hooks = grammar.ChainHooks(append(hooks, e.hooks)...)
	return e
}

// Registry returns the operation kinds known to the engine.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Load reads a definition file (YAML, JSON or HCL) and builds it.
func (e *Engine) Load(ctx context.Context, path string) (*grammar.Transform, error) {
	def, err := definition.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return e.Build(ctx, def)
}

// LoadBytes parses an in-memory definition and builds it.
func (e *Engine) LoadBytes(ctx context.Context, data []byte, format definition.Format) (*grammar.Transform, error) {
	def, err := definition.Parse(data, format)
	if err != nil {
		return nil, err
	}
	return e.Build(ctx, def)
}

// Build assembles a transform from def and makes it available by id.
// A transform with the same id is replaced.
func (e *Engine) Build(ctx context.Context, def *definition.Definition) (*grammar.Transform, error) {
	tr, err := definition.Build(ctx, def, e.registry,
		definition.WithSource(e.source),
		definition.WithHooks(e.hooks),
	)
	if err != nil {
		e.logger.ErrorContext(ctx, "transform_build_failed", "error", err)
		return nil, err
	}
	e.add(ctx, tr)
	return tr, nil
}

// Add makes a transform built elsewhere (for example by hand or with the dsl
// package) available by id. The engine hooks are chained after its own.
func (e *Engine) Add(ctx context.Context, tr *grammar.Transform) {
	tr.SetHooks(grammar.ChainHooks(tr.Hooks(), e.hooks))
	e.add(ctx, tr)
}

func (e *Engine) add(ctx context.Context, tr *grammar.Transform) {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := tr.ID()
	if old, exists := e.transforms[id]; !exists {
		e.order = append(e.order, id)
	} else if old != tr {
		e.release(ctx, old)
	}
	e.transforms[id] = tr
	e.logger.InfoContext(ctx, "transform_loaded",
		"transform", id.String(),
		"operations", len(tr.Operations()),
		"terms", len(tr.Terms()),
	)
}

// Remove drops a transform and releases its bound terms. It reports whether
// it was loaded.
func (e *Engine) Remove(id grammar.Identifier) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transforms[id]
	if !ok {
		return false
	}
	e.release(context.Background(), tr)
	delete(e.transforms, id)
	e.order = slices.DeleteFunc(e.order, func(x grammar.Identifier) bool { return x == id })
	return true
}

// release unbinds the source terms of a transform leaving the engine.
func (e *Engine) release(ctx context.Context, tr *grammar.Transform) {
	if e.source == nil {
		return
	}
	n := e.source.Release(tr.Terms()...)
	if n > 0 {
		e.logger.DebugContext(ctx, "terms_released", "transform", tr.ID().String(), "terms", n)
	}
}

// Transforms returns the ids of the loaded transforms in load order.
func (e *Engine) Transforms() []grammar.Identifier {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.order)
}

// Transform finds a loaded transform. The returned value is not safe for
// concurrent use with the engine.
func (e *Engine) Transform(id grammar.Identifier) (*grammar.Transform, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	tr, ok := e.transforms[id]
	return tr, ok
}

// Evaluate computes every operation of a loaded transform.
func (e *Engine) Evaluate(ctx context.Context, id grammar.Identifier) (*grammar.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transforms[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownTransform)
	}
	report := grammar.Evaluate(tr)
	e.logger.DebugContext(ctx, "transform_evaluated",
		"transform", id.String(),
		"problems", len(report.Problems),
		"valid", !report.HasErrors(),
	)
	return report, nil
}

// EvaluateAll evaluates every loaded transform in load order.
func (e *Engine) EvaluateAll(ctx context.Context) []*grammar.Report {
	ids := e.Transforms()
	reports := make([]*grammar.Report, 0, len(ids))
	for _, id := range ids {
		r, err := e.Evaluate(ctx, id)
		if err != nil {
			continue // removed concurrently
		}
		reports = append(reports, r)
	}
	return reports
}

// Mermaid renders the dependency graph of a loaded transform with the
// outcome of its evaluation.
func (e *Engine) Mermaid(ctx context.Context, id grammar.Identifier) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tr, ok := e.transforms[id]
	if !ok {
		return "", fmt.Errorf("%s: %w", id, ErrUnknownTransform)
	}
	return graph.GenerateMermaid(tr, graph.OverlayFromReport(grammar.Evaluate(tr))), nil
}

// Refresh pulls current values from the term source into bound terms. It is
// a no-op returning 0 when the source cannot refresh.
func (e *Engine) Refresh(ctx context.Context) (int, error) {
	r, ok := e.source.(ports.Refresher)
	if !ok {
		return 0, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := r.Refresh(ctx)
	if err != nil {
		e.logger.ErrorContext(ctx, "refresh_failed", "error", err)
		return n, err
	}
	e.logger.DebugContext(ctx, "terms_refreshed", "changed", n)
	return n, nil
}

// Watch refreshes bound terms every time the term source signals a change.
// The returned channel receives the number of changed terms after each
// refresh and is closed when ctx is done or the source stops signalling.
// Concurrent callers share one refresh per signal and all receive its count.
// Counts pile up while a receiver is slow.
func (e *Engine) Watch(ctx context.Context) (<-chan int, error) {
	w, ok := e.source.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}

	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if e.watching == nil {
		wctx, cancel := context.WithCancel(context.Background())
		changes, err := w.Watch(wctx)
		if err != nil {
			cancel()
			return nil, err
		}
		loop := &watchLoop{cancel: cancel}
		e.watching = loop
		go e.runWatch(wctx, loop, changes)
	}

	out := make(chan int, 1)
	if e.watchers == nil {
		e.watchers = make(map[chan int]struct{})
	}
	e.watchers[out] = struct{}{}

	go func() {
		<-ctx.Done()
		e.unwatch(out)
	}()
	return out, nil
}

func (e *Engine) runWatch(ctx context.Context, loop *watchLoop, changes <-chan struct{}) {
	defer func() {
		e.watchMu.Lock()
		defer e.watchMu.Unlock()
		if e.watching != loop {
			return
		}
		e.watching = nil
		for ch := range e.watchers {
			delete(e.watchers, ch)
			close(ch)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			n, err := e.Refresh(ctx)
			if err != nil {
				continue
			}
			e.broadcast(n)
		}
	}
}

// broadcast delivers n to every watcher without blocking. A count still
// waiting in a watcher's buffer is merged with n.
func (e *Engine) broadcast(n int) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	for ch := range e.watchers {
		select {
		case ch <- n:
		default:
			pending := n
			select {
			case old := <-ch:
				pending += old
			default:
			}
			ch <- pending
		}
	}
}

// unwatch drops a watcher and stops the source watch after the last one.
func (e *Engine) unwatch(ch chan int) {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	if _, ok := e.watchers[ch]; !ok {
		return
	}
	delete(e.watchers, ch)
	close(ch)
	if len(e.watchers) == 0 && e.watching != nil {
		e.watching.cancel()
		e.watching = nil
	}
}
