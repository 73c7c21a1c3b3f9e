package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/polyglotter"
	"github.com/aretw0/polyglotter/internal/logging"
	"github.com/aretw0/polyglotter/pkg/adapters/memory"
	"github.com/aretw0/polyglotter/pkg/adapters/redis"
	"github.com/aretw0/polyglotter/pkg/grammar"
	"github.com/aretw0/polyglotter/pkg/ports"
)

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to keep Stdout for reports).
func createLogger(opts Options) (*slog.Logger, error) {
	if !opts.Debug {
		return logging.NewNop(), nil
	}
	format, err := logging.ParseFormat(opts.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWriter(os.Stderr, slog.LevelDebug, format), nil
}

// parseValues turns key=value pairs into typed term values.
func parseValues(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q: expected key=value", pair)
		}
		var v any
		if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
			return nil, fmt.Errorf("invalid value for %q: %w", key, err)
		}
		values[key] = v
	}
	return values, nil
}

// createSource builds the term source selected by opts. The returned close
// function releases connections.
func createSource(ctx context.Context, opts Options) (ports.TermStore, func() error, error) {
	values, err := parseValues(opts.Values)
	if err != nil {
		return nil, nil, err
	}

	if opts.RedisURL == "" {
		return memory.NewStore(values), func() error { return nil }, nil
	}

	var ropts []redis.Option
	if opts.RedisPrefix != "" {
		ropts = append(ropts, redis.WithPrefix(opts.RedisPrefix))
	}
	store, err := redis.NewFromURL(opts.RedisURL, ropts...)
	if err != nil {
		return nil, nil, err
	}
	for key, v := range values {
		if err := store.Put(ctx, key, v); err != nil {
			store.Close()
			return nil, nil, fmt.Errorf("seed %q: %w", key, err)
		}
	}
	return store, store.Close, nil
}

// createEngine initializes an engine with standard CLI conventions and loads
// every definition file in paths.
func createEngine(ctx context.Context, opts Options, logger *slog.Logger, paths []string, extra ...polyglotter.Option) (*polyglotter.Engine, []grammar.Identifier, func() error, error) {
	source, closeSource, err := createSource(ctx, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	engineOpts := append([]polyglotter.Option{
		polyglotter.WithLogger(logger),
		polyglotter.WithTermSource(source),
	}, extra...)
	eng := polyglotter.New(engineOpts...)

	ids := make([]grammar.Identifier, 0, len(paths))
	for _, path := range paths {
		tr, err := eng.Load(ctx, path)
		if err != nil {
			closeSource()
			return nil, nil, nil, fmt.Errorf("%s: %w", path, err)
		}
		ids = append(ids, tr.ID())
	}
	return eng, ids, closeSource, nil
}
