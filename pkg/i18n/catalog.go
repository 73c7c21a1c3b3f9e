// Package i18n provides the message catalog used for operation names,
// descriptions and validation messages.
//
// A Catalog maps message keys to fmt format strings. Lookups are total: an
// unknown key renders as the key followed by its arguments, so callers never
// receive an empty string.
package i18n

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Message keys of the default catalog.
const (
	AddOperationName        = "addOperationName"
	AddOperationDescription = "addOperationDescription"
	AddOperationHasNoTerms  = "addOperationHasNoTerms"
	InvalidTermCount        = "invalidTermCount"
	InvalidTermType         = "invalidTermType"
	CyclicDependency        = "cyclicDependency"
	UndefinedTerm           = "undefinedTerm"
)

//go:embed messages.yaml
var defaultMessages []byte

// Catalog holds localized message templates.
type Catalog struct {
	mu       sync.RWMutex
	messages map[string]string
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{messages: make(map[string]string)}
}

// Parse builds a catalog from a YAML document of key/template pairs.
func Parse(data []byte) (*Catalog, error) {
	c := New()
	if err := c.Merge(data); err != nil {
		return nil, err
	}
	return c, nil
}

// Merge adds (or overrides) the templates found in the YAML document.
func (c *Catalog) Merge(data []byte) error {
	raw := make(map[string]string)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse message catalog: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, tmpl := range raw {
		c.messages[key] = tmpl
	}
	return nil
}

// Set registers a single template.
func (c *Catalog) Set(key, template string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[key] = template
}

// Text renders the message registered under key with the given arguments.
func (c *Catalog) Text(key string, args ...any) string {
	c.mu.RLock()
	tmpl, ok := c.messages[key]
	c.mu.RUnlock()

	if !ok {
		if len(args) == 0 {
			return key
		}
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, fmt.Sprint(a))
		}
		return key + ": " + strings.Join(parts, ", ")
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

var defaultCatalog = mustParseDefault()

func mustParseDefault() *Catalog {
	c, err := Parse(defaultMessages)
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded catalog is invalid: %v", err))
	}
	return c
}

// Default returns the process-wide catalog seeded with the embedded messages.
func Default() *Catalog {
	return defaultCatalog
}

// Text renders a message from the default catalog.
func Text(key string, args ...any) string {
	return defaultCatalog.Text(key, args...)
}
