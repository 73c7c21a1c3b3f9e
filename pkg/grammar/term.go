package grammar

// GrammarPart is the capability shared by every addressable grammar entity.
type GrammarPart interface {
	// ID returns the unique part identifier.
	ID() Identifier
	// Name returns a localized part name.
	Name() string
	// Description returns a localized part description.
	Description() string
}

// Term is a named value source consumed by operations.
// Value may return nil for an unset term.
type Term interface {
	ID() Identifier
	Value() any
}

// Observable is implemented by terms whose value can change after creation.
// The callback receives the identifier of the term that changed.
type Observable interface {
	Subscribe(fn func(Identifier)) (cancel func())
}

// ValueTerm is a plain, mutable term.
type ValueTerm struct {
	id        Identifier
	value     any
	listeners listeners
}

// NewTerm creates a term holding value.
// It panics if id is the zero Identifier.
func NewTerm(id Identifier, value any) *ValueTerm {
	mustIdentify("term", id)
	return &ValueTerm{id: id, value: value}
}

// ID returns the term identifier.
func (t *ValueTerm) ID() Identifier { return t.id }

// Value returns the current value.
func (t *ValueTerm) Value() any { return t.value }

// Set replaces the value and notifies subscribers.
func (t *ValueTerm) Set(value any) {
	t.value = value
	t.listeners.notify(t.id)
}

// Subscribe registers fn to be called after every Set.
func (t *ValueTerm) Subscribe(fn func(Identifier)) func() {
	return t.listeners.add(fn)
}

type listener struct {
	seq int
	fn  func(Identifier)
}

// listeners is a small ordered subscriber list.
type listeners struct {
	next  int
	items []listener
}

func (l *listeners) add(fn func(Identifier)) func() {
	l.next++
	seq := l.next
	l.items = append(l.items, listener{seq: seq, fn: fn})
	return func() {
		for i, it := range l.items {
			if it.seq == seq {
				l.items = append(l.items[:i], l.items[i+1:]...)
				return
			}
		}
	}
}

func (l *listeners) notify(id Identifier) {
	// Callbacks may unsubscribe while we iterate.
	snapshot := make([]listener, len(l.items))
	copy(snapshot, l.items)
	for _, it := range snapshot {
		it.fn(id)
	}
}

func (l *listeners) len() int {
	return len(l.items)
}
