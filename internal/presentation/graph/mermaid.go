package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/polyglotter/pkg/grammar"
)

// Overlay contains evaluation data to visualize on the graph.
type Overlay struct {
	States map[grammar.Identifier]grammar.State
	Values map[grammar.Identifier]any
}

// OverlayFromReport collects operation states and values from an evaluation report.
func OverlayFromReport(r *grammar.Report) *Overlay {
	o := &Overlay{
		States: make(map[grammar.Identifier]grammar.State),
		Values: make(map[grammar.Identifier]any),
	}
	if r == nil {
		return o
	}
	for _, op := range r.Operations {
		o.States[op.ID] = op.State
		if op.HasValue {
			o.Values[op.ID] = op.Value
		}
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the dependency graph of a
// transform. Edges point from a term to the operation consuming it.
// Shapes:
// - Value term: [/Parallelogram/]
// - Operation: [[Subroutine]]
// - Missing term: ((Circle)), reached by a dotted edge
// Overlay styles (valid/invalid/unvalidated) are applied if provided.
func GenerateMermaid(t *grammar.Transform, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	declared := make(map[grammar.Identifier]bool)
	declare := func(term grammar.Term) {
		id := term.ID()
		if declared[id] {
			return
		}
		declared[id] = true
		safeID := sanitizeMermaidID(id.String())
		if op, ok := term.(grammar.Operation); ok {
			label := fmt.Sprintf("%s <br/> %s", id.String(), op.Name())
			if overlay != nil {
				if v, ok := overlay.Values[id]; ok {
					label += fmt.Sprintf(" = %v", v)
				}
			}
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", safeID, escapeLabel(label))
			return
		}
		label := fmt.Sprintf("%s = %v", id.String(), term.Value())
		fmt.Fprintf(&sb, "    %s[/\"%s\"/]\n", safeID, escapeLabel(label))
	}

	for _, term := range t.Terms() {
		declare(term)
	}
	ops := t.Operations()
	for _, op := range ops {
		declare(op)
	}

	for _, op := range ops {
		safeOp := sanitizeMermaidID(op.ID().String())
		for i, term := range op.Terms() {
			if term == nil {
				missing := fmt.Sprintf("%s_missing_%d", safeOp, i)
				fmt.Fprintf(&sb, "    %s((\"?\"))\n", missing)
				fmt.Fprintf(&sb, "    %s -.-> %s\n", missing, safeOp)
				continue
			}
			declare(term)
			fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(term.ID().String()), safeOp)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef valid fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef unvalidated fill:#eceff1,stroke:#607d8b,stroke-dasharray:4,color:#000;\n")
		for _, op := range ops {
			state, ok := overlay.States[op.ID()]
			if !ok {
				continue
			}
			fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(op.ID().String()), strings.ToLower(state.String()))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(
		".", "_",
		"-", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		"{", "_",
		"}", "_",
		" ", "_",
	).Replace(id)
}
