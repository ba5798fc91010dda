package graph

import (
	"fmt"
	"sort"
	"strings"
)

// DOT renders the compiled graph in Graphviz dot format for inspection
// and documentation. Output is deterministic: nodes and edges are sorted,
// so the same graph always renders the same text.
func (c *Compiled[S]) DOT() string {
	var b strings.Builder
	b.WriteString("digraph workflow {\n")
	b.WriteString("  rankdir=LR;\n")
	fmt.Fprintf(&b, "  %q [label=%q shape=doublecircle];\n", End, "END")
	for _, id := range c.NodeIDs() {
		if id == c.entry {
			fmt.Fprintf(&b, "  %q [shape=box style=bold];\n", id)
			continue
		}
		fmt.Fprintf(&b, "  %q [shape=box];\n", id)
	}

	froms := make([]string, 0, len(c.static))
	for from := range c.static {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		fmt.Fprintf(&b, "  %q -> %q;\n", from, c.static[from])
	}

	froms = froms[:0]
	for from := range c.conditional {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		cond := c.conditional[from]
		labels := make([]string, 0, len(cond.targets))
		for label := range cond.targets {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		for _, label := range labels {
			display := label
			if label == Default {
				display = "default"
			}
			fmt.Fprintf(&b, "  %q -> %q [label=%q style=dashed];\n", from, cond.targets[label], display)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
