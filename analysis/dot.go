package analysis

import (
	"fmt"
	"io"

	"github.com/aclements/go-moremath/graph"
	"github.com/aclements/go-moremath/graph/graphout"

	"omibyte.io/rtic/app"
)

// WriteDot writes the access graph in Graphviz form. Tasks point at the resources they lock.
func (an *Analysis) WriteDot(w io.Writer, a *app.App) error {
	index := map[string]int{}
	labels := make([]string, 0, len(a.Tasks)+len(a.Resources))
	for _, t := range a.Tasks {
		index[t.Name] = len(labels)
		labels = append(labels, fmt.Sprintf("%s@%d", t.Name, t.Priority))
	}
	for _, r := range a.Resources {
		labels = append(labels, fmt.Sprintf("%s (ceiling=%d)", r.Name, an.Ceilings[r.Name]))
	}

	g := make(graph.IntGraph, len(labels))
	for i, r := range a.Resources {
		node := len(a.Tasks) + i
		for _, accessor := range r.Accessors {
			task := index[accessor]
			g[task] = append(g[task], node)
		}
	}

	dot := graphout.Dot{
		Name:  a.Config.Name,
		Label: func(node int) string { return labels[node] },
		NodeAttrs: func(node int) []graphout.DotAttr {
			if node >= len(a.Tasks) {
				return []graphout.DotAttr{{Name: "shape", Val: "box"}}
			}
			return nil
		},
	}
	return dot.Fprint(w, g)
}
