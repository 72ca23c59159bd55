// Package analysis derives the static scheduling facts of an application: the ceiling of every
// shared resource, the dispatcher interrupt of every software priority and the groups of tasks
// that contend with each other.
package analysis

import (
	"errors"
	"fmt"
	"hash/fnv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"omibyte.io/rtic/app"
	"omibyte.io/rtic/pcp"
)

// NoAsyncLimit is the async priority limit of an application without software tasks.
const NoAsyncLimit = pcp.NoAsyncLimit

var ErrNotEnoughDispatchers = errors.New("not enough dispatchers")

type Analysis struct {
	// Ceilings maps each resource to the highest priority of its accessors.
	Ceilings map[string]pcp.Level

	// Exclusive lists the resources with a single accessor, sorted by name.
	Exclusive []string

	// Dispatchers maps each software task priority to its dispatcher interrupt.
	Dispatchers map[pcp.Level]string

	// MaxAsyncPriority is the highest software task priority, or NoAsyncLimit.
	MaxAsyncPriority pcp.Level

	// Groups are the sets of tasks and resources connected by sharing, each sorted by name.
	Groups [][]string

	// Access maps each task to the resources it accesses, in declaration order.
	Access map[string][]string
}

type nodeKind uint8

const (
	taskNode nodeKind = iota
	resourceNode
)

type accessNode struct {
	name     string
	kind     nodeKind
	priority pcp.Level
	id       int64
}

func (n *accessNode) ID() int64 {
	return n.id
}

func makeNode(kind nodeKind, name string, priority pcp.Level) *accessNode {
	hasher := fnv.New64()
	hasher.Write([]byte{byte(kind)})
	hasher.Write([]byte(name))
	return &accessNode{
		name:     name,
		kind:     kind,
		priority: priority,
		id:       int64(hasher.Sum64()),
	}
}

// Analyze computes the analysis of a validated application for a controller with levels up to
// maxLevel.
func Analyze(a *app.App, maxLevel pcp.Level) (*Analysis, error) {
	if err := a.CheckPriorities(maxLevel); err != nil {
		return nil, err
	}

	result := &Analysis{
		Ceilings: map[string]pcp.Level{},
		Access:   map[string][]string{},
	}

	// Build the undirected task-resource access graph.
	g := simple.NewUndirectedGraph()
	tasks := map[string]*accessNode{}
	for _, t := range a.Tasks {
		node := makeNode(taskNode, t.Name, t.Priority)
		tasks[t.Name] = node
		g.AddNode(node)
	}
	for _, r := range a.Resources {
		node := makeNode(resourceNode, r.Name, 0)
		g.AddNode(node)
		for _, accessor := range r.Accessors {
			task, ok := tasks[accessor]
			if !ok {
				return nil, fmt.Errorf("resource %s: %w: %s", r.Name, app.ErrUnknownTask, accessor)
			}
			g.SetEdge(g.NewEdge(task, node))
			result.Access[accessor] = append(result.Access[accessor], r.Name)
		}

		result.Ceilings[r.Name] = ceiling(g, node)
		if len(r.Accessors) == 1 {
			result.Exclusive = append(result.Exclusive, r.Name)
		}
	}
	slices.Sort(result.Exclusive)

	// Contention groups, ignoring tasks that share nothing.
	for _, component := range topo.ConnectedComponents(g) {
		if len(component) < 2 {
			continue
		}
		names := make([]string, len(component))
		for i, node := range component {
			names[i] = node.(*accessNode).name
		}
		slices.Sort(names)
		result.Groups = append(result.Groups, names)
	}
	slices.SortFunc(result.Groups, func(a, b []string) bool {
		return a[0] < b[0]
	})

	dispatchers, err := allocateDispatchers(a)
	if err != nil {
		return nil, err
	}
	result.Dispatchers = dispatchers

	result.MaxAsyncPriority = NoAsyncLimit
	if len(dispatchers) > 0 {
		priorities := maps.Keys(dispatchers)
		slices.Sort(priorities)
		result.MaxAsyncPriority = priorities[len(priorities)-1]
	}

	return result, nil
}

func ceiling(g graph.Undirected, resource graph.Node) pcp.Level {
	var c pcp.Level
	nodes := g.From(resource.ID())
	for nodes.Next() {
		if p := nodes.Node().(*accessNode).priority; p > c {
			c = p
		}
	}
	return c
}

// allocateDispatchers hands out the declared dispatchers from the back of the list, the highest
// software priority first.
func allocateDispatchers(a *app.App) (map[pcp.Level]string, error) {
	levels := map[pcp.Level]bool{}
	for _, t := range a.TasksOf(app.Software) {
		levels[t.Priority] = true
	}

	priorities := maps.Keys(levels)
	slices.SortFunc(priorities, func(a, b pcp.Level) bool {
		return a > b
	})

	free := slices.Clone(a.Config.Dispatchers)
	result := map[pcp.Level]string{}
	for _, p := range priorities {
		if len(free) == 0 {
			return nil, fmt.Errorf("%w: %d software priorities, %d dispatchers", ErrNotEnoughDispatchers, len(priorities), len(a.Config.Dispatchers))
		}
		result[p] = free[len(free)-1]
		free = free[:len(free)-1]
	}
	return result, nil
}

// Priorities returns the software task priorities in ascending order.
func (an *Analysis) Priorities() []pcp.Level {
	priorities := maps.Keys(an.Dispatchers)
	slices.Sort(priorities)
	return priorities
}

// IsExclusive reports whether a resource has a single accessor.
func (an *Analysis) IsExclusive(resource string) bool {
	_, found := slices.BinarySearch(an.Exclusive, resource)
	return found
}
