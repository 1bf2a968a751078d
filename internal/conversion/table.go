package conversion

import (
	"container/heap"
	"fmt"
	"sync"

	"github.com/funvibe/hostlink/internal/types"
)

// Table is the conversion graph and its router. Conversions are edges
// between interned type descriptors; BestRoute searches for the cheapest
// chain between two types for a given insight. A Table is safe for
// concurrent use: registration takes the write lock, routing the read lock.
type Table struct {
	mu    sync.RWMutex
	edges map[*types.Descriptor][]Conversion
	exits map[*types.Descriptor]Conversion
}

func NewTable() *Table {
	return &Table{
		edges: make(map[*types.Descriptor][]Conversion),
		exits: make(map[*types.Descriptor]Conversion),
	}
}

// RegisterConversion adds an edge to the graph.
func (t *Table) RegisterConversion(c Conversion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.edges[c.From()] = append(t.edges[c.From()], c)
}

// RegisterEdgeConversion installs the post-call exit conversion applied to
// results declared as c.From. At most one exit conversion per type; a later
// registration replaces an earlier one.
func (t *Table) RegisterEdgeConversion(c Conversion) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.exits[c.From()] = c
}

// EdgeConversion returns the exit conversion for a declared return type.
func (t *Table) EdgeConversion(d *types.Descriptor) (Conversion, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.exits[d]
	return c, ok
}

// BestRoute finds the cheapest conversion chain from one type to another
// under the given insight. Same type yields the identity route. The second
// result is false when no chain exists.
func (t *Table) BestRoute(from *types.Descriptor, insight types.Insight, to *types.Descriptor) (*Route, bool) {
	if from == to {
		return IdentityRoute(from), true
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	// Dijkstra over the edge graph; the graph is small and weights are
	// insight-dependent, so the search runs per query.
	dist := map[*types.Descriptor]Weight{from: WeightExact}
	arrival := map[*types.Descriptor]Conversion{}
	done := map[*types.Descriptor]bool{}

	pq := &routeQueue{{desc: from, cost: WeightExact}}
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(routeStop)
		if done[cur.desc] {
			continue
		}
		done[cur.desc] = true
		if cur.desc == to {
			break
		}
		for _, edge := range t.edges[cur.desc] {
			w := edge.Weight(insight)
			if !w.IsPossible() {
				continue
			}
			next := edge.To()
			cost := cur.cost.Add(w)
			if known, seen := dist[next]; seen && !cost.Less(known) {
				continue
			}
			dist[next] = cost
			arrival[next] = edge
			heap.Push(pq, routeStop{desc: next, cost: cost})
		}
	}

	if !done[to] {
		return nil, false
	}

	// Walk arrival edges backwards to recover the chain.
	var steps []Conversion
	for at := to; at != from; at = arrival[at].From() {
		steps = append(steps, arrival[at])
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return NewRoute(from, to, steps), true
}

// BestSequenceRoute routes every actual argument to the corresponding
// formal parameter. On the first unroutable position it returns a
// *NoRouteError naming that position.
func (t *Table) BestSequenceRoute(actuals []*types.Descriptor, insights []types.Insight, formal types.Signature) ([]*Route, error) {
	if len(actuals) != len(formal) {
		return nil, fmt.Errorf("arity mismatch: %d actuals for %d formals", len(actuals), len(formal))
	}
	routes := make([]*Route, len(actuals))
	for i, actual := range actuals {
		route, ok := t.BestRoute(actual, insights[i], formal[i])
		if !ok {
			return nil, &NoRouteError{From: actual, To: formal[i], Position: i}
		}
		routes[i] = route
	}
	return routes, nil
}

type routeStop struct {
	desc *types.Descriptor
	cost Weight
}

type routeQueue []routeStop

func (q routeQueue) Len() int           { return len(q) }
func (q routeQueue) Less(i, j int) bool { return q[i].cost.Less(q[j].cost) }
func (q routeQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *routeQueue) Push(x any)        { *q = append(*q, x.(routeStop)) }
func (q *routeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}
