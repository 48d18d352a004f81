package history

import (
	"cmp"
	"slices"
)

// Node is a category value in a transition graph with its play count.
type Node struct {
	Value string `json:"value" yaml:"value"`
	Plays int    `json:"plays" yaml:"plays"`
}

// Edge counts how often Target was played directly after Source.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Count  int    `json:"count" yaml:"count"`
}

// Graph is a category switching graph.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// Edge returns the count of source -> target, 0 if absent.
func (g Graph) Edge(source, target string) int {
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			return e.Count
		}
	}
	return 0
}

// TopCategories ranks the known category values of events by play count.
// Equal counts keep first-appearance order. k <= 0 returns all of them.
func TopCategories(events []ListeningEvent, category func(ListeningEvent) string, k int) []Node {
	plays := GroupBy(qualifying(events, category), category, Count)
	buckets := plays.Top(k)
	nodes := make([]Node, len(buckets))
	for i, b := range buckets {
		nodes[i] = Node{Value: b.Key, Plays: int(b.Value)}
	}
	return nodes
}

// CountTransitions builds the switching graph between the top k category
// values. Events whose category is unknown are dropped, the rest are stably
// sorted by timestamp, and each adjacent pair with both values in the top k
// and different values adds one to the edge between them. Repeats of the same
// value never produce edges.
//
// The bool is false when there are fewer than two qualifying events or fewer
// than two distinct top values.
func CountTransitions(events []ListeningEvent, category func(ListeningEvent) string, k int) (Graph, bool) {
	seq := qualifying(events, category)
	if len(seq) < 2 {
		return Graph{}, false
	}
	slices.SortStableFunc(seq, func(a, b ListeningEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	nodes := TopCategories(seq, category, k)
	if len(nodes) < 2 {
		return Graph{}, false
	}
	top := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		top[n.Value] = true
	}

	type pair struct{ source, target string }
	index := make(map[pair]int)
	var edges []Edge
	for i := 1; i < len(seq); i++ {
		src, dst := category(seq[i-1]), category(seq[i])
		if src == dst || !top[src] || !top[dst] {
			continue
		}
		p := pair{src, dst}
		j, ok := index[p]
		if !ok {
			j = len(edges)
			index[p] = j
			edges = append(edges, Edge{Source: src, Target: dst})
		}
		edges[j].Count++
	}
	slices.SortStableFunc(edges, func(a, b Edge) int {
		return cmp.Compare(b.Count, a.Count)
	})

	return Graph{Nodes: nodes, Edges: edges}, true
}

func qualifying(events []ListeningEvent, category func(ListeningEvent) string) []ListeningEvent {
	out := make([]ListeningEvent, 0, len(events))
	for _, e := range events {
		if !IsUnknown(category(e)) {
			out = append(out, e)
		}
	}
	return out
}
