package graph

import "slices"

// OtherKey buckets nodes whose subtitle is empty.
const OtherKey = "기타"

// TypeCount is one bucket of the node type histogram.
type TypeCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TypeHistogram counts nodes by subtitle, sorted by descending count.
// Ties keep the order in which keys were first seen.
func (m *Model) TypeHistogram() []TypeCount {
	var out []TypeCount
	pos := make(map[string]int)
	for _, n := range m.nodes {
		key := n.Subtitle
		if key == "" {
			key = OtherKey
		}
		if i, ok := pos[key]; ok {
			out[i].Count++
			continue
		}
		pos[key] = len(out)
		out = append(out, TypeCount{Key: key, Count: 1})
	}
	slices.SortStableFunc(out, func(a, b TypeCount) int {
		return b.Count - a.Count
	})
	return out
}
