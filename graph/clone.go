package graph

// clone returns a copy of n that shares no mutable state with the model.
func (n Node) clone() Node {
	n.Parameters = cloneMap(n.Parameters)
	n.Style = cloneMap(n.Style)
	n.Draggable = clonePtr(n.Draggable)
	n.Selectable = clonePtr(n.Selectable)
	n.Connectable = clonePtr(n.Connectable)
	n.Deletable = clonePtr(n.Deletable)
	n.Width = clonePtr(n.Width)
	n.Height = clonePtr(n.Height)
	n.ZIndex = clonePtr(n.ZIndex)
	return n
}

func (e Edge) clone() Edge {
	e.Style = cloneMap(e.Style)
	e.Data = cloneMap(e.Data)
	return e
}

// cloneMap copies m and every map or slice nested in it.
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]string:
		if t == nil {
			return t
		}
		out := make(map[string]string, len(t))
		for k, s := range t {
			out[k] = s
		}
		return out
	case []string:
		if t == nil {
			return t
		}
		return append([]string(nil), t...)
	default:
		return v
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
