package registry

import "github.com/syssam/modelgraph"

// linearize computes the C3 linearization of t: t itself, followed by a
// merge of its bases' linearizations that preserves both local precedence
// order and monotonicity. visiting guards against inheritance cycles.
func (r *Registry) linearize(t *Type, visiting map[*Type]bool) error {
	if t.mro != nil {
		return nil
	}
	if visiting[t] {
		return modelgraph.NewSchemaError(t.qname, "", "inheritance cycle", nil)
	}
	visiting[t] = true
	defer delete(visiting, t)

	seqs := make([][]*Type, 0, len(t.bases)+1)
	for _, b := range t.bases {
		if err := r.linearize(b, visiting); err != nil {
			return err
		}
		seqs = append(seqs, append([]*Type(nil), b.mro...))
	}
	seqs = append(seqs, append([]*Type(nil), t.bases...))

	out := []*Type{t}
	for {
		seqs = nonEmpty(seqs)
		if len(seqs) == 0 {
			break
		}
		head := mergeHead(seqs)
		if head == nil {
			return modelgraph.NewSchemaError(t.qname, "", "inconsistent hierarchy: no linearization of bases", nil)
		}
		out = append(out, head)
		for i, s := range seqs {
			if s[0] == head {
				seqs[i] = s[1:]
			}
		}
	}
	t.mro = out
	return nil
}

// mergeHead returns the first sequence head that appears in no tail.
func mergeHead(seqs [][]*Type) *Type {
	for _, s := range seqs {
		if !inTail(s[0], seqs) {
			return s[0]
		}
	}
	return nil
}

func inTail(t *Type, seqs [][]*Type) bool {
	for _, s := range seqs {
		for _, c := range s[1:] {
			if c == t {
				return true
			}
		}
	}
	return false
}

func nonEmpty(seqs [][]*Type) [][]*Type {
	out := seqs[:0]
	for _, s := range seqs {
		if len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}
