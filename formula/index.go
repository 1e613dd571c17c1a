package formula

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/reoring/schemaformula/schema"
)

// Index is the dependency registry between formula fields and the nodes they
// read. Every edge stored in a registered formula has a mirrored reverse edge
// in dependents; ids that are not registered have none.
//
// An Index is not safe for concurrent mutation.
type Index struct {
	dependents map[string]map[string]struct{} // node id -> formula ids
	formulas   map[string]*Parsed             // formula id -> formula
	logger     *zap.Logger
}

// IndexOption configures NewIndex.
type IndexOption func(*Index)

// WithLogger sets the logger used for registration events.
func WithLogger(l *zap.Logger) IndexOption {
	return func(idx *Index) {
		if l != nil {
			idx.logger = l
		}
	}
}

// NewIndex returns an empty index.
func NewIndex(opts ...IndexOption) *Index {
	idx := &Index{
		dependents: map[string]map[string]struct{}{},
		formulas:   map[string]*Parsed{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Register stores f as the formula of formulaID, replacing every edge of a
// previous registration.
func (idx *Index) Register(formulaID string, f *Parsed) {
	idx.Unregister(formulaID)
	if f == nil {
		return
	}
	idx.formulas[formulaID] = f
	for _, d := range f.deps {
		set, ok := idx.dependents[d.targetNodeID]
		if !ok {
			set = map[string]struct{}{}
			idx.dependents[d.targetNodeID] = set
		}
		set[formulaID] = struct{}{}
	}
	idx.logger.Debug("formula registered",
		zap.String("formula", formulaID),
		zap.String("expression", f.expression),
		zap.Int("dependencies", len(f.deps)))
}

// Unregister drops formulaID and all of its reverse edges. Unknown ids are
// ignored.
func (idx *Index) Unregister(formulaID string) {
	f, ok := idx.formulas[formulaID]
	if !ok {
		return
	}
	delete(idx.formulas, formulaID)
	for _, d := range f.deps {
		set := idx.dependents[d.targetNodeID]
		delete(set, formulaID)
		if len(set) == 0 {
			delete(idx.dependents, d.targetNodeID)
		}
	}
	idx.logger.Debug("formula unregistered", zap.String("formula", formulaID))
}

// Dependents returns the sorted ids of formulas that read nodeID.
func (idx *Index) Dependents(nodeID string) []string {
	set := idx.dependents[nodeID]
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// HasDependents reports whether any formula reads nodeID. Editors use it to
// block deleting a referenced field.
func (idx *Index) HasDependents(nodeID string) bool { return len(idx.dependents[nodeID]) > 0 }

// Formula returns the formula registered at formulaID, or nil.
func (idx *Index) Formula(formulaID string) *Parsed { return idx.formulas[formulaID] }

func (idx *Index) Len() int { return len(idx.formulas) }

// FormulaIDs returns every registered formula id, sorted.
func (idx *Index) FormulaIDs() []string {
	out := make([]string, 0, len(idx.formulas))
	for id := range idx.formulas {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Clear removes every formula and edge.
func (idx *Index) Clear() {
	idx.dependents = map[string]map[string]struct{}{}
	idx.formulas = map[string]*Parsed{}
}

// Order returns the registered formula ids so that every formula comes after
// the formulas it reads. Among formulas that are ready at the same time the
// smallest id goes first. A cycle between formula fields fails with
// CodeCircularDependency naming the ids left unordered.
func (idx *Index) Order() ([]string, error) {
	ids := idx.FormulaIDs()
	indeg := make(map[string]int, len(ids))
	out := make(map[string][]string, len(ids))
	for _, id := range ids {
		for _, d := range idx.formulas[id].deps {
			if _, isFormula := idx.formulas[d.targetNodeID]; !isFormula {
				continue
			}
			indeg[id]++
			out[d.targetNodeID] = append(out[d.targetNodeID], id)
		}
	}
	for k := range out {
		sort.Strings(out[k])
	}

	var ready []string
	for _, id := range ids {
		if indeg[id] == 0 {
			ready = append(ready, id)
		}
	}

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]

		order = append(order, id)
		for _, next := range out[id] {
			indeg[next]--
			if indeg[next] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchStrings(ready, next)
				ready = append(ready, "")
				copy(ready[k+1:], ready[k:])
				ready[k] = next
			}
		}
	}

	if len(order) != len(ids) {
		var stuck []string
		for _, id := range ids {
			if indeg[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, &Error{
			Code:    CodeCircularDependency,
			NodeID:  stuck[0],
			Details: strings.Join(stuck, ", "),
		}
	}
	return order, nil
}

// Rebuild clears the index and registers every formula field of tree. Fields
// whose formula fails to parse are reported by node id and left unregistered;
// the rest stay registered.
func (idx *Index) Rebuild(tree *schema.Tree, opts ...Option) map[string]error {
	idx.Clear()
	errs := map[string]error{}
	for _, field := range tree.FormulaFields() {
		f, err := NewParsed(tree, field.NodeID, field.Expression, opts...)
		if err != nil {
			idx.logger.Debug("formula rejected",
				zap.String("formula", field.NodeID),
				zap.String("path", field.Path.Simple()),
				zap.Error(err))
			errs[field.NodeID] = err
			continue
		}
		idx.Register(field.NodeID, f)
	}
	if len(errs) > 0 {
		idx.logger.Debug("rebuild finished with errors",
			zap.Int("failed", len(errs)),
			zap.Int("registered", idx.Len()))
	}
	return errs
}
