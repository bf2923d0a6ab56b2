package owl

import (
	"github.com/bits-and-blooms/bitset"
	"github.com/dgraph-io/ristretto/v2"

	"github.com/semcore/semcore/errs"
	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/tick"
	"github.com/semcore/semcore/triple"
)

// Vocabulary is the set of interned schema predicates the reasoner
// needs to recognize. The caller interns these once (rdf:type,
// rdfs:subClassOf, rdfs:subPropertyOf, rdfs:domain, rdfs:range) and
// hands them in, since interning itself is an external collaborator
// (§6).
type Vocabulary struct {
	RDFType       intern.StringRef
	SubClassOf    intern.StringRef
	SubPropertyOf intern.StringRef
	Domain        intern.StringRef
	Range         intern.StringRef
}

// Reasoner runs the closed four-rule forward chain described in
// §4.5, dispatching by predicate through a bitset applicability index
// rather than scanning the whole rule table per triple.
type Reasoner struct {
	vocab Vocabulary
	instr *tick.Instrumentation

	rules []Rule
	// index maps a triggering predicate's hash to the set of rule
	// indices that fire on it. This is the bitmask role §4.5 and §9
	// describe for the rule table: not the rules' own encoding (which
	// is the documented Rule struct above) but a compact per-predicate
	// applicability test.
	index map[uint32]*bitset.BitSet

	cache *ristretto.Cache[uint64, struct{}]

	maxDepth     int
	budgetCycles uint64
}

// New constructs a reasoner. cacheMaxEntries bounds the derived-triple
// dedup cache; maxDepth and budgetCycles come from config
// (ReasonerMaxDepth, ReasonerBudgetCycles).
func New(vocab Vocabulary, maxDepth int, budgetCycles uint64, cacheMaxEntries int64, instr *tick.Instrumentation) (*Reasoner, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, struct{}]{
		NumCounters: cacheMaxEntries * 10,
		MaxCost:     cacheMaxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Reasoner{
		vocab:        vocab,
		instr:        instr,
		index:        make(map[uint32]*bitset.BitSet),
		cache:        cache,
		maxDepth:     maxDepth,
		budgetCycles: budgetCycles,
	}, nil
}

// Compile scans graph for schema assertions (subClassOf,
// subPropertyOf, domain, range) and (re)builds the rule table and its
// applicability index. Call again after the schema changes; existing
// rules are replaced, not appended to, so Compile is idempotent.
func (r *Reasoner) Compile(graph *triple.Graph) error {
	r.rules = r.rules[:0]
	r.index = make(map[uint32]*bitset.BitSet)

	for _, t := range graph.All() {
		switch {
		case t.Predicate.Equal(r.vocab.SubClassOf):
			if err := r.addRule(Rule{Kind: RuleSubClassOf, Predicate: t.Subject, Operand: t.Object}); err != nil {
				return err
			}
		case t.Predicate.Equal(r.vocab.SubPropertyOf):
			if err := r.addRule(Rule{Kind: RuleSubPropertyOf, Predicate: t.Subject, Operand: t.Object}); err != nil {
				return err
			}
		case t.Predicate.Equal(r.vocab.Domain):
			if err := r.addRule(Rule{Kind: RuleDomain, Predicate: t.Subject, Operand: t.Object}); err != nil {
				return err
			}
		case t.Predicate.Equal(r.vocab.Range):
			if err := r.addRule(Rule{Kind: RuleRange, Predicate: t.Subject, Operand: t.Object}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reasoner) addRule(rule Rule) error {
	if len(r.rules) >= MaxRules {
		return errs.ErrCapacity
	}
	idx := len(r.rules)
	r.rules = append(r.rules, rule)

	bs, ok := r.index[rule.Predicate.Hash]
	if !ok {
		bs = bitset.New(MaxRules)
		r.index[rule.Predicate.Hash] = bs
	}
	bs.Set(uint(idx))
	return nil
}

// Reset clears the derived-triple cache, per §4.5 ("the cache is
// cleared on reset"). The rule table survives a reset; call Compile
// again to rebuild it from a changed schema.
func (r *Reasoner) Reset() {
	r.cache.Clear()
}

// Cached reports whether t has been derived by a prior Infer call,
// the hash-addressed derived-triple cache's read side. Infer itself
// never consults this to decide what to (re-)derive — doing so would
// make repeated Infer calls non-idempotent — it is for callers who
// want to avoid re-processing a triple they already handled.
func (r *Reasoner) Cached(t triple.Triple) bool {
	_, ok := r.cache.Get(tripleKey(t))
	return ok
}

// Infer runs bounded forward chaining over graph, breadth-first, up
// to maxDepth levels or until the configured cycle budget is
// exhausted, whichever comes first. Newly derived triples are
// returned (not added to graph — the caller decides whether/how
// derived triples re-enter the pipeline, per §2's data-flow note).
// truncated is true if the cycle budget cut the chain short. Stopping
// at maxDepth returns the partial result with truncated false, even
// when further levels would still derive new triples.
func (r *Reasoner) Infer(graph *triple.Graph) (derived []triple.Triple, truncated bool) {
	var start uint64
	if r.instr != nil {
		start = r.instr.Now()
	}

	frontier := graph.All()
	seen := make(map[uint64]struct{})

	for depth := 0; depth < r.maxDepth; depth++ {
		if r.overBudget(start) {
			return derived, true
		}
		var next []triple.Triple
		for _, t := range frontier {
			for _, bs := range r.candidateRules(t) {
				for i, e := bs.NextSet(0); e; i, e = bs.NextSet(i + 1) {
					if r.overBudget(start) {
						return derived, true
					}
					out, ok := r.apply(r.rules[i], t)
					if !ok {
						continue
					}
					key := tripleKey(out)
					if _, dup := seen[key]; dup {
						continue
					}
					if graph.Has(out.Subject, out.Predicate, out.Object) {
						continue
					}
					seen[key] = struct{}{}
					r.cache.Set(key, struct{}{}, 1)
					derived = append(derived, out)
					next = append(next, out)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		frontier = next
	}

	if r.instr != nil {
		r.instr.Record(tick.OpOwlInfer, start, r.instr.Now())
	}
	return derived, false
}

// candidateRules returns the applicability bitsets that might contain
// a rule firing on t. SubPropertyOf/Domain/Range rules are keyed by
// the property itself, so t.Predicate is always a candidate key.
// SubClassOf rules are keyed by the asserted class, so when t is a
// `rdf:type` triple its object is also a candidate key. apply()
// performs the precise pattern match; a spurious candidate here just
// costs one failed match, never a wrong inference.
func (r *Reasoner) candidateRules(t triple.Triple) []*bitset.BitSet {
	var out []*bitset.BitSet
	if bs, ok := r.index[t.Predicate.Hash]; ok {
		out = append(out, bs)
	}
	if t.Predicate.Equal(r.vocab.RDFType) {
		if bs, ok := r.index[t.Object.Hash]; ok {
			out = append(out, bs)
		}
	}
	return out
}

func (r *Reasoner) overBudget(start uint64) bool {
	if r.instr == nil || r.budgetCycles == 0 {
		return false
	}
	return r.instr.Now()-start > r.budgetCycles
}

// apply produces the derived triple for rule firing on body triple t,
// if t's shape matches the rule's required pattern.
func (r *Reasoner) apply(rule Rule, t triple.Triple) (triple.Triple, bool) {
	switch rule.Kind {
	case RuleSubClassOf:
		// t: ?x rdf:type A (rule.Predicate == A); derive ?x rdf:type B (rule.Operand == B)
		if !t.Predicate.Equal(r.vocab.RDFType) || !t.Object.Equal(rule.Predicate) {
			return triple.Triple{}, false
		}
		return triple.Triple{Subject: t.Subject, Predicate: r.vocab.RDFType, Object: rule.Operand, ObjectKind: triple.ObjectIRI}, true
	case RuleSubPropertyOf:
		// t: ?x p ?y where p == rule.Predicate; derive ?x q ?y (rule.Operand == q)
		if !t.Predicate.Equal(rule.Predicate) {
			return triple.Triple{}, false
		}
		return triple.Triple{Subject: t.Subject, Predicate: rule.Operand, Object: t.Object, ObjectKind: t.ObjectKind}, true
	case RuleDomain:
		// t: ?x p ?y where p == rule.Predicate; derive ?x rdf:type A (rule.Operand == A)
		if !t.Predicate.Equal(rule.Predicate) {
			return triple.Triple{}, false
		}
		return triple.Triple{Subject: t.Subject, Predicate: r.vocab.RDFType, Object: rule.Operand, ObjectKind: triple.ObjectIRI}, true
	case RuleRange:
		// t: ?x p ?y where p == rule.Predicate; derive ?y rdf:type B (rule.Operand == B)
		if !t.Predicate.Equal(rule.Predicate) {
			return triple.Triple{}, false
		}
		return triple.Triple{Subject: t.Object, Predicate: r.vocab.RDFType, Object: rule.Operand, ObjectKind: triple.ObjectIRI}, true
	default:
		return triple.Triple{}, false
	}
}

func tripleKey(t triple.Triple) uint64 {
	return uint64(t.Subject.Hash)<<42 ^ uint64(t.Predicate.Hash)<<21 ^ uint64(t.Object.Hash)
}
