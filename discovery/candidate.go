package discovery

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/triple"
)

// MaxCandidates bounds the candidate priority buffer (§3: "max 64").
const MaxCandidates = 64

// MinObservationsDefault and MinFieldCount are the promotion gates
// from §4.6 ("confidence ≥ threshold ∧ observation_count ≥ 3 ∧
// field_count ≥ 2").
const (
	MinObservationsDefault = 3
	MinFieldCount          = 2
)

var inputHeuristics = []string{"input", "question", "query", "prompt", "context"}
var outputHeuristics = []string{"output", "answer", "result", "response", "classification"}

func heuristicWeight(list []string, lower []byte) (matched bool, weight float64) {
	for i, kw := range list {
		if bytes.Contains(lower, []byte(kw)) {
			w := 1.0 - 0.1*float64(i)
			if w < 0.5 {
				w = 0.5
			}
			return true, w
		}
	}
	return false, 0
}

var subjectIDPattern = regexp.MustCompile(`\d+$`)

// FieldCand is one synthesized input/output field within a candidate.
type FieldCand struct {
	Name        string
	IsInput     bool
	OWLDatatype string
	Confidence  float64
}

// Candidate is a signature candidate accumulating evidence across
// observations, per §3's "Signature candidate".
type Candidate struct {
	Name             string
	Confidence       float64
	FieldCount       int
	InputCount       int
	OutputCount      int
	Fields           []FieldCand
	DiscoveryTime    uint64
	ObservationCount int

	inputPredicate  intern.StringRef
	outputPredicate intern.StringRef
}

// ringEntry is one slot of the recent-triples ring buffer.
type ringEntry struct {
	valid bool
	t     triple.Triple
	seq   uint64
}

// Detector maintains the recent-triple ring buffer and the bounded
// candidate store, implementing the candidate-detection algorithm of
// §4.6.
type Detector struct {
	interner *intern.Interner

	ring     []ringEntry
	ringNext int
	seq      uint64

	candidates []*Candidate
	byPair     map[pairKey]*Candidate
}

type pairKey struct{ in, out uint32 }

// NewDetector creates a detector with a ring buffer of ringSize
// entries (config: discovery_ring_size, default 256).
func NewDetector(interner *intern.Interner, ringSize int) *Detector {
	return &Detector{
		interner: interner,
		ring:     make([]ringEntry, ringSize),
		byPair:   make(map[pairKey]*Candidate),
	}
}

// Observe scans the ring for an earlier triple forming an
// input/output pair with t, updates or inserts the resulting
// candidate, then pushes t into the ring. Returns the touched
// candidate, or nil if t did not complete a pair.
func (d *Detector) Observe(t triple.Triple, now uint64) *Candidate {
	var touched *Candidate

	outBytes, ok := d.interner.Resolve(t.Predicate)
	if ok {
		outMatched, outWeight := heuristicWeight(outputHeuristics, bytes.ToLower(outBytes))
		if outMatched {
			if best, bestSeq, found := d.findInputMatch(t.Subject); found {
				touched = d.upsertCandidate(best, t, outWeight, bestSeq, now)
			}
		}
	}

	d.push(t)
	return touched
}

func (d *Detector) findInputMatch(subject intern.StringRef) (triple.Triple, uint64, bool) {
	var best triple.Triple
	var bestSeq uint64
	found := false
	for _, e := range d.ring {
		if !e.valid || !e.t.Subject.Equal(subject) {
			continue
		}
		b, ok := d.interner.Resolve(e.t.Predicate)
		if !ok {
			continue
		}
		if matched, _ := heuristicWeight(inputHeuristics, bytes.ToLower(b)); matched {
			if !found || e.seq > bestSeq {
				best, bestSeq, found = e.t, e.seq, true
			}
		}
	}
	return best, bestSeq, found
}

func (d *Detector) push(t triple.Triple) {
	d.ring[d.ringNext] = ringEntry{valid: true, t: t, seq: d.seq}
	d.ringNext = (d.ringNext + 1) % len(d.ring)
	d.seq++
}

func (d *Detector) upsertCandidate(in triple.Triple, out triple.Triple, outWeight float64, inSeq uint64, now uint64) *Candidate {
	key := pairKey{in: in.Predicate.Hash, out: out.Predicate.Hash}
	if c, ok := d.byPair[key]; ok {
		c.ObservationCount++
		c.Confidence = d.confidence(key, c.ObservationCount, in, out, outWeight, inSeq)
		return c
	}

	name := fmt.Sprintf("signature_%x_%x", in.Predicate.Hash, out.Predicate.Hash)
	c := &Candidate{
		Name:             name,
		FieldCount:       2,
		InputCount:       1,
		OutputCount:      1,
		DiscoveryTime:    now,
		ObservationCount: 1,
		inputPredicate:   in.Predicate,
		outputPredicate:  out.Predicate,
		Fields: []FieldCand{
			{Name: "input", IsInput: true, OWLDatatype: inferDatatype(d.interner, in), Confidence: 1},
			{Name: "output", IsInput: false, OWLDatatype: inferDatatype(d.interner, out), Confidence: 1},
		},
	}
	c.Confidence = d.confidence(key, c.ObservationCount, in, out, outWeight, inSeq)
	d.byPair[key] = c
	d.insert(c)
	return c
}

func (d *Detector) confidence(key pairKey, observations int, in, out triple.Triple, outWeight float64, inSeq uint64) float64 {
	frequencyScore := float64(observations) / float64(MinObservationsDefault)
	if frequencyScore > 1 {
		frequencyScore = 1
	}

	fieldAffinity := outWeight

	datatypeCompat := 0.5
	if in.ObjectKind == triple.ObjectLiteral && out.ObjectKind == triple.ObjectLiteral {
		datatypeCompat = 1.0
	}

	subjectNaming := 0.5
	if b, ok := d.interner.Resolve(in.Subject); ok && subjectIDPattern.Match(b) {
		subjectNaming = 1.0
	}

	distance := d.seq - inSeq
	temporal := 1.0 - float64(distance)/float64(len(d.ring))
	if temporal < 0 {
		temporal = 0
	}

	dspyBonus := 0.0
	if outB, ok := d.interner.Resolve(out.Predicate); ok && bytes.Contains(bytes.ToLower(outB), []byte("dspy")) {
		dspyBonus = 1.0
	} else if inB, ok := d.interner.Resolve(in.Predicate); ok && bytes.Contains(bytes.ToLower(inB), []byte("dspy")) {
		dspyBonus = 1.0
	}

	confidence := 0.3*frequencyScore + 0.2*fieldAffinity + 0.2*datatypeCompat + 0.1*subjectNaming + 0.1*temporal + 0.1*dspyBonus
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

// insert adds c to the bounded candidate buffer. When the buffer is
// full, c replaces the minimum-confidence entry only if c's confidence
// is strictly higher; otherwise the buffer is left unchanged and c is
// not added to it.
func (d *Detector) insert(c *Candidate) {
	if len(d.candidates) < MaxCandidates {
		d.candidates = append(d.candidates, c)
		return
	}
	minIdx := 0
	for i, existing := range d.candidates {
		if existing.Confidence < d.candidates[minIdx].Confidence {
			minIdx = i
		}
	}
	if c.Confidence > d.candidates[minIdx].Confidence {
		evicted := d.candidates[minIdx]
		delete(d.byPair, pairKey{in: evicted.inputPredicate.Hash, out: evicted.outputPredicate.Hash})
		d.candidates[minIdx] = c
	}
}

// Candidates returns every live candidate, for inspection/testing.
func (d *Detector) Candidates() []*Candidate {
	out := make([]*Candidate, len(d.candidates))
	copy(out, d.candidates)
	return out
}

func inferDatatype(interner *intern.Interner, t triple.Triple) string {
	if t.ObjectKind != triple.ObjectLiteral {
		return "iri"
	}
	b, ok := interner.Resolve(t.Object)
	if !ok {
		return "string"
	}
	return InferLiteralDatatype(b)
}
