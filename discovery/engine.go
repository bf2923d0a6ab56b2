package discovery

import (
	"go.uber.org/zap"

	"github.com/semcore/semcore/intern"
	"github.com/semcore/semcore/shacl"
	"github.com/semcore/semcore/triple"
)

// Event summarizes one Observe call's outcome, matching the discovery
// event shape in §6's telemetry interface.
type Event struct {
	Class      Class
	Candidate  *Candidate
	Threshold  float64
	Promoted   bool
	Signature  *Signature
}

// Engine wires the classifier, frequency model, and candidate
// detector into the single per-triple entry point the scheduler (C11)
// calls on its opportunistic discovery step.
type Engine struct {
	classifier *Classifier
	frequency  *FrequencyModel
	detector   *Detector
	interner   *intern.Interner
	nextSigID  uint64
	log        *zap.Logger
}

// NewEngine builds a discovery engine. ringSize and thresholds come
// from config (discovery_ring_size, discovery_confidence_threshold,
// frequency_adaptation_threshold, frequency_learning_rate). log may be
// nil, in which case promotions are logged nowhere.
func NewEngine(vocab Vocabulary, interner *intern.Interner, ringSize int, initialThreshold, driftBound, learnRate float64, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		classifier: NewClassifier(vocab, interner),
		frequency:  NewFrequencyModel(initialThreshold, driftBound, learnRate),
		detector:   NewDetector(interner, ringSize),
		interner:   interner,
		log:        log,
	}
}

// Observe classifies t, feeds the frequency model, and runs candidate
// detection. If the touched candidate becomes eligible, it is
// promoted immediately against validator.
func (e *Engine) Observe(t triple.Triple, now uint64, validator *shacl.Validator) (Event, error) {
	class := e.classifier.Classify(t.Predicate, t.ObjectKind == triple.ObjectLiteral)
	threshold := e.frequency.Observe(class)

	candidate := e.detector.Observe(t, now)
	event := Event{Class: class, Candidate: candidate, Threshold: threshold}
	if candidate == nil {
		return event, nil
	}

	if EligibleForPromotion(candidate, threshold) {
		e.nextSigID++
		sig, err := Promote(candidate, validator, e.interner, e.nextSigID)
		if err != nil {
			e.log.Warn("signature promotion failed",
				zap.String("candidate", candidate.Name),
				zap.Error(err))
			return event, err
		}
		event.Promoted = true
		event.Signature = sig
		e.log.Info("signature promoted",
			zap.String("candidate", candidate.Name),
			zap.Float64("confidence", candidate.Confidence),
			zap.Uint64("signature_id", e.nextSigID))
	}
	return event, nil
}

// Threshold returns the current adapted confidence threshold.
func (e *Engine) Threshold() float64 { return e.frequency.Threshold() }

// Candidates returns every live candidate in the bounded buffer.
func (e *Engine) Candidates() []*Candidate { return e.detector.Candidates() }

// Maintain runs the low-frequency adaptation pass described in
// §4.6's last paragraph. Frequencies are already updated incrementally
// by Observe, so this pass recomputes nothing and reports no drift; it
// hands back the validator's constraints that are candidates for
// pruning, so the caller can decide whether to relax or remove them.
func (e *Engine) Maintain(validator *shacl.Validator, pruneThreshold float64) []shacl.PruneCandidate {
	return validator.Maintain(pruneThreshold)
}
