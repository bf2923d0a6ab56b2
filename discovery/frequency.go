package discovery

// frequencyClasses is the fixed order the 80/20 frequency model tracks;
// the first five pattern classes sum to 100% of observed triples
// per §3's pattern-class invariant.
var frequencyClasses = [5]Class{TypeDecl, Label, Property, Hierarchy, Other}

// defaultExpectedRates are the initial expected rates per §4.6.
var defaultExpectedRates = [5]float64{0.30, 0.20, 0.20, 0.10, 0.20}

// AdaptationPeriod is "every Nth triple" from §4.6.
const AdaptationPeriod = 1000

// FrequencyModel tracks observed-vs-expected rates for the five
// dominant pattern classes and adapts the discovery confidence
// threshold when their drift exceeds a configured bound.
type FrequencyModel struct {
	observed    [5]uint64
	totalSeen   uint64
	expected    [5]float64
	threshold   float64
	driftBound  float64
	learnRate   float64
}

// NewFrequencyModel seeds expected rates at their §4.6 defaults.
// initialThreshold, driftBound and learnRate come from config
// (discovery_confidence_threshold, frequency_adaptation_threshold,
// frequency_learning_rate).
func NewFrequencyModel(initialThreshold, driftBound, learnRate float64) *FrequencyModel {
	return &FrequencyModel{
		expected:   defaultExpectedRates,
		threshold:  initialThreshold,
		driftBound: driftBound,
		learnRate:  learnRate,
	}
}

func classIndex(c Class) (int, bool) {
	for i, fc := range frequencyClasses {
		if fc == c {
			return i, true
		}
	}
	return 0, false
}

// Observe records one classified triple. Every AdaptationPeriod
// triples it recomputes drift and, if over driftBound, blends the
// expected rates toward the observed ones and nudges the confidence
// threshold. Returns the (possibly unchanged) current threshold.
func (m *FrequencyModel) Observe(c Class) float64 {
	if idx, ok := classIndex(c); ok {
		m.observed[idx]++
	}
	m.totalSeen++

	if m.totalSeen%AdaptationPeriod != 0 {
		return m.threshold
	}
	return m.adapt()
}

func (m *FrequencyModel) adapt() float64 {
	var drift float64
	var rates [5]float64
	for i := range frequencyClasses {
		rates[i] = float64(m.observed[i]) / float64(m.totalSeen)
		d := rates[i] - m.expected[i]
		if d < 0 {
			d = -d
		}
		drift += d
	}

	if drift <= m.driftBound {
		return m.threshold
	}

	for i := range m.expected {
		m.expected[i] = (1-m.learnRate)*m.expected[i] + m.learnRate*rates[i]
	}

	m.threshold *= 1 - 0.1*drift
	if m.threshold < 0.5 {
		m.threshold = 0.5
	}
	if m.threshold > 0.95 {
		m.threshold = 0.95
	}
	return m.threshold
}

// Threshold returns the current discovery confidence threshold.
func (m *FrequencyModel) Threshold() float64 { return m.threshold }

// Drift returns Σ|observed−expected| against the current tallies,
// without mutating state; used by tests and diagnostics.
func (m *FrequencyModel) Drift() float64 {
	if m.totalSeen == 0 {
		return 0
	}
	var drift float64
	for i := range frequencyClasses {
		rate := float64(m.observed[i]) / float64(m.totalSeen)
		d := rate - m.expected[i]
		if d < 0 {
			d = -d
		}
		drift += d
	}
	return drift
}
