package tick

import (
	"fmt"
	"math"

	humanize "github.com/dustin/go-humanize"
	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mathext"
)

// Report is the gatekeeper report: the aggregated tick statistics
// against the 7-cycle target (spec.md §4.1, §3 "Tick metrics").
// Computed on demand from a Snapshot, never on the hot path.
type Report struct {
	TotalOperations uint64
	TotalCycles     uint64
	Mean            float64
	StdDev          float64
	SigmaLevel      float64
	Cpk             float64
	DPM             float64
	ThroughputMOPS  float64

	// Gate results, reported but never enforced.
	PassesSigma      bool
	PassesCpk        bool
	PassesDPM        bool
	PassesThroughput bool
}

// Quality gate thresholds (spec.md §4.1).
const (
	GateSigmaLevel     = 4.0
	GateCpk            = 1.3
	GateDPM            = 63.0
	GateThroughputMOPS = 10.0
)

// Compute derives a Report from snap. If snap has recorded no
// operations, Mean/StdDev/Sigma/Cpk/DPM/Throughput are all zero.
func Compute(snap Snapshot) Report {
	r := Report{
		TotalOperations: snap.TotalOperations,
		TotalCycles:     snap.TotalCycles,
	}
	if snap.TotalOperations == 0 {
		return r
	}

	r.Mean = float64(snap.TotalCycles) / float64(snap.TotalOperations)

	samples := expandHistogram(snap.Histogram, snap.TotalOperations)
	if sd, err := mstats.StandardDeviation(samples); err == nil {
		r.StdDev = sd
	}

	if r.StdDev == 0 {
		r.SigmaLevel = 0
		r.Cpk = 0
	} else {
		r.SigmaLevel = math.Abs(TargetCycles-r.Mean) / r.StdDev
		r.Cpk = (TargetCycles - r.Mean) / (3 * r.StdDev)
	}

	r.DPM = 1e6 * 0.5 * (1 - mathext.Erf(r.SigmaLevel/math.Sqrt2))

	if r.Mean > 0 {
		r.ThroughputMOPS = float64(snap.TotalOperations) / r.Mean
	}

	r.PassesSigma = r.SigmaLevel >= GateSigmaLevel
	r.PassesCpk = r.Cpk >= GateCpk
	r.PassesDPM = r.DPM <= GateDPM
	r.PassesThroughput = r.ThroughputMOPS >= GateThroughputMOPS
	return r
}

// expandHistogram materializes the bin-counted histogram back into a
// flat sample slice so the generic montanaflynn/stats helpers can
// operate on it. HistogramBins is small (1000) and TotalOperations is
// the real bound on the result size, so this stays proportional to
// the data actually observed rather than to the bin count.
func expandHistogram(hist [HistogramBins]uint64, total uint64) []float64 {
	samples := make([]float64, 0, total)
	for bin, count := range hist {
		for i := uint64(0); i < count; i++ {
			samples = append(samples, float64(bin))
		}
	}
	return samples
}

// String renders a human-readable gatekeeper summary line, the kind
// an operator-facing log or CLI (external to this core) would print.
func (r Report) String() string {
	return fmt.Sprintf(
		"ops=%s mean=%.2fc sigma=%.2f cpk=%.2f dpm=%.1f throughput=%.2f MOPS (cycles=%s)",
		humanize.Comma(int64(r.TotalOperations)), r.Mean, r.SigmaLevel, r.Cpk, r.DPM, r.ThroughputMOPS,
		humanize.Comma(int64(r.TotalCycles)),
	)
}
