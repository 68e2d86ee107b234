// Package daa implements the difficulty-adjustment algorithms that compute
// the minimum weight a new block must have, given the recent history of
// blocks on the best chain. It mirrors hathor-core's difficulty.py: two
// interchangeable DAA strategies (HTR and LWMA) over the same
// BlockSample iterator abstraction.
package daa

import (
	"math"

	"github.com/dagledger/fullnode/dagmath"
)

// BlockSample is one entry of block history fed to a DAA: its timestamp and
// the weight it was mined at. Implementations receive these newest-first.
type BlockSample struct {
	Timestamp int64
	Weight    float64
}

// Algorithm computes the minimum weight the next block must carry, given an
// iterator of recent blocks ordered newest to oldest.
type Algorithm interface {
	NextWeight(blocks []BlockSample) float64
}

// HTR is hathor-core's default DAA: a log-scale sum of recent work divided
// by elapsed time, clamped to a maximum per-block weight swing.
type HTR struct {
	// N is the number of most recent blocks to consider. Zero means use
	// DefaultN.
	N int
	// Target is the desired number of seconds between blocks. Zero means
	// use DefaultTarget.
	Target float64
	// MinWeight is the absolute floor below which no block weight may fall.
	// Zero means use DefaultMinWeight.
	MinWeight float64
	// MaxDeltaWeight bounds |next - last| when MaxDeltaWeightRule is set.
	// Zero means use DefaultMaxDeltaWeight.
	MaxDeltaWeight float64
	// MaxDeltaWeightRule toggles the per-block weight swing clamp.
	MaxDeltaWeightRule bool
}

// Defaults for HTR, taken from hathor-core's HTR class constants.
const (
	DefaultN              = 20
	DefaultTarget         = 30.0 // seconds
	DefaultMinWeight      = 21.0
	DefaultMaxDeltaWeight = 0.25
)

// NewHTR returns an HTR DAA configured with hathor-core's defaults and the
// max-delta-weight rule enabled.
func NewHTR() *HTR {
	return &HTR{
		N:                  DefaultN,
		Target:             DefaultTarget,
		MinWeight:          DefaultMinWeight,
		MaxDeltaWeight:     DefaultMaxDeltaWeight,
		MaxDeltaWeightRule: true,
	}
}

// NextWeight implements Algorithm. blocks must be ordered newest-first; only
// the first N entries are used.
func (h *HTR) NextWeight(blocks []BlockSample) float64 {
	n := h.N
	if n == 0 {
		n = DefaultN
	}
	target := h.Target
	if target == 0 {
		target = DefaultTarget
	}
	minWeight := h.MinWeight
	if minWeight == 0 {
		minWeight = DefaultMinWeight
	}
	maxDW := h.MaxDeltaWeight
	if maxDW == 0 {
		maxDW = DefaultMaxDeltaWeight
	}

	if len(blocks) > n {
		blocks = blocks[:n]
	}
	if len(blocks) < 2 {
		return minWeight
	}

	// _get_timestamps_and_weights reverses to oldest-first before use.
	oldest := blocks[len(blocks)-1]
	newest := blocks[0]

	dt := float64(newest.Timestamp - oldest.Timestamp)
	if dt < 1 {
		dt = 1
	}

	weights := make([]float64, len(blocks))
	for i, b := range blocks {
		weights[i] = b.Weight
	}
	logH := dagmath.SumWeightSlice(weights)

	weight := logH - math.Log2(dt) + math.Log2(target)

	if h.MaxDeltaWeightRule {
		// dw is measured against the newest sampled block's weight (the
		// block closest to the tip), not the oldest: difficulty.py computes
		// weights[-1] after reversing its window to oldest-first, so index
		// -1 lands on the newest block, not the oldest.
		lastWeight := newest.Weight
		dw := weight - lastWeight
		if dw > maxDW {
			weight = lastWeight + maxDW
		} else if dw < -maxDW {
			weight = lastWeight - maxDW
		}
	}

	if weight < minWeight {
		weight = minWeight
	}
	return weight
}

// LWMA is the linearly-weighted moving average DAA, ported from
// hathor-core's LWMA class (the variant that indexes solvetimes[i] inside
// the accumulation loop, the historically-correct variant per the design
// notes' open question about a solvetimes[1] vs solvetimes[i] discrepancy).
type LWMA struct {
	N         int
	Target    float64
	FTL       float64 // future time limit, clamps a solvetime's lower bound (as -FTL)
	PTL       float64 // past time limit, clamps a solvetime's upper bound
	MinWeight float64
	ClampTimelocks bool
	Harmonic  bool
	adjust    float64
}

// Defaults for LWMA, taken from hathor-core's LWMA class constants.
const (
	LWMADefaultN      = 134
	LWMADefaultTarget = 30.0
	LWMADefaultFTL    = 300.0
	LWMADefaultPTL    = 300.0
	lwmaAdjust        = 0.998
)

// NewLWMA returns an LWMA DAA configured with hathor-core's defaults.
func NewLWMA() *LWMA {
	return &LWMA{
		N:              LWMADefaultN,
		Target:         LWMADefaultTarget,
		FTL:            LWMADefaultFTL,
		PTL:            LWMADefaultPTL,
		MinWeight:      DefaultMinWeight,
		ClampTimelocks: true,
		Harmonic:       true,
		adjust:         lwmaAdjust,
	}
}

// NextWeight implements Algorithm. blocks must be ordered newest-first.
func (l *LWMA) NextWeight(blocks []BlockSample) float64 {
	n := l.N
	if n == 0 {
		n = LWMADefaultN
	}
	target := l.Target
	if target == 0 {
		target = LWMADefaultTarget
	}
	minWeight := l.MinWeight
	if minWeight == 0 {
		minWeight = DefaultMinWeight
	}
	adjust := l.adjust
	if adjust == 0 {
		adjust = lwmaAdjust
	}
	minLWMA := target / 4

	take := blocks
	if len(take) > n+1 {
		take = take[:n+1]
	}
	if len(take) < 3 {
		return minWeight
	}

	// Oldest-first, pairing consecutive blocks into (solvetime, difficulty).
	solvetimes := make([]float64, 0, len(take)-1)
	difficulties := make([]float64, 0, len(take)-1)
	for i := len(take) - 1; i > 0; i-- {
		older := take[i]
		newer := take[i-1]
		solvetimes = append(solvetimes, float64(newer.Timestamp-older.Timestamp))
		difficulties = append(difficulties, dagmath.WeightToWork(newer.Weight))
	}

	windowN := n
	if len(solvetimes) < windowN {
		windowN = len(solvetimes) - 1
		if windowN < 1 {
			return minWeight
		}
	}

	k := float64(windowN*(windowN+1)) / 2

	lwma := 0.0
	sumInverseDiff := 0.0
	sumDiff := 0.0
	for i := 0; i < windowN; i++ {
		solvetime := solvetimes[i]
		if l.ClampTimelocks {
			if solvetime > l.PTL {
				solvetime = l.PTL
			}
			if solvetime < -l.FTL {
				solvetime = -l.FTL
			}
		}
		difficulty := difficulties[i]
		lwma += solvetime * float64(i+1) / k
		sumInverseDiff += 1 / difficulty
		sumDiff += difficulty
	}

	harmonicMeanDiff := float64(windowN) / sumInverseDiff
	arithmeticMeanDiff := sumDiff / float64(windowN)
	meanDiff := arithmeticMeanDiff
	if l.Harmonic {
		meanDiff = harmonicMeanDiff
	}

	if lwma < minLWMA {
		lwma = minLWMA
	}

	nextDiff := meanDiff * target / lwma * adjust
	return dagmath.WorkToWeight(nextDiff)
}
