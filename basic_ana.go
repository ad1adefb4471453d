package waffles

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// BasicWfAna is the workhorse per-waveform analysis: a median baseline over
// one or more sample windows, a baseline-referenced integral and a peak-to-
// peak amplitude. Signal pulses are assumed to be negative-going, so the
// integral is computed as baseline minus samples.
//
// All window limits are iterator values into the nominal [0, NPoints) range;
// each waveform's TimeOffset is subtracted before slicing, so a common set of
// limits can be applied across a channel despite per-waveform alignment.
type BasicWfAna struct {
	// BaselineLimits holds an even number of values, pairwise [lo, hi)
	// windows with BaselineLimits[i] < BaselineLimits[i+1].
	BaselineLimits []int

	// IntLl and IntUl bound the integration window, both inclusive.
	IntLl, IntUl int

	// AmpLl and AmpUl bound the amplitude window, both inclusive.
	AmpLl, AmpUl int
}

// NewBasicWfAna reads the analysis configuration from an IPDict with keys
// 'baseline_limits' ([]int), 'int_ll', 'int_ul', 'amp_ll' and 'amp_ul'
// (int). Well-formedness of the limits is checked separately by
// CheckInputParameters, once per waveform set rather than once per waveform.
func NewBasicWfAna(params IPDict) (*BasicWfAna, error) {
	bl, err := params.Ints("baseline_limits")
	if err != nil {
		return nil, err
	}
	intLl, err := params.Int("int_ll")
	if err != nil {
		return nil, err
	}
	intUl, err := params.Int("int_ul")
	if err != nil {
		return nil, err
	}
	ampLl, err := params.Int("amp_ll")
	if err != nil {
		return nil, err
	}
	ampUl, err := params.Int("amp_ul")
	if err != nil {
		return nil, err
	}
	return &BasicWfAna{
		BaselineLimits: bl,
		IntLl:          intLl,
		IntUl:          intUl,
		AmpLl:          ampLl,
		AmpUl:          ampUl,
	}, nil
}

// CheckInputParameters verifies that the configured windows fit waveforms of
// pointsNo samples. It is meant to run once before analysing a whole set,
// since the same configuration is applied to every member.
func (b *BasicWfAna) CheckInputParameters(pointsNo int) error {
	bl := b.BaselineLimits
	if len(bl) == 0 || len(bl)%2 != 0 {
		return fmt.Errorf("baseline limits %v must hold an even, positive number of values", bl)
	}
	if bl[0] < 0 || bl[len(bl)-1] > pointsNo-1 {
		return fmt.Errorf("baseline limits %v exceed the [0, %d] range", bl, pointsNo-1)
	}
	for i := 0; i+1 < len(bl); i++ {
		if bl[i] >= bl[i+1] {
			return fmt.Errorf("baseline limits %v are not strictly increasing", bl)
		}
	}
	if b.IntLl < 0 || b.IntLl >= b.IntUl || b.IntUl > pointsNo-1 {
		return fmt.Errorf("integration window (%d, %d) is not a subset of [0, %d)",
			b.IntLl, b.IntUl, pointsNo)
	}
	if b.AmpLl < 0 || b.AmpLl >= b.AmpUl || b.AmpUl > pointsNo-1 {
		return fmt.Errorf("amplitude window (%d, %d) is not a subset of [0, %d)",
			b.AmpLl, b.AmpUl, pointsNo)
	}
	return nil
}

// Analyse computes the baseline, integral and amplitude of wf and returns
// them in a fresh WfAna under the result keys 'baseline', 'integral' and
// 'amplitude'. The window limits are assumed to have been validated against
// wf's length; out-of-range limits after the TimeOffset shift are clamped.
func (b *BasicWfAna) Analyse(wf *WaveformAdcs) (*WfAna, error) {
	adcs := wf.Adcs()
	off := wf.TimeOffset

	var blSamples []float64
	for i := 0; i+1 < len(b.BaselineLimits); i += 2 {
		lo := wf.ConfineIndex(b.BaselineLimits[i] - off)
		hi := wf.ConfineIndex(b.BaselineLimits[i+1]-off-1) + 1
		blSamples = append(blSamples, adcs[lo:hi]...)
	}
	sort.Float64s(blSamples)
	baseline := stat.Quantile(0.5, stat.Empirical, blSamples, nil)

	intLo := wf.ConfineIndex(b.IntLl - off)
	intHi := wf.ConfineIndex(b.IntUl-off) + 1
	// The pulse is negative-going: integrate baseline-minus-samples so
	// that larger light yields give larger integrals.
	integral := wf.TimeStepNS * (float64(intHi-intLo)*baseline - floats.Sum(adcs[intLo:intHi]))

	ampLo := wf.ConfineIndex(b.AmpLl - off)
	ampHi := wf.ConfineIndex(b.AmpUl-off) + 1
	amplitude := floats.Max(adcs[ampLo:ampHi]) - floats.Min(adcs[ampLo:ampHi])

	return &WfAna{
		InputParameters: IPDict{
			"baseline_limits": b.BaselineLimits,
			"int_ll":          b.IntLl,
			"int_ul":          b.IntUl,
			"amp_ll":          b.AmpLl,
			"amp_ul":          b.AmpUl,
		},
		Result: ORDict{
			"baseline":  baseline,
			"integral":  integral,
			"amplitude": amplitude,
		},
	}, nil
}
