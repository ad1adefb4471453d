package waffles

import (
	"fmt"
	"sort"
)

// WaveformSet owns an ordered collection of waveforms and serves derived
// views of it: run/record/channel indexes, filtered subsets, the mean
// waveform. The collection is never mutated behind the caller's back; the
// only in-place mutation offered anywhere is the per-waveform explicit
// baseline subtraction.
//
// A well-formed set is non-empty, and all members have the same number of
// samples and the same sampling period. Both are checked at construction.
type WaveformSet struct {
	waveforms   []*Waveform
	pointsPerWf int

	runs              map[int]struct{}
	recordNumbers     map[int]map[int]struct{}         // run -> record numbers
	availableChannels map[int]map[int]map[int]struct{} // run -> endpoint -> channels
}

// NewWaveformSet builds a WaveformSet from a non-empty list of waveforms,
// preserving their order. The input slice is copied.
func NewWaveformSet(waveforms []*Waveform) (*WaveformSet, error) {
	if len(waveforms) == 0 {
		return nil, fmt.Errorf("%w: there must be at least one waveform in the set", ErrMalformedInput)
	}
	points := waveforms[0].NPoints()
	step := waveforms[0].TimeStepNS
	for i, wf := range waveforms {
		if wf.NPoints() != points {
			return nil, fmt.Errorf("%w: waveform %d has %d points, want %d (length is not homogeneous)",
				ErrMalformedInput, i, wf.NPoints(), points)
		}
		if wf.TimeStepNS != step {
			return nil, fmt.Errorf("%w: waveform %d has time step %v ns, want %v ns",
				ErrMalformedInput, i, wf.TimeStepNS, step)
		}
	}
	ws := &WaveformSet{
		waveforms:   append([]*Waveform(nil), waveforms...),
		pointsPerWf: points,
	}
	ws.rebuildIndexes()
	return ws, nil
}

func (ws *WaveformSet) rebuildIndexes() {
	ws.runs = make(map[int]struct{})
	ws.recordNumbers = make(map[int]map[int]struct{})
	ws.availableChannels = make(map[int]map[int]map[int]struct{})
	for _, wf := range ws.waveforms {
		ws.runs[wf.RunNumber] = struct{}{}

		recs := ws.recordNumbers[wf.RunNumber]
		if recs == nil {
			recs = make(map[int]struct{})
			ws.recordNumbers[wf.RunNumber] = recs
		}
		recs[wf.RecordNumber] = struct{}{}

		eps := ws.availableChannels[wf.RunNumber]
		if eps == nil {
			eps = make(map[int]map[int]struct{})
			ws.availableChannels[wf.RunNumber] = eps
		}
		chans := eps[wf.Endpoint]
		if chans == nil {
			chans = make(map[int]struct{})
			eps[wf.Endpoint] = chans
		}
		chans[wf.Channel] = struct{}{}
	}
}

// Waveforms returns the members in their original order. The slice is a
// read-only view; callers must not rearrange or replace its elements.
func (ws *WaveformSet) Waveforms() []*Waveform { return ws.waveforms }

// NWaveforms returns the number of waveforms in the set.
func (ws *WaveformSet) NWaveforms() int { return len(ws.waveforms) }

// PointsPerWf returns the common sample count of the members.
func (ws *WaveformSet) PointsPerWf() int { return ws.pointsPerWf }

// TimeStepNS returns the common sampling period of the members.
func (ws *WaveformSet) TimeStepNS() float64 { return ws.waveforms[0].TimeStepNS }

// Runs returns the sorted run numbers represented in the set.
func (ws *WaveformSet) Runs() []int {
	return sortedKeys(ws.runs)
}

// RecordNumbers returns, for the given run, the sorted record numbers for
// which the set holds at least one waveform.
func (ws *WaveformSet) RecordNumbers(run int) []int {
	return sortedKeys(ws.recordNumbers[run])
}

// Endpoints returns the sorted endpoints represented in the set, collapsed
// over runs.
func (ws *WaveformSet) Endpoints() []int {
	eps := make(map[int]struct{})
	for _, byEndpoint := range ws.availableChannels {
		for ep := range byEndpoint {
			eps[ep] = struct{}{}
		}
	}
	return sortedKeys(eps)
}

// AvailableChannels returns the sorted channels of the given endpoint within
// the given run. An unknown run or endpoint yields an empty slice.
func (ws *WaveformSet) AvailableChannels(run, endpoint int) []int {
	return sortedKeys(ws.availableChannels[run][endpoint])
}

// ChannelCounts returns the number of member waveforms per unique channel.
func (ws *WaveformSet) ChannelCounts() map[UniqueChannel]int {
	out := make(map[UniqueChannel]int)
	for _, wf := range ws.waveforms {
		out[wf.UniqueChannel()]++
	}
	return out
}

// Filter returns a new WaveformSet holding, in original relative order,
// every waveform for which pred returns true. If no waveform matches, the
// error wraps ErrEmptyResult instead of silently producing an empty set.
func (ws *WaveformSet) Filter(pred func(*Waveform) bool) (*WaveformSet, error) {
	var kept []*Waveform
	for _, wf := range ws.waveforms {
		if pred(wf) {
			kept = append(kept, wf)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no waveform passed the filter (set had %d)",
			ErrEmptyResult, len(ws.waveforms))
	}
	out := &WaveformSet{waveforms: kept, pointsPerWf: ws.pointsPerWf}
	out.rebuildIndexes()
	return out, nil
}

// Merge returns a new WaveformSet holding the members of ws followed by the
// members of other. Both sets must agree on sample count and period.
func (ws *WaveformSet) Merge(other *WaveformSet) (*WaveformSet, error) {
	combined := make([]*Waveform, 0, len(ws.waveforms)+len(other.waveforms))
	combined = append(combined, ws.waveforms...)
	combined = append(combined, other.waveforms...)
	return NewWaveformSet(combined)
}

// Analyse runs the analyzer on every member waveform and attaches the result
// under label. It stops at the first failing waveform.
func (ws *WaveformSet) Analyse(label string, az WfAnalyzer) error {
	for i, wf := range ws.waveforms {
		if _, err := wf.Analyse(label, az); err != nil {
			return fmt.Errorf("analysing waveform %d: %w", i, err)
		}
	}
	return nil
}

// MeanWaveform returns the sample-wise mean over the members selected by
// indices, or over all members when no index is given. The result carries
// the set's sampling period, a zero time offset and no analyses.
func (ws *WaveformSet) MeanWaveform(indices ...int) (*WaveformAdcs, error) {
	if len(indices) == 0 {
		indices = make([]int, len(ws.waveforms))
		for i := range indices {
			indices[i] = i
		}
	}
	mean := make([]float64, ws.pointsPerWf)
	for _, idx := range indices {
		if idx < 0 || idx >= len(ws.waveforms) {
			return nil, fmt.Errorf("%w: waveform index %d outside [0, %d)",
				ErrMalformedInput, idx, len(ws.waveforms))
		}
		adcs := ws.waveforms[idx].Adcs()
		for i, v := range adcs {
			mean[i] += v
		}
	}
	n := float64(len(indices))
	for i := range mean {
		mean[i] /= n
	}
	return NewWaveformAdcs(ws.TimeStepNS(), mean, 0)
}

func sortedKeys(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
