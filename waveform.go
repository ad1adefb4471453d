package waffles

import (
	"fmt"
)

// WaveformAdcs holds the digitized sample sequence of one waveform plus the
// timing metadata needed to interpret it. It carries no acquisition identity,
// so derived waveforms (e.g. the mean over a channel) can be analysed with
// the same tools as real ones. Analysis results are attached under
// caller-chosen labels; the raw samples are only ever modified by an explicit
// call to SubtractBaseline.
type WaveformAdcs struct {
	// TimeStepNS is the sampling period in nanoseconds. Always positive.
	TimeStepNS float64

	// TimeOffset is a relative alignment among waveforms, in ticks of
	// TimeStepNS. It is semipositive and smaller than len(adcs)-1, which
	// keeps at least two points usable for baselines and amplitudes.
	TimeOffset int

	adcs []float64

	analyses  map[string]*WfAna
	anaLabels []string // attachment order, oldest first
}

// NewWaveformAdcs builds a WaveformAdcs from a sample sequence. The slice is
// owned by the returned value afterwards.
func NewWaveformAdcs(timeStepNS float64, adcs []float64, timeOffset int) (*WaveformAdcs, error) {
	if timeStepNS <= 0 {
		return nil, fmt.Errorf("%w: time step (%v ns) must be positive", ErrMalformedInput, timeStepNS)
	}
	if len(adcs) < 2 {
		return nil, fmt.Errorf("%w: a waveform needs at least 2 samples, got %d", ErrMalformedInput, len(adcs))
	}
	if timeOffset < 0 || timeOffset >= len(adcs)-1 {
		return nil, fmt.Errorf("%w: time offset (%d) must belong to [0, %d]",
			ErrMalformedInput, timeOffset, len(adcs)-2)
	}
	return &WaveformAdcs{
		TimeStepNS: timeStepNS,
		TimeOffset: timeOffset,
		adcs:       adcs,
	}, nil
}

// Adcs returns the sample sequence. The slice is a view into the waveform's
// own storage: callers must not modify it except through SubtractBaseline.
func (wa *WaveformAdcs) Adcs() []float64 { return wa.adcs }

// NPoints returns the number of samples.
func (wa *WaveformAdcs) NPoints() int { return len(wa.adcs) }

// ConfineIndex clamps i to the valid sample range [0, NPoints-1].
func (wa *WaveformAdcs) ConfineIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(wa.adcs) {
		return len(wa.adcs) - 1
	}
	return i
}

// Analyse runs the given analyzer on this waveform and attaches the produced
// WfAna under label. Re-using a label overwrites the previous attachment:
// last write wins, there is no versioning. The attached WfAna is returned.
func (wa *WaveformAdcs) Analyse(label string, az WfAnalyzer) (*WfAna, error) {
	ana, err := az.Analyse(wa)
	if err != nil {
		return nil, err
	}
	if wa.analyses == nil {
		wa.analyses = make(map[string]*WfAna)
	}
	if _, existed := wa.analyses[label]; !existed {
		wa.anaLabels = append(wa.anaLabels, label)
	}
	wa.analyses[label] = ana
	return ana, nil
}

// GetAnalysis returns the analysis attached under label. An empty label
// selects the most recently attached analysis.
func (wa *WaveformAdcs) GetAnalysis(label string) (*WfAna, error) {
	if label == "" {
		if len(wa.anaLabels) == 0 {
			return nil, fmt.Errorf("%w: the waveform has not been analysed yet", ErrMissingAnalysis)
		}
		return wa.analyses[wa.anaLabels[len(wa.anaLabels)-1]], nil
	}
	ana, ok := wa.analyses[label]
	if !ok {
		return nil, fmt.Errorf("%w: there is no analysis with label '%s'; available: %v",
			ErrMissingAnalysis, label, wa.anaLabels)
	}
	return ana, nil
}

// AnalysisLabels returns the attached analysis labels in attachment order.
func (wa *WaveformAdcs) AnalysisLabels() []string {
	out := make([]string, len(wa.anaLabels))
	copy(out, wa.anaLabels)
	return out
}

// SubtractBaseline overwrites the samples in place with samples-baseline,
// where the baseline is taken from the 'baseline' key of the analysis
// attached under label. The sample count is preserved. Subtracting a
// baseline of 0 leaves the waveform unchanged.
func (wa *WaveformAdcs) SubtractBaseline(label string) error {
	ana, err := wa.GetAnalysis(label)
	if err != nil {
		return err
	}
	baseline, err := ana.Result.Float("baseline")
	if err != nil {
		return fmt.Errorf("%w: analysis '%s' carries no baseline: %v", ErrMissingAnalysis, label, err)
	}
	for i := range wa.adcs {
		wa.adcs[i] -= baseline
	}
	return nil
}

// truncate keeps only the first n samples. Values of n beyond the current
// length leave the waveform unchanged.
func (wa *WaveformAdcs) truncate(n int) {
	if n < len(wa.adcs) {
		wa.adcs = wa.adcs[:n]
	}
}

// Waveform is a WaveformAdcs plus the acquisition identity assigned by the
// DAQ: where it came from (run, record, endpoint, channel) and when
// (its own timestamp and the timestamp of the DAQ window that contained it).
// The identity fields are fixed at construction.
type Waveform struct {
	WaveformAdcs

	Timestamp          int64
	DAQWindowTimestamp int64
	RunNumber          int
	RecordNumber       int
	Endpoint           int
	Channel            int
}

// NewWaveform builds a Waveform. The adcs slice is owned by the returned
// value afterwards.
func NewWaveform(timestamp int64, timeStepNS float64, daqWindowTimestamp int64,
	adcs []float64, runNumber, recordNumber, endpoint, channel, timeOffset int) (*Waveform, error) {

	wa, err := NewWaveformAdcs(timeStepNS, adcs, timeOffset)
	if err != nil {
		return nil, err
	}
	if timestamp < 0 {
		return nil, fmt.Errorf("%w: timestamp (%d) must be semipositive", ErrMalformedInput, timestamp)
	}
	if endpoint < 0 || channel < 0 {
		return nil, fmt.Errorf("%w: endpoint (%d) and channel (%d) must be semipositive",
			ErrMalformedInput, endpoint, channel)
	}
	return &Waveform{
		WaveformAdcs:       *wa,
		Timestamp:          timestamp,
		DAQWindowTimestamp: daqWindowTimestamp,
		RunNumber:          runNumber,
		RecordNumber:       recordNumber,
		Endpoint:           endpoint,
		Channel:            channel,
	}, nil
}

// UniqueChannel returns the channel identity of this waveform.
func (w *Waveform) UniqueChannel() UniqueChannel {
	return UniqueChannel{Endpoint: w.Endpoint, Channel: w.Channel}
}

// TriggerOffset is the waveform timestamp relative to its DAQ window start,
// in timestamp ticks.
func (w *Waveform) TriggerOffset() int64 {
	return w.Timestamp - w.DAQWindowTimestamp
}
