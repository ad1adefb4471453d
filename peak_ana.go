package waffles

// WfPeak is one peak found within a waveform.
type WfPeak struct {
	// Position is the sample index of the peak extremum.
	Position int

	// CrossingTicks is the threshold-crossing time that opened this peak,
	// in sample ticks, linearly interpolated between the last sample above
	// threshold and the first one below.
	CrossingTicks float64

	// Amplitude is the peak depth below the baseline, in ADC counts.
	Amplitude float64
}

// PeakFindingWfAna extends BasicWfAna with a threshold-crossing peak search
// over the integration window. A peak opens when the signal drops more than
// Threshold counts below the baseline and closes when it recovers; the
// crossing time is interpolated between the two straddling samples.
type PeakFindingWfAna struct {
	BasicWfAna

	// Threshold is the depth below baseline, in ADC counts, that a sample
	// must reach to open a peak. Must be positive.
	Threshold float64
}

// NewPeakFindingWfAna reads the BasicWfAna configuration plus the
// 'threshold' (float64) key.
func NewPeakFindingWfAna(params IPDict) (*PeakFindingWfAna, error) {
	basic, err := NewBasicWfAna(params)
	if err != nil {
		return nil, err
	}
	threshold, err := params.Float("threshold")
	if err != nil {
		return nil, err
	}
	return &PeakFindingWfAna{BasicWfAna: *basic, Threshold: threshold}, nil
}

// Analyse runs the basic analysis, then scans the integration window for
// peaks. The returned WfAna carries the BasicWfAna results plus 'peaks'
// ([]WfPeak) and 'npeaks' (int).
func (p *PeakFindingWfAna) Analyse(wf *WaveformAdcs) (*WfAna, error) {
	ana, err := p.BasicWfAna.Analyse(wf)
	if err != nil {
		return nil, err
	}
	baseline, err := ana.Result.Float("baseline")
	if err != nil {
		return nil, err
	}

	adcs := wf.Adcs()
	off := wf.TimeOffset
	lo := wf.ConfineIndex(p.IntLl - off)
	hi := wf.ConfineIndex(p.IntUl-off) + 1
	level := baseline - p.Threshold

	var peaks []WfPeak
	inPeak := false
	var cur WfPeak
	for i := lo; i < hi; i++ {
		below := adcs[i] < level
		switch {
		case below && !inPeak:
			inPeak = true
			cur = WfPeak{Position: i, Amplitude: baseline - adcs[i]}
			cur.CrossingTicks = float64(i)
			if i > lo && adcs[i-1] != adcs[i] {
				// Interpolate where the signal crossed the level
				// between samples i-1 and i.
				cur.CrossingTicks = float64(i-1) + (adcs[i-1]-level)/(adcs[i-1]-adcs[i])
			}
		case below && inPeak:
			if depth := baseline - adcs[i]; depth > cur.Amplitude {
				cur.Amplitude = depth
				cur.Position = i
			}
		case !below && inPeak:
			inPeak = false
			peaks = append(peaks, cur)
		}
	}
	if inPeak {
		peaks = append(peaks, cur)
	}

	ana.InputParameters["threshold"] = p.Threshold
	ana.Result["peaks"] = peaks
	ana.Result["npeaks"] = len(peaks)
	return ana, nil
}
