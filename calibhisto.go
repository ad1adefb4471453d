package waffles

import (
	"fmt"

	"go-hep.org/x/hep/hbook"
)

// CalibHistogram is the per-channel histogram used by calibration studies:
// one analysis result (typically the integral, in the LED-calibration case)
// histogrammed over every waveform of a channel. Entries falling outside the
// configured range are counted by hbook as under/overflow.
type CalibHistogram struct {
	// H is the underlying histogram.
	H *hbook.H1D

	// Label and Key identify the analysis result being histogrammed.
	Label, Key string

	// Filled is the number of values filled, one per waveform of the
	// source set.
	Filled int
}

// NewCalibHistogram histograms the result stored under (label, key) across
// every waveform of ws. A waveform lacking the label or the key fails the
// whole build: calibration requires a uniformly analysed set.
func NewCalibHistogram(ws *WaveformSet, label, key string, bins int, lo, hi float64) (*CalibHistogram, error) {
	if bins < 1 || hi <= lo {
		return nil, fmt.Errorf("%w: histogram binning (%d bins over [%v, %v]) is not well formed",
			ErrMalformedInput, bins, lo, hi)
	}
	ch := &CalibHistogram{
		H:     hbook.NewH1D(bins, lo, hi),
		Label: label,
		Key:   key,
	}
	for i, wf := range ws.Waveforms() {
		ana, err := wf.GetAnalysis(label)
		if err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
		v, err := ana.Result.Float(key)
		if err != nil {
			return nil, fmt.Errorf("waveform %d: %w", i, err)
		}
		ch.H.Fill(v, 1)
		ch.Filled++
	}
	return ch, nil
}

// GaussianEstimate returns a moment-based estimate of the dominant peak:
// the histogram mean and standard deviation. For single-peaked calibration
// spectra this seeds (or stands in for) a proper Gaussian fit.
func (ch *CalibHistogram) GaussianEstimate() (mu, sigma float64) {
	return ch.H.XMean(), ch.H.XStdDev()
}

// ComputeCalibHistograms builds one CalibHistogram per occupied grid cell,
// all with the same binning, keyed by grid position.
func (g *ChannelWsGrid) ComputeCalibHistograms(label, key string, bins int, lo, hi float64) (map[GridPosition]*CalibHistogram, error) {
	out := make(map[GridPosition]*CalibHistogram)
	err := g.EachCell(func(pos GridPosition, ws *WaveformSet) error {
		h, err := NewCalibHistogram(ws, label, key, bins, lo, hi)
		if err != nil {
			return fmt.Errorf("cell (%d, %d): %w", pos.Row, pos.Col, err)
		}
		out[pos] = h
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
