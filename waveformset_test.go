package waffles

import (
	"errors"
	"testing"
)

// testWaveform builds a waveform with the given identity and a small ramp of
// samples so that analyses have something to chew on.
func testWaveform(t *testing.T, endpoint, channel int, adcs []float64) *Waveform {
	t.Helper()
	if adcs == nil {
		adcs = []float64{100, 100, 100, 100, 90, 80, 90, 100}
	}
	wf, err := NewWaveform(1000, 16.0, 990, adcs, 27901, 1, endpoint, channel, 0)
	if err != nil {
		t.Fatalf("NewWaveform: %v", err)
	}
	return wf
}

func TestWaveformSetPreservesOrder(t *testing.T) {
	wfs := []*Waveform{
		testWaveform(t, 104, 7, nil),
		testWaveform(t, 104, 5, nil),
		testWaveform(t, 109, 0, nil),
	}
	ws, err := NewWaveformSet(wfs)
	if err != nil {
		t.Fatalf("NewWaveformSet: %v", err)
	}
	got := ws.Waveforms()
	if len(got) != len(wfs) {
		t.Fatalf("NWaveforms = %d, want %d", len(got), len(wfs))
	}
	for i := range wfs {
		if got[i] != wfs[i] {
			t.Errorf("waveform %d out of order", i)
		}
	}
	if ws.PointsPerWf() != 8 {
		t.Errorf("PointsPerWf = %d, want 8", ws.PointsPerWf())
	}
}

func TestWaveformSetRejectsEmptyInput(t *testing.T) {
	_, err := NewWaveformSet(nil)
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("empty input gives %v, want ErrMalformedInput", err)
	}
}

func TestWaveformSetRejectsRaggedLengths(t *testing.T) {
	wfs := []*Waveform{
		testWaveform(t, 104, 7, []float64{1, 2, 3, 4}),
		testWaveform(t, 104, 5, []float64{1, 2, 3, 4, 5}),
	}
	_, err := NewWaveformSet(wfs)
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("ragged lengths give %v, want ErrMalformedInput", err)
	}
}

func TestWaveformSetRejectsMixedTimeSteps(t *testing.T) {
	a := testWaveform(t, 104, 7, nil)
	b := testWaveform(t, 104, 5, nil)
	b.TimeStepNS = 32.0
	_, err := NewWaveformSet([]*Waveform{a, b})
	if !errors.Is(err, ErrMalformedInput) {
		t.Errorf("mixed time steps give %v, want ErrMalformedInput", err)
	}
}

func TestFilterKeepsMatchesInOrder(t *testing.T) {
	wfs := []*Waveform{
		testWaveform(t, 104, 7, nil),
		testWaveform(t, 109, 0, nil),
		testWaveform(t, 104, 5, nil),
		testWaveform(t, 109, 1, nil),
	}
	ws, err := NewWaveformSet(wfs)
	if err != nil {
		t.Fatalf("NewWaveformSet: %v", err)
	}
	sub, err := ws.Filter(func(wf *Waveform) bool { return wf.Endpoint == 109 })
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	got := sub.Waveforms()
	if len(got) != 2 || got[0] != wfs[1] || got[1] != wfs[3] {
		t.Errorf("Filter kept wrong waveforms or wrong order: %v", got)
	}
	// The original set is untouched.
	if ws.NWaveforms() != 4 {
		t.Errorf("source set mutated: NWaveforms = %d, want 4", ws.NWaveforms())
	}
}

func TestFilterWithNoMatchFails(t *testing.T) {
	ws, err := NewWaveformSet([]*Waveform{testWaveform(t, 104, 7, nil)})
	if err != nil {
		t.Fatalf("NewWaveformSet: %v", err)
	}
	_, err = ws.Filter(func(wf *Waveform) bool { return false })
	if !errors.Is(err, ErrEmptyResult) {
		t.Errorf("no-match filter gives %v, want ErrEmptyResult", err)
	}
}

func TestChannelCountsAndIndexes(t *testing.T) {
	wfs := []*Waveform{
		testWaveform(t, 104, 7, nil),
		testWaveform(t, 104, 7, nil),
		testWaveform(t, 104, 5, nil),
	}
	ws, err := NewWaveformSet(wfs)
	if err != nil {
		t.Fatalf("NewWaveformSet: %v", err)
	}
	counts := ws.ChannelCounts()
	if counts[UniqueChannel{104, 7}] != 2 || counts[UniqueChannel{104, 5}] != 1 {
		t.Errorf("ChannelCounts = %v", counts)
	}
	if runs := ws.Runs(); len(runs) != 1 || runs[0] != 27901 {
		t.Errorf("Runs = %v, want [27901]", runs)
	}
	if chans := ws.AvailableChannels(27901, 104); len(chans) != 2 || chans[0] != 5 || chans[1] != 7 {
		t.Errorf("AvailableChannels = %v, want [5 7]", chans)
	}
	if eps := ws.Endpoints(); len(eps) != 1 || eps[0] != 104 {
		t.Errorf("Endpoints = %v, want [104]", eps)
	}
}

func TestMeanWaveform(t *testing.T) {
	wfs := []*Waveform{
		testWaveform(t, 104, 7, []float64{0, 0, 0, 0}),
		testWaveform(t, 104, 5, []float64{2, 4, 6, 8}),
	}
	ws, err := NewWaveformSet(wfs)
	if err != nil {
		t.Fatalf("NewWaveformSet: %v", err)
	}
	mean, err := ws.MeanWaveform()
	if err != nil {
		t.Fatalf("MeanWaveform: %v", err)
	}
	want := []float64{1, 2, 3, 4}
	for i, v := range mean.Adcs() {
		if v != want[i] {
			t.Errorf("mean[%d] = %v, want %v", i, v, want[i])
		}
	}
	if _, err := ws.MeanWaveform(0, 99); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("out-of-range index gives %v, want ErrMalformedInput", err)
	}
}

func TestMerge(t *testing.T) {
	a, err := NewWaveformSet([]*Waveform{testWaveform(t, 104, 7, nil)})
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewWaveformSet([]*Waveform{testWaveform(t, 104, 5, nil)})
	if err != nil {
		t.Fatal(err)
	}
	merged, err := a.Merge(b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.NWaveforms() != 2 {
		t.Errorf("merged NWaveforms = %d, want 2", merged.NWaveforms())
	}
}
