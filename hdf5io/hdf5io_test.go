package hdf5io

import (
	"path/filepath"
	"testing"

	"github.com/dunepds/waffles"
)

func makeSet(t *testing.T) *waffles.WaveformSet {
	t.Helper()
	var wfs []*waffles.Waveform
	for i := 0; i < 3; i++ {
		adcs := []float64{100, 100, 90, 80, 90, 100, 100, 100}
		adcs[3] -= float64(10 * i)
		wf, err := waffles.NewWaveform(int64(1000+i), 16.0, 990,
			adcs, 27901, i, 104, i, i%2)
		if err != nil {
			t.Fatal(err)
		}
		wfs = append(wfs, wf)
	}
	ws, err := waffles.NewWaveformSet(wfs)
	if err != nil {
		t.Fatal(err)
	}
	return ws
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ws := makeSet(t)
	path := filepath.Join(t.TempDir(), "waveforms.h5")

	if err := Save(ws, path, false); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if back.NWaveforms() != ws.NWaveforms() {
		t.Fatalf("NWaveforms = %d, want %d", back.NWaveforms(), ws.NWaveforms())
	}
	if back.PointsPerWf() != ws.PointsPerWf() {
		t.Errorf("PointsPerWf = %d, want %d", back.PointsPerWf(), ws.PointsPerWf())
	}
	if back.TimeStepNS() != ws.TimeStepNS() {
		t.Errorf("TimeStepNS = %v, want %v", back.TimeStepNS(), ws.TimeStepNS())
	}
	for i, want := range ws.Waveforms() {
		got := back.Waveforms()[i]
		if got.Timestamp != want.Timestamp ||
			got.DAQWindowTimestamp != want.DAQWindowTimestamp ||
			got.RunNumber != want.RunNumber ||
			got.RecordNumber != want.RecordNumber ||
			got.Endpoint != want.Endpoint ||
			got.Channel != want.Channel ||
			got.TimeOffset != want.TimeOffset {
			t.Errorf("waveform %d metadata does not round trip: got %+v", i, got)
		}
		for j, v := range got.Adcs() {
			if v != want.Adcs()[j] {
				t.Errorf("waveform %d sample %d = %v, want %v", i, j, v, want.Adcs()[j])
			}
		}
	}
}

func TestSaveRefusesToClobber(t *testing.T) {
	ws := makeSet(t)
	path := filepath.Join(t.TempDir(), "waveforms.h5")

	if err := Save(ws, path, false); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := Save(ws, path, false); err == nil {
		t.Error("second Save without overwrite succeeded")
	}
	if err := Save(ws, path, true); err != nil {
		t.Errorf("Save with overwrite: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "no-such.h5")); err == nil {
		t.Error("loading a missing file succeeded")
	}
}
