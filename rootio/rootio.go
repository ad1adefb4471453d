// Package rootio loads WaveformSets from the ROOT files written by the
// waveform dumper: a 'raw_waveforms' TTree with one entry per waveform.
package rootio

import (
	"fmt"
	"os"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"

	"github.com/dunepds/waffles"
)

// TreeName is the waveform tree looked up inside the ROOT file.
const TreeName = "raw_waveforms"

type waveformEntry struct {
	Adcs         []float64 `groot:"adcs"`
	Timestamp    int64     `groot:"timestamp"`
	DAQTimestamp int64     `groot:"daq_window_timestamp"`
	TimeStepNS   float64   `groot:"time_step_ns"`
	RunNumber    int32     `groot:"run_number"`
	RecordNumber int32     `groot:"record_number"`
	Endpoint     int32     `groot:"endpoint"`
	Channel      int32     `groot:"channel"`
}

// Load reads every entry of the raw_waveforms tree into a WaveformSet.
func Load(path string) (*waffles.WaveformSet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	f, err := groot.Open(path)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a readable ROOT file: %w", path, err)
	}
	defer f.Close()

	obj, err := f.Get(TreeName)
	if err != nil {
		return nil, fmt.Errorf("'%s' holds no '%s' tree: %w", path, TreeName, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("'%s' object '%s' is %T, not a TTree", path, TreeName, obj)
	}

	var entry waveformEntry
	r, err := rtree.NewReader(tree, rtree.ReadVarsFromStruct(&entry))
	if err != nil {
		return nil, fmt.Errorf("cannot read tree '%s' of '%s': %w", TreeName, path, err)
	}
	defer r.Close()

	var wfs []*waffles.Waveform
	err = r.Read(func(ctx rtree.RCtx) error {
		samples := append([]float64(nil), entry.Adcs...)
		wf, err := waffles.NewWaveform(entry.Timestamp, entry.TimeStepNS, entry.DAQTimestamp,
			samples, int(entry.RunNumber), int(entry.RecordNumber),
			int(entry.Endpoint), int(entry.Channel), 0)
		if err != nil {
			return fmt.Errorf("entry %d: %w", ctx.Entry, err)
		}
		wfs = append(wfs, wf)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("'%s' does not deserialize to a WaveformSet: %w", path, err)
	}
	ws, err := waffles.NewWaveformSet(wfs)
	if err != nil {
		return nil, fmt.Errorf("'%s' does not deserialize to a WaveformSet: %w", path, err)
	}
	return ws, nil
}
