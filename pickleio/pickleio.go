// Package pickleio loads WaveformSets from the pickled exports produced by
// the Python analysis tooling: a top-level dict with a 'time_step_ns' float
// and a 'waveforms' list of per-waveform dicts. Reading is all the pickle
// layer offers; saving goes through hdf5io.
package pickleio

import (
	"fmt"
	"os"

	"github.com/nlpodyssey/gopickle/pickle"
	"github.com/nlpodyssey/gopickle/types"

	"github.com/dunepds/waffles"
)

// Load reads a pickled WaveformSet export.
func Load(path string) (*waffles.WaveformSet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	obj, err := pickle.Load(path)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a readable pickle file: %w", path, err)
	}
	top, ok := obj.(*types.Dict)
	if !ok {
		return nil, fmt.Errorf("'%s' unpickles to %T, want a dict", path, obj)
	}

	timeStep, err := dictFloat(top, "time_step_ns")
	if err != nil {
		return nil, fmt.Errorf("'%s': %w", path, err)
	}
	rawWfs, ok := top.Get("waveforms")
	if !ok {
		return nil, fmt.Errorf("'%s': missing 'waveforms' entry", path)
	}
	list, ok := rawWfs.(*types.List)
	if !ok {
		return nil, fmt.Errorf("'%s': 'waveforms' is %T, want a list", path, rawWfs)
	}

	wfs := make([]*waffles.Waveform, 0, list.Len())
	for i := 0; i < list.Len(); i++ {
		entry, ok := list.Get(i).(*types.Dict)
		if !ok {
			return nil, fmt.Errorf("'%s': waveform %d is %T, want a dict", path, i, list.Get(i))
		}
		wf, err := waveformFromDict(entry, timeStep)
		if err != nil {
			return nil, fmt.Errorf("'%s': waveform %d: %w", path, i, err)
		}
		wfs = append(wfs, wf)
	}
	ws, err := waffles.NewWaveformSet(wfs)
	if err != nil {
		return nil, fmt.Errorf("'%s' does not deserialize to a WaveformSet: %w", path, err)
	}
	return ws, nil
}

func waveformFromDict(d *types.Dict, timeStep float64) (*waffles.Waveform, error) {
	rawAdcs, ok := d.Get("adcs")
	if !ok {
		return nil, fmt.Errorf("missing 'adcs' entry")
	}
	adcsList, ok := rawAdcs.(*types.List)
	if !ok {
		return nil, fmt.Errorf("'adcs' is %T, want a list", rawAdcs)
	}
	adcs := make([]float64, adcsList.Len())
	for i := range adcs {
		v, err := asFloat(adcsList.Get(i))
		if err != nil {
			return nil, fmt.Errorf("adcs[%d]: %w", i, err)
		}
		adcs[i] = v
	}

	timestamp, err := dictInt(d, "timestamp")
	if err != nil {
		return nil, err
	}
	daqTimestamp, err := dictInt(d, "daq_window_timestamp")
	if err != nil {
		return nil, err
	}
	runNumber, err := dictInt(d, "run_number")
	if err != nil {
		return nil, err
	}
	recordNumber, err := dictInt(d, "record_number")
	if err != nil {
		return nil, err
	}
	endpoint, err := dictInt(d, "endpoint")
	if err != nil {
		return nil, err
	}
	channel, err := dictInt(d, "channel")
	if err != nil {
		return nil, err
	}
	// time_offset is optional in the exports; absent means aligned.
	var timeOffset int64
	if _, ok := d.Get("time_offset"); ok {
		timeOffset, err = dictInt(d, "time_offset")
		if err != nil {
			return nil, err
		}
	}
	return waffles.NewWaveform(timestamp, timeStep, daqTimestamp, adcs,
		int(runNumber), int(recordNumber), int(endpoint), int(channel), int(timeOffset))
}

func dictFloat(d *types.Dict, key string) (float64, error) {
	v, ok := d.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing '%s' entry", key)
	}
	return asFloat(v)
}

func dictInt(d *types.Dict, key string) (int64, error) {
	v, ok := d.Get(key)
	if !ok {
		return 0, fmt.Errorf("missing '%s' entry", key)
	}
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	}
	return 0, fmt.Errorf("'%s' unpickles to %T, want an integer", key, v)
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	}
	return 0, fmt.Errorf("value unpickles to %T, want a number", v)
}
