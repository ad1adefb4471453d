// Package hdf5io reads and writes WaveformSets in the structured HDF5
// layout used by the waveform dumpers: a flat file holding a 2-D 'adcs'
// dataset of shape (nwaveforms, points) plus 1-D per-waveform metadata
// datasets and a one-element 'time_step_ns' dataset.
package hdf5io

import (
	"fmt"
	"os"

	"gonum.org/v1/hdf5"

	"github.com/dunepds/waffles"
)

// Dataset names of the structured layout.
const (
	dsetAdcs          = "adcs"
	dsetTimestamps    = "timestamps"
	dsetDAQTimestamps = "daq_window_timestamps"
	dsetRunNumbers    = "run_numbers"
	dsetRecordNumbers = "record_numbers"
	dsetEndpoints     = "endpoints"
	dsetChannels      = "channels"
	dsetTimeOffsets   = "time_offsets"
	dsetTimeStep      = "time_step_ns"
)

// Save writes ws to path in the structured layout. If the destination
// already exists and overwrite is false, Save fails without touching it.
func Save(ws *waffles.WaveformSet, path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("destination '%s' exists and overwrite is false", path)
	}
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("could not create HDF5 file '%s': %w", path, err)
	}
	defer f.Close()

	wfs := ws.Waveforms()
	n := len(wfs)
	points := ws.PointsPerWf()

	adcs := make([]float64, 0, n*points)
	timestamps := make([]int64, n)
	daqTimestamps := make([]int64, n)
	runNumbers := make([]int64, n)
	recordNumbers := make([]int64, n)
	endpoints := make([]int64, n)
	channels := make([]int64, n)
	timeOffsets := make([]int64, n)
	for i, wf := range wfs {
		adcs = append(adcs, wf.Adcs()...)
		timestamps[i] = wf.Timestamp
		daqTimestamps[i] = wf.DAQWindowTimestamp
		runNumbers[i] = int64(wf.RunNumber)
		recordNumbers[i] = int64(wf.RecordNumber)
		endpoints[i] = int64(wf.Endpoint)
		channels[i] = int64(wf.Channel)
		timeOffsets[i] = int64(wf.TimeOffset)
	}

	if err := write2D(f, dsetAdcs, adcs, uint(n), uint(points)); err != nil {
		return err
	}
	for _, col := range []struct {
		name string
		data []int64
	}{
		{dsetTimestamps, timestamps},
		{dsetDAQTimestamps, daqTimestamps},
		{dsetRunNumbers, runNumbers},
		{dsetRecordNumbers, recordNumbers},
		{dsetEndpoints, endpoints},
		{dsetChannels, channels},
		{dsetTimeOffsets, timeOffsets},
	} {
		if err := write1DInt64(f, col.name, col.data); err != nil {
			return err
		}
	}
	return write1DFloat64(f, dsetTimeStep, []float64{ws.TimeStepNS()})
}

// Load reads a structured file back into a WaveformSet.
func Load(path string) (*waffles.WaveformSet, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open '%s': %w", path, err)
	}
	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("'%s' is not a readable HDF5 file: %w", path, err)
	}
	defer f.Close()

	adcs, dims, err := read2D(f, dsetAdcs)
	if err != nil {
		return nil, err
	}
	n, points := int(dims[0]), int(dims[1])

	timestamps, err := read1DInt64(f, dsetTimestamps, n)
	if err != nil {
		return nil, err
	}
	daqTimestamps, err := read1DInt64(f, dsetDAQTimestamps, n)
	if err != nil {
		return nil, err
	}
	runNumbers, err := read1DInt64(f, dsetRunNumbers, n)
	if err != nil {
		return nil, err
	}
	recordNumbers, err := read1DInt64(f, dsetRecordNumbers, n)
	if err != nil {
		return nil, err
	}
	endpoints, err := read1DInt64(f, dsetEndpoints, n)
	if err != nil {
		return nil, err
	}
	channels, err := read1DInt64(f, dsetChannels, n)
	if err != nil {
		return nil, err
	}
	timeOffsets, err := read1DInt64(f, dsetTimeOffsets, n)
	if err != nil {
		return nil, err
	}
	timeStep, err := read1DFloat64(f, dsetTimeStep, 1)
	if err != nil {
		return nil, err
	}

	wfs := make([]*waffles.Waveform, n)
	for i := 0; i < n; i++ {
		samples := make([]float64, points)
		copy(samples, adcs[i*points:(i+1)*points])
		wf, err := waffles.NewWaveform(timestamps[i], timeStep[0], daqTimestamps[i],
			samples, int(runNumbers[i]), int(recordNumbers[i]),
			int(endpoints[i]), int(channels[i]), int(timeOffsets[i]))
		if err != nil {
			return nil, fmt.Errorf("'%s' does not deserialize to a WaveformSet: waveform %d: %w", path, i, err)
		}
		wfs[i] = wf
	}
	ws, err := waffles.NewWaveformSet(wfs)
	if err != nil {
		return nil, fmt.Errorf("'%s' does not deserialize to a WaveformSet: %w", path, err)
	}
	return ws, nil
}

func write2D(f *hdf5.File, name string, flat []float64, rows, cols uint) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{rows, cols}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("creating dataset '%s': %w", name, err)
	}
	defer dset.Close()
	return dset.Write(&flat)
}

func write1DInt64(f *hdf5.File, name string, data []int64) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_INT64, space)
	if err != nil {
		return fmt.Errorf("creating dataset '%s': %w", name, err)
	}
	defer dset.Close()
	return dset.Write(&data)
}

func write1DFloat64(f *hdf5.File, name string, data []float64) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()
	dset, err := f.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return fmt.Errorf("creating dataset '%s': %w", name, err)
	}
	defer dset.Close()
	return dset.Write(&data)
}

func read2D(f *hdf5.File, name string) ([]float64, []uint, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, nil, fmt.Errorf("missing dataset '%s': %w", name, err)
	}
	defer dset.Close()
	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, nil, err
	}
	if len(dims) != 2 {
		return nil, nil, fmt.Errorf("dataset '%s' has rank %d, want 2", name, len(dims))
	}
	flat := make([]float64, dims[0]*dims[1])
	if err := dset.Read(&flat); err != nil {
		return nil, nil, fmt.Errorf("reading dataset '%s': %w", name, err)
	}
	return flat, dims, nil
}

func read1DInt64(f *hdf5.File, name string, want int) ([]int64, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("missing dataset '%s': %w", name, err)
	}
	defer dset.Close()
	data := make([]int64, want)
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("reading dataset '%s': %w", name, err)
	}
	return data, nil
}

func read1DFloat64(f *hdf5.File, name string, want int) ([]float64, error) {
	dset, err := f.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("missing dataset '%s': %w", name, err)
	}
	defer dset.Close()
	data := make([]float64, want)
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("reading dataset '%s': %w", name, err)
	}
	return data, nil
}
