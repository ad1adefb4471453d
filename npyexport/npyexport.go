// Package npyexport writes waveform arrays to NumPy .npy files, the exchange
// format the downstream notebooks expect.
package npyexport

import (
	"fmt"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/dunepds/waffles"
)

// WriteSamples writes the full (nwaveforms, points) ADC matrix of ws.
func WriteSamples(ws *waffles.WaveformSet, path string, overwrite bool) error {
	wfs := ws.Waveforms()
	m := mat.NewDense(len(wfs), ws.PointsPerWf(), nil)
	for i, wf := range wfs {
		m.SetRow(i, wf.Adcs())
	}
	return writeNpy(path, overwrite, m)
}

// WriteCellMeans writes one row per occupied grid cell, in row-major cell
// order, each row being the cell's mean waveform.
func WriteCellMeans(g *waffles.ChannelWsGrid, path string, overwrite bool) error {
	var rows [][]float64
	err := g.EachCell(func(pos waffles.GridPosition, ws *waffles.WaveformSet) error {
		mean, err := ws.MeanWaveform()
		if err != nil {
			return fmt.Errorf("cell (%d, %d): %w", pos.Row, pos.Col, err)
		}
		rows = append(rows, mean.Adcs())
		return nil
	})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: the grid has no occupied cell", waffles.ErrEmptyResult)
	}
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i, row := range rows {
		m.SetRow(i, row)
	}
	return writeNpy(path, overwrite, m)
}

func writeNpy(path string, overwrite bool, m *mat.Dense) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("destination '%s' exists and overwrite is false", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := npyio.Write(f, m); err != nil {
		f.Close()
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return f.Close()
}
