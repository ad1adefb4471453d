package waffles

import (
	"errors"
	"testing"
)

// gridWaveforms returns one waveform per cell of cm, plus extras waveforms on
// channels that appear in no cell.
func gridWaveforms(t *testing.T, cm *ChannelMap, extras int) []*Waveform {
	t.Helper()
	var wfs []*Waveform
	for row := 0; row < cm.Rows(); row++ {
		for col := 0; col < cm.Columns(); col++ {
			ch := cm.At(row, col)
			wfs = append(wfs, testWaveform(t, ch.Endpoint, ch.Channel, nil))
		}
	}
	for i := 0; i < extras; i++ {
		wfs = append(wfs, testWaveform(t, 999, i, nil))
	}
	return wfs
}

func TestBuildChannelWsGridDropsUnmatched(t *testing.T) {
	cm := APAMaps[1]
	ws, err := NewWaveformSet(gridWaveforms(t, cm, 3))
	if err != nil {
		t.Fatal(err)
	}
	grid, err := BuildChannelWsGrid(cm, ws)
	if err != nil {
		t.Fatalf("BuildChannelWsGrid: %v", err)
	}
	if got := grid.NOccupiedCells(); got != 40 {
		t.Errorf("NOccupiedCells = %d, want 40", got)
	}
	total := 0
	grid.EachCell(func(pos GridPosition, cell *WaveformSet) error {
		total += cell.NWaveforms()
		return nil
	})
	// The 3 waveforms on channels outside the map land in no cell.
	if total != 40 {
		t.Errorf("grid holds %d waveforms, want 40", total)
	}
}

func TestCellWaveforms(t *testing.T) {
	cm := APAMaps[1]
	// Only the channel at (0, 0) gets waveforms.
	ch := cm.At(0, 0)
	ws, err := NewWaveformSet([]*Waveform{
		testWaveform(t, ch.Endpoint, ch.Channel, nil),
		testWaveform(t, ch.Endpoint, ch.Channel, nil),
	})
	if err != nil {
		t.Fatal(err)
	}
	grid, err := BuildChannelWsGrid(cm, ws)
	if err != nil {
		t.Fatal(err)
	}

	cell, err := grid.CellWaveforms(0, 0)
	if err != nil {
		t.Fatalf("CellWaveforms(0, 0): %v", err)
	}
	if cell.NWaveforms() != 2 {
		t.Errorf("cell (0,0) holds %d waveforms, want 2", cell.NWaveforms())
	}

	if _, err := grid.CellWaveforms(5, 2); !errors.Is(err, ErrEmptyCell) {
		t.Errorf("empty cell gives %v, want ErrEmptyCell", err)
	}
	if _, err := grid.CellWaveforms(99, 0); !errors.Is(err, ErrEmptyCell) {
		t.Errorf("out-of-map position gives %v, want ErrEmptyCell", err)
	}
}

func TestEachCellVisitsRowMajor(t *testing.T) {
	cm := APAMaps[1]
	ws, err := NewWaveformSet(gridWaveforms(t, cm, 0))
	if err != nil {
		t.Fatal(err)
	}
	grid, err := BuildChannelWsGrid(cm, ws)
	if err != nil {
		t.Fatal(err)
	}
	var visited []GridPosition
	grid.EachCell(func(pos GridPosition, cell *WaveformSet) error {
		visited = append(visited, pos)
		return nil
	})
	if len(visited) != 40 {
		t.Fatalf("visited %d cells, want 40", len(visited))
	}
	for i := 1; i < len(visited); i++ {
		prev, cur := visited[i-1], visited[i]
		if cur.Row < prev.Row || (cur.Row == prev.Row && cur.Col <= prev.Col) {
			t.Fatalf("cells visited out of row-major order: %v then %v", prev, cur)
		}
	}
}

func TestGridFilterDropsEmptiedCells(t *testing.T) {
	cm := APAMaps[1]
	ws, err := NewWaveformSet(gridWaveforms(t, cm, 0))
	if err != nil {
		t.Fatal(err)
	}
	grid, err := BuildChannelWsGrid(cm, ws)
	if err != nil {
		t.Fatal(err)
	}
	keep := cm.At(0, 0)
	filtered := grid.Filter(func(wf *Waveform) bool {
		return wf.UniqueChannel() == keep
	})
	if got := filtered.NOccupiedCells(); got != 1 {
		t.Errorf("filtered grid has %d occupied cells, want 1", got)
	}
	// The source grid is untouched.
	if got := grid.NOccupiedCells(); got != 40 {
		t.Errorf("source grid mutated: %d occupied cells, want 40", got)
	}
}

func TestGridAnalyse(t *testing.T) {
	cm := APAMaps[1]
	ws, err := NewWaveformSet(gridWaveforms(t, cm, 0))
	if err != nil {
		t.Fatal(err)
	}
	grid, err := BuildChannelWsGrid(cm, ws)
	if err != nil {
		t.Fatal(err)
	}
	if err := grid.Analyse("std", StoreWfAna{Results: ORDict{"v": 1.5}}); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	err = grid.EachCell(func(pos GridPosition, cell *WaveformSet) error {
		for _, wf := range cell.Waveforms() {
			ana, err := wf.GetAnalysis("std")
			if err != nil {
				return err
			}
			if v, _ := ana.Result.Float("v"); v != 1.5 {
				t.Errorf("cell %v: v = %v, want 1.5", pos, v)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}
