package waffles

import "fmt"

// ChannelWsGrid buckets a WaveformSet into the cells of a ChannelMap, so
// that downstream fitting and plotting can ask "give me all waveforms for
// the channel at (row, col)". The map is shared with the caller; the per-cell
// sub-sets are owned by the grid.
//
// A waveform whose channel appears in no map cell is silently dropped: a
// detector legitimately contains channels outside any single module's map,
// so this is intended behavior, not data loss. A waveform can never match
// two cells, since ChannelMap construction rejects duplicates.
type ChannelWsGrid struct {
	chMap *ChannelMap
	cells map[GridPosition]*WaveformSet
}

// BuildChannelWsGrid scans wfset once and assigns each waveform to the cell
// whose channel matches its (endpoint, channel) identity. Relative waveform
// order within each cell follows the input order.
func BuildChannelWsGrid(chMap *ChannelMap, wfset *WaveformSet) (*ChannelWsGrid, error) {
	buckets := make(map[GridPosition][]*Waveform)
	for _, wf := range wfset.Waveforms() {
		if pos, ok := chMap.FindChannel(wf.UniqueChannel()); ok {
			buckets[pos] = append(buckets[pos], wf)
		}
	}
	grid := &ChannelWsGrid{
		chMap: chMap,
		cells: make(map[GridPosition]*WaveformSet, len(buckets)),
	}
	for pos, wfs := range buckets {
		sub, err := NewWaveformSet(wfs)
		if err != nil {
			return nil, fmt.Errorf("building cell (%d, %d): %w", pos.Row, pos.Col, err)
		}
		grid.cells[pos] = sub
	}
	return grid, nil
}

// ChannelMap returns the layout this grid was built against.
func (g *ChannelWsGrid) ChannelMap() *ChannelMap { return g.chMap }

// NOccupiedCells returns the number of cells holding at least one waveform.
func (g *ChannelWsGrid) NOccupiedCells() int { return len(g.cells) }

// CellWaveforms returns the sub-WaveformSet for the cell at (row, col). A
// cell with no matching waveforms yields an error wrapping ErrEmptyCell.
func (g *ChannelWsGrid) CellWaveforms(row, col int) (*WaveformSet, error) {
	if row < 0 || row >= g.chMap.Rows() || col < 0 || col >= g.chMap.Columns() {
		return nil, fmt.Errorf("%w: position (%d, %d) outside the %dx%d map",
			ErrEmptyCell, row, col, g.chMap.Rows(), g.chMap.Columns())
	}
	ws, ok := g.cells[GridPosition{Row: row, Col: col}]
	if !ok {
		return nil, fmt.Errorf("%w: no waveforms for channel %s at (%d, %d)",
			ErrEmptyCell, g.chMap.At(row, col), row, col)
	}
	return ws, nil
}

// EachCell calls fn for every occupied cell, in row-major order.
func (g *ChannelWsGrid) EachCell(fn func(pos GridPosition, ws *WaveformSet) error) error {
	for row := 0; row < g.chMap.Rows(); row++ {
		for col := 0; col < g.chMap.Columns(); col++ {
			pos := GridPosition{Row: row, Col: col}
			ws, ok := g.cells[pos]
			if !ok {
				continue
			}
			if err := fn(pos, ws); err != nil {
				return err
			}
		}
	}
	return nil
}

// Filter applies pred cell-wise and returns a new grid over the same map.
// Cells whose sub-sets are emptied by the predicate are dropped from the
// result, mirroring the build-time behavior for unmatched waveforms.
func (g *ChannelWsGrid) Filter(pred func(*Waveform) bool) *ChannelWsGrid {
	out := &ChannelWsGrid{
		chMap: g.chMap,
		cells: make(map[GridPosition]*WaveformSet),
	}
	for pos, ws := range g.cells {
		kept, err := ws.Filter(pred)
		if err != nil {
			continue // cell emptied out
		}
		out.cells[pos] = kept
	}
	return out
}

// Analyse runs the analyzer over every waveform of every occupied cell,
// attaching results under label.
func (g *ChannelWsGrid) Analyse(label string, az WfAnalyzer) error {
	return g.EachCell(func(pos GridPosition, ws *WaveformSet) error {
		if err := ws.Analyse(label, az); err != nil {
			return fmt.Errorf("cell (%d, %d): %w", pos.Row, pos.Col, err)
		}
		return nil
	})
}
