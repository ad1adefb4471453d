package waffles

import "fmt"

// ChannelMap is the physical channel layout of one detector module: a fixed
// rows x columns grid of UniqueChannel. The shape is validated at
// construction and never changes, and no channel may appear twice.
type ChannelMap struct {
	rows, columns int
	data          [][]UniqueChannel
	positions     map[UniqueChannel]GridPosition
}

// GridPosition addresses one cell of a ChannelMap.
type GridPosition struct {
	Row, Col int
}

// NewChannelMap builds a ChannelMap from a rows x columns grid of channels.
// The data is copied.
func NewChannelMap(rows, columns int, data [][]UniqueChannel) (*ChannelMap, error) {
	if rows < 1 || columns < 1 {
		return nil, fmt.Errorf("%w: map shape (%d, %d) must be positive in both dimensions",
			ErrShapeMismatch, rows, columns)
	}
	if len(data) != rows {
		return nil, fmt.Errorf("%w: the given data has %d rows, want %d",
			ErrShapeMismatch, len(data), rows)
	}
	cm := &ChannelMap{
		rows:      rows,
		columns:   columns,
		data:      make([][]UniqueChannel, rows),
		positions: make(map[UniqueChannel]GridPosition, rows*columns),
	}
	for i, row := range data {
		if len(row) != columns {
			return nil, fmt.Errorf("%w: row %d of the given data has %d columns, want %d",
				ErrShapeMismatch, i, len(row), columns)
		}
		for j, uc := range row {
			if uc.Endpoint < 0 || uc.Channel < 0 {
				return nil, fmt.Errorf("%w: cell (%d, %d) holds invalid channel %s",
					ErrShapeMismatch, i, j, uc)
			}
			if prev, dup := cm.positions[uc]; dup {
				return nil, fmt.Errorf("%w: channel %s appears at both (%d, %d) and (%d, %d)",
					ErrDuplicateChannel, uc, prev.Row, prev.Col, i, j)
			}
			cm.positions[uc] = GridPosition{Row: i, Col: j}
		}
		cm.data[i] = append([]UniqueChannel(nil), row...)
	}
	return cm, nil
}

// Rows returns the number of rows in the map.
func (cm *ChannelMap) Rows() int { return cm.rows }

// Columns returns the number of columns in the map.
func (cm *ChannelMap) Columns() int { return cm.columns }

// At returns the channel stored at (row, col).
func (cm *ChannelMap) At(row, col int) UniqueChannel {
	return cm.data[row][col]
}

// FindChannel reports the position of uc within the map, if present.
func (cm *ChannelMap) FindChannel(uc UniqueChannel) (GridPosition, bool) {
	pos, ok := cm.positions[uc]
	return pos, ok
}

// Fixed module shapes. An APA carries 10x4 photon-detector channels; the
// ProtoDUNE-VD membrane modules come in a 4x2 geometry-ordered layout and a
// 4x4 induction-ordered one.
const (
	APARows    = 10
	APAColumns = 4

	MembraneGeoRows    = 4
	MembraneGeoColumns = 2

	MembraneIndRows    = 4
	MembraneIndColumns = 4
)

// NewAPAMap builds the channel map of one Anode Plane Assembly, enforcing
// the 10x4 shape.
func NewAPAMap(data [][]UniqueChannel) (*ChannelMap, error) {
	return newShapedMap("APA", APARows, APAColumns, data)
}

// NewMembraneGeoMap builds a geometry-ordered membrane module map, enforcing
// the 4x2 shape.
func NewMembraneGeoMap(data [][]UniqueChannel) (*ChannelMap, error) {
	return newShapedMap("membrane geometry", MembraneGeoRows, MembraneGeoColumns, data)
}

// NewMembraneIndMap builds an induction-ordered membrane module map,
// enforcing the 4x4 shape.
func NewMembraneIndMap(data [][]UniqueChannel) (*ChannelMap, error) {
	return newShapedMap("membrane induction", MembraneIndRows, MembraneIndColumns, data)
}

func newShapedMap(kind string, rows, columns int, data [][]UniqueChannel) (*ChannelMap, error) {
	cm, err := NewChannelMap(rows, columns, data)
	if err != nil {
		return nil, fmt.Errorf("building %s map: %w", kind, err)
	}
	return cm, nil
}
