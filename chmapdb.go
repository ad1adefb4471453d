package waffles

// Channel layouts can also live in the experiment's MySQL conditions
// database, one row per grid cell, validity-ranged by run number.

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// ConnectChannelMapDB opens the conditions database holding the
// channel-position tables.
func ConnectChannelMapDB(user, pass, host, dbname string) (*sqlx.DB, error) {
	dbURI := fmt.Sprintf("%s:%s@(%s:3306)/%s?parseTime=true", user, pass, host, dbname)
	return sqlx.Connect("mysql", dbURI)
}

type channelPositionRow struct {
	Endpoint int `db:"Endpoint"`
	Channel  int `db:"Channel"`
	MapRow   int `db:"MapRow"`
	MapCol   int `db:"MapCol"`
}

// LoadChannelMapFromDB builds the rows x columns layout of the named
// detector module as recorded for runNumber. Every cell must be covered by
// exactly one row of the ChannelPositions table.
func LoadChannelMapFromDB(db *sqlx.DB, detector string, runNumber, rows, columns int) (*ChannelMap, error) {
	const query = `SELECT Endpoint, Channel, MapRow, MapCol FROM ChannelPositions
		WHERE Detector = ? AND MinRun <= ? AND MaxRun >= ?`

	dbRows, err := db.Queryx(query, detector, runNumber, runNumber)
	if err != nil {
		return nil, fmt.Errorf("error querying channel positions: %w", err)
	}
	defer dbRows.Close()

	data := make([][]UniqueChannel, rows)
	for i := range data {
		data[i] = make([]UniqueChannel, columns)
		for j := range data[i] {
			data[i][j] = UniqueChannel{Endpoint: -1, Channel: -1} // unfilled marker
		}
	}
	nFilled := 0
	for dbRows.Next() {
		var r channelPositionRow
		if err := dbRows.StructScan(&r); err != nil {
			return nil, fmt.Errorf("error scanning DB row: %w", err)
		}
		if r.MapRow < 0 || r.MapRow >= rows || r.MapCol < 0 || r.MapCol >= columns {
			return nil, fmt.Errorf("%w: DB places channel %d-%d at (%d, %d), outside the %dx%d map",
				ErrShapeMismatch, r.Endpoint, r.Channel, r.MapRow, r.MapCol, rows, columns)
		}
		data[r.MapRow][r.MapCol] = UniqueChannel{Endpoint: r.Endpoint, Channel: r.Channel}
		nFilled++
	}
	if err := dbRows.Err(); err != nil {
		return nil, err
	}
	if nFilled != rows*columns {
		return nil, fmt.Errorf("%w: ChannelPositions covers %d of %d cells for detector '%s', run %d",
			ErrShapeMismatch, nFilled, rows*columns, detector, runNumber)
	}
	return NewChannelMap(rows, columns, data)
}
