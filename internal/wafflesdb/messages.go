package wafflesdb

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// The composite types used for messages to the ClickHouse database.

// AnalysisRunMessage is the information required to make an entry in the
// analysisruns table: one row per processed input file.
type AnalysisRunMessage struct {
	ID          string
	Hostname    string
	Version     string
	GoVersion   string
	SourceFile  string
	Detector    string
	RunNumber   int
	NWaveforms  int
	PointsPerWf int
	TimeStepNS  float64
	Start       time.Time
	End         time.Time
}

// FileMessage is the information required to make an entry in the
// outputfiles table: one row per file an analysis run produced.
type FileMessage struct {
	RunID    string
	Filename string
	Filetype string
	Records  int
	Size     int64
}

// NewRunID returns a fresh lexicographically sortable run identifier.
func NewRunID() string {
	return ulid.Make().String()
}
