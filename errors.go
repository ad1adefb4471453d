package waffles

import "errors"

// Sentinel errors for the waveform data model. All of them are raised at the
// point of detection and propagate to the caller unmodified; there is no
// retry or recovery layer in this package. Use errors.Is to classify a
// wrapped error.
var (
	// ErrMalformedInput marks a WaveformSet built from empty or
	// inconsistent input waveforms.
	ErrMalformedInput = errors.New("malformed input")

	// ErrShapeMismatch marks a ChannelMap whose data grid does not have
	// the declared rows x columns shape.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDuplicateChannel marks a ChannelMap that contains the same
	// UniqueChannel in more than one cell.
	ErrDuplicateChannel = errors.New("duplicate channel")

	// ErrEmptyCell marks a grid-cell lookup that found no waveforms.
	ErrEmptyCell = errors.New("empty grid cell")

	// ErrEmptyResult marks a filter operation that matched no waveforms.
	ErrEmptyResult = errors.New("empty filter result")

	// ErrMissingKey marks a lookup into an input-parameter or
	// output-result dictionary by an unrecognized key.
	ErrMissingKey = errors.New("missing key")

	// ErrMissingAnalysis marks a consumer requesting an analysis label or
	// result key that was never attached to the waveform.
	ErrMissingAnalysis = errors.New("missing analysis")
)
