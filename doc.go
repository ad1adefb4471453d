// Package waffles models photon-detection-system waveform data from the
// ProtoDUNE detectors: digitized waveforms grouped into sets, bucketed onto
// physical channel-map grids (APA and membrane layouts), and annotated with
// per-waveform analysis results (baselines, integrals, amplitudes, peaks)
// for calibration studies.
//
// Everything here is synchronous, in-memory and exclusively owned by the
// caller that builds it. File formats are handled by the hdf5io, rootio and
// pickleio subpackages; run metadata recording lives in internal/wafflesdb.
package waffles
