package waffles

// WfAna is one analysis attached to one waveform: the input parameters the
// analysis was configured with and the result dictionary it produced. A
// WfAna belongs to exactly one waveform; analyzers must build a fresh one
// per call.
type WfAna struct {
	InputParameters IPDict
	Result          ORDict
}

// WfAnalyzer is the contract for any per-waveform analysis (baseline
// estimation, peak finding, ...). Analyse must not mutate the waveform's
// samples; destructive operations like baseline subtraction are requested
// explicitly by the caller afterwards. The keys of the returned Result are
// declared by the concrete analyzer.
type WfAnalyzer interface {
	Analyse(wf *WaveformAdcs) (*WfAna, error)
}

// StoreWfAna attaches externally computed results to a waveform without
// inspecting its samples. It is used when a result dictionary was produced
// by some other tool (e.g. read back from a file) and just needs to enter
// the analysis mapping.
type StoreWfAna struct {
	Results ORDict
}

// Analyse returns a WfAna wrapping the stored results verbatim.
func (s StoreWfAna) Analyse(wf *WaveformAdcs) (*WfAna, error) {
	res := make(ORDict, len(s.Results))
	for k, v := range s.Results {
		res[k] = v
	}
	return &WfAna{Result: res}, nil
}
