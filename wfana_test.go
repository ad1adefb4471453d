package waffles

import "testing"

func TestStoreWfAnaCopiesResults(t *testing.T) {
	src := ORDict{"baseline": 100.0, "integral": 640.0}
	s := StoreWfAna{Results: src}

	wa, err := NewWaveformAdcs(16.0, []float64{1, 2, 3, 4}, 0)
	if err != nil {
		t.Fatal(err)
	}
	ana, err := s.Analyse(wa)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := ana.Result.Float("baseline"); v != 100.0 {
		t.Errorf("baseline = %v, want 100", v)
	}

	// Each call yields an independent dictionary: mutating one attachment
	// must not leak into the source or into later attachments.
	ana.Result["baseline"] = -1.0
	if v, _ := src.Float("baseline"); v != 100.0 {
		t.Errorf("mutating the attachment changed the source: %v", v)
	}
	ana2, err := s.Analyse(wa)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := ana2.Result.Float("baseline"); v != 100.0 {
		t.Errorf("second attachment sees the mutation: %v", v)
	}
}
