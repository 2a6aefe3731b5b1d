package governance

import "testing"

func TestApprovalRateEmpty(t *testing.T) {
	var tally Tally
	if got := tally.ApprovalRate(); got != 0 {
		t.Errorf("ApprovalRate() = %v, want 0", got)
	}
}

func TestEmptyTallyNeverApproved(t *testing.T) {
	var tally Tally
	for _, threshold := range []float64{0, 25, 50, 100} {
		if tally.Approved(threshold) {
			t.Errorf("empty tally approved at threshold %v", threshold)
		}
	}
}

func TestApprovalAtExactThreshold(t *testing.T) {
	tally := Tally{For: 1, Against: 1}
	if !tally.Approved(50) {
		t.Error("tally at exactly the threshold should be approved")
	}
}

// Walk the quorum example: one For approves, a second Against keeps it at
// the 50 boundary, a third Against drops it below.
func TestApprovalFlips(t *testing.T) {
	steps := []struct {
		tally    Tally
		rate     float64
		approved bool
	}{
		{Tally{For: 1, Against: 0}, 100, true},
		{Tally{For: 1, Against: 1}, 50, true},
		{Tally{For: 1, Against: 2}, 100.0 / 3.0, false},
	}
	for _, s := range steps {
		if got := s.tally.ApprovalRate(); got != s.rate {
			t.Errorf("tally %+v: rate = %v, want %v", s.tally, got, s.rate)
		}
		if got := s.tally.Approved(50); got != s.approved {
			t.Errorf("tally %+v: approved = %v, want %v", s.tally, got, s.approved)
		}
	}
}

func TestAllAgainstNotApproved(t *testing.T) {
	tally := Tally{For: 0, Against: 5}
	if tally.Approved(0) {
		t.Error("all-against tally approved at threshold 0")
	}
}
