package governance

// Tally holds the vote-set sizes for one proposal.
type Tally struct {
	For     int `json:"for"`
	Against int `json:"against"`
}

func (t Tally) Total() int { return t.For + t.Against }

// ApprovalRate returns the For share of cast votes in percent.
// Zero votes means zero percent, never a division by zero.
func (t Tally) ApprovalRate() float64 {
	total := t.Total()
	if total == 0 {
		return 0
	}
	return float64(t.For) / float64(total) * 100
}

// Approved reports whether the tally clears the quorum threshold. An empty
// tally is never approved, regardless of threshold — including threshold 0.
// This is the single approval check; both merge enforcement and display
// must go through it.
func (t Tally) Approved(threshold float64) bool {
	return t.Total() > 0 && t.ApprovalRate() >= threshold
}
