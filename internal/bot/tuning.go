package bot

// Tuning holds the weights used by the heuristic brain.
type Tuning struct {
	// TrumpPenalty is added to a trump's value so trumps are spent last.
	TrumpPenalty int
}

// DefaultTuning keeps every trump more expensive than any non-trump.
var DefaultTuning = Tuning{
	TrumpPenalty: 100,
}
