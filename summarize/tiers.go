package summarize

// Tier describes the summary length band assigned to a score range.
// Higher-scoring documents earn longer, more detailed summaries.
type Tier struct {
	// MinScore is the inclusive lower bound of the band.
	MinScore float64

	// MinChars and MaxChars bound the requested summary length in characters.
	MinChars int
	MaxChars int
}

// tiers is ordered from the most to the least relevant band. Bands are
// half-open: a score belongs to the first band whose MinScore it reaches,
// so a score of exactly 70 gets the top band and 69.9 the one below.
var tiers = []Tier{
	{MinScore: 70, MinChars: 300, MaxChars: 500},
	{MinScore: 50, MinChars: 150, MaxChars: 300},
	{MinScore: 30, MinChars: 50, MaxChars: 150},
	{MinScore: 20, MinChars: 30, MaxChars: 50},
}

// TierFor maps an average relevance score onto its length band. Scores
// below every band resolve to the shortest tier so a caller with a lowered
// threshold still gets a usable summary.
func TierFor(score float64) Tier {
	for _, t := range tiers {
		if score >= t.MinScore {
			return t
		}
	}
	return tiers[len(tiers)-1]
}
