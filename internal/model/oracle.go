package model

// Profile is a ranking-service user as reported by the oracle.
type Profile struct {
	Handle      string `json:"handle"`
	Tier        int    `json:"tier"`
	Rating      int    `json:"rating"`
	SolvedCount int    `json:"solvedCount"`
}

// Problem is a recommendation candidate. Level is the oracle's difficulty
// tier for the problem.
type Problem struct {
	ProblemID int      `json:"problemId"`
	Title     string   `json:"title"`
	Level     int      `json:"level"`
	Tags      []string `json:"tags"`
}

var tierGroups = [...]string{"Bronze", "Silver", "Gold", "Platinum", "Diamond", "Ruby"}

// TierName renders an oracle tier as its display name. Tier 0 is unrated;
// tiers 1..30 run Bronze V through Ruby I in groups of five.
func TierName(tier int) string {
	if tier <= 0 || tier > 5*len(tierGroups) {
		return "Unrated"
	}
	group := tierGroups[(tier-1)/5]
	step := 5 - (tier-1)%5
	return group + " " + [...]string{"", "I", "II", "III", "IV", "V"}[step]
}
