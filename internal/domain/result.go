package domain

import "sort"

// Score is the compatibility verdict returned by the scorer for one school.
type Score struct {
	IsMatch     bool
	Percentage  int // 0..100
	Explanation string
}

// MatchResult is a school extended with an optional compatibility score.
// Score is nil when the search carried no personality input or when the
// scorer call for this school failed.
type MatchResult struct {
	School School
	Score  *Score
}

// RankValue returns the percentage used for ordering; unscored results rank
// as zero.
func (r MatchResult) RankValue() int {
	if r.Score == nil {
		return 0
	}
	return r.Score.Percentage
}

// ResultSet is the ordered output of one pipeline run.
type ResultSet []MatchResult

// Rank sorts the set descending by match percentage. The sort is stable, so
// ties and unscored results keep their filter-stage relative order.
func (rs ResultSet) Rank() {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].RankValue() > rs[j].RankValue()
	})
}
