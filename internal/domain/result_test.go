package domain

import "testing"

func TestResultSet_Rank_MissingScoresLast(t *testing.T) {
	rs := ResultSet{
		{School: School{Name: "forty"}, Score: &Score{Percentage: 40}},
		{School: School{Name: "ninety"}, Score: &Score{Percentage: 90}},
		{School: School{Name: "unscored"}},
	}

	rs.Rank()

	want := []string{"ninety", "forty", "unscored"}
	for i, name := range want {
		if rs[i].School.Name != name {
			t.Errorf("position %d: got %q, want %q", i, rs[i].School.Name, name)
		}
	}
}

func TestResultSet_Rank_StableOnTies(t *testing.T) {
	rs := ResultSet{
		{School: School{Name: "a"}, Score: &Score{Percentage: 50}},
		{School: School{Name: "b"}, Score: &Score{Percentage: 50}},
		{School: School{Name: "c"}},
		{School: School{Name: "d"}},
	}

	rs.Rank()

	want := []string{"a", "b", "c", "d"}
	for i, name := range want {
		if rs[i].School.Name != name {
			t.Errorf("position %d: got %q, want %q", i, rs[i].School.Name, name)
		}
	}
}

func TestMatchResult_RankValue(t *testing.T) {
	if (MatchResult{}).RankValue() != 0 {
		t.Error("unscored result should rank as zero")
	}
	r := MatchResult{Score: &Score{Percentage: 73}}
	if r.RankValue() != 73 {
		t.Errorf("got %d, want 73", r.RankValue())
	}
}
