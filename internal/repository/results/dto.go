package results

import (
	"encoding/json"

	"github.com/kailas-cloud/kindermatch/internal/domain"
)

// matchRow is the JSON-serializable representation of one result.
type matchRow struct {
	Name               string `json:"name"`
	Address            string `json:"address"`
	Phone              string `json:"phone,omitempty"`
	Website            string `json:"website,omitempty"`
	TeachingMethods    string `json:"teachingMethods,omitempty"`
	Features           string `json:"features,omitempty"`
	Curriculum         string `json:"curriculum,omitempty"`
	LearningExperience string `json:"learningExperience,omitempty"`
	Gender             string `json:"gender,omitempty"`

	PersonalityMatch *bool   `json:"personalityMatch,omitempty"`
	MatchPercentage  *int    `json:"matchPercentage,omitempty"`
	MatchExplanation *string `json:"matchExplanation,omitempty"`
}

func marshalResultSet(rs domain.ResultSet) ([]byte, error) {
	rows := make([]matchRow, len(rs))
	for i, r := range rs {
		rows[i] = matchRow{
			Name:               r.School.Name,
			Address:            r.School.Address,
			Phone:              r.School.Phone,
			Website:            r.School.Website,
			TeachingMethods:    r.School.TeachingMethods,
			Features:           r.School.Features,
			Curriculum:         r.School.Curriculum,
			LearningExperience: r.School.LearningExperience,
			Gender:             r.School.Gender,
		}
		if r.Score != nil {
			isMatch := r.Score.IsMatch
			pct := r.Score.Percentage
			expl := r.Score.Explanation
			rows[i].PersonalityMatch = &isMatch
			rows[i].MatchPercentage = &pct
			rows[i].MatchExplanation = &expl
		}
	}
	return json.Marshal(rows)
}

func unmarshalResultSet(data []byte) (domain.ResultSet, error) {
	var rows []matchRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}

	rs := make(domain.ResultSet, len(rows))
	for i, row := range rows {
		rs[i] = domain.MatchResult{
			School: domain.School{
				Name:               row.Name,
				Address:            row.Address,
				Phone:              row.Phone,
				Website:            row.Website,
				TeachingMethods:    row.TeachingMethods,
				Features:           row.Features,
				Curriculum:         row.Curriculum,
				LearningExperience: row.LearningExperience,
				Gender:             row.Gender,
			},
		}
		if row.MatchPercentage != nil {
			score := domain.Score{Percentage: *row.MatchPercentage}
			if row.PersonalityMatch != nil {
				score.IsMatch = *row.PersonalityMatch
			}
			if row.MatchExplanation != nil {
				score.Explanation = *row.MatchExplanation
			}
			rs[i].Score = &score
		}
	}
	return rs, nil
}
