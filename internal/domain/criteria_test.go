package domain

import "testing"

func sampleSchool() School {
	return School{
		Name:            "Sunshine Kindergarten",
		Address:         "12 Harbour Road, Wan Chai",
		Curriculum:      "Montessori with local curriculum elements",
		TeachingMethods: "Outdoor Learning, Storytelling",
		Gender:          "Co-educational",
	}
}

func TestCriteria_Matches_EmptyCriteriaPassesEverything(t *testing.T) {
	if !(Criteria{}).Matches(sampleSchool()) {
		t.Error("empty criteria should pass every school")
	}
	if !(Criteria{}).Matches(School{}) {
		t.Error("empty criteria should pass a school with all fields empty")
	}
}

func TestCriteria_Matches_Gender(t *testing.T) {
	s := sampleSchool()
	if !(Criteria{Gender: "co-ed"}).Matches(s) {
		t.Error("expected case-insensitive gender containment to pass")
	}
	if (Criteria{Gender: "boys"}).Matches(s) {
		t.Error("expected non-matching gender to fail")
	}
}

func TestCriteria_Matches_Location(t *testing.T) {
	s := sampleSchool()
	if !(Criteria{PreferredLocation: "wan chai"}).Matches(s) {
		t.Error("expected case-insensitive address containment to pass")
	}
	if (Criteria{PreferredLocation: "Kowloon"}).Matches(s) {
		t.Error("expected non-matching location to fail")
	}
}

func TestCriteria_Matches_Curriculum(t *testing.T) {
	s := sampleSchool()
	if !(Criteria{Curriculum: "montessori"}).Matches(s) {
		t.Error("expected case-insensitive curriculum containment to pass")
	}
	if (Criteria{Curriculum: "IB"}).Matches(s) {
		t.Error("expected non-matching curriculum to fail")
	}
}

func TestCriteria_Matches_TeachingMethodsOR(t *testing.T) {
	s := sampleSchool()

	// One of the requested methods is enough.
	c := Criteria{TeachingMethods: []string{"thematic", "outdoor"}}
	if !c.Matches(s) {
		t.Error("expected OR semantics: one matching method should pass")
	}

	c = Criteria{TeachingMethods: []string{"thematic", "project-based"}}
	if c.Matches(s) {
		t.Error("expected failure when no requested method matches")
	}

	// Blank entries do not activate the filter.
	c = Criteria{TeachingMethods: []string{"", "  "}}
	if !c.Matches(s) {
		t.Error("blank method entries should leave the filter inactive")
	}
}

func TestCriteria_Matches_DimensionsAND(t *testing.T) {
	s := sampleSchool()
	c := Criteria{Curriculum: "montessori", PreferredLocation: "Kowloon"}
	if c.Matches(s) {
		t.Error("one failing active dimension must fail the whole match")
	}
	c = Criteria{Curriculum: "montessori", PreferredLocation: "harbour"}
	if !c.Matches(s) {
		t.Error("all active dimensions passing should match")
	}
}

func TestCriteria_WantsScoring(t *testing.T) {
	if (Criteria{}).WantsScoring() {
		t.Error("no personality input should not request scoring")
	}
	if (Criteria{Personality: "   "}).WantsScoring() {
		t.Error("whitespace-only personality should not request scoring")
	}
	if !(Criteria{Personality: "shy, creative"}).WantsScoring() {
		t.Error("personality input should request scoring")
	}
}
