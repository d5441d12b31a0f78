package domain

// School is a single catalog row fetched per search. All fields are free text
// and any of them may be empty; the pipeline identifies a school only by its
// name and address.
type School struct {
	Name               string
	Address            string
	Phone              string
	Website            string
	TeachingMethods    string
	Features           string
	Curriculum         string
	LearningExperience string
	Gender             string
}
