package model

func newCourse(code string, credits int, prerequisites, corequisites Requirement) Course {
	return Course{
		Code:          code,
		Name:          "Course " + code,
		Credits:       credits,
		Prerequisites: prerequisites,
		Corequisites:  corequisites,
	}
}

func planOf(terms ...[]string) Plan {
	plan := NewPlan(len(terms))
	for i, term := range terms {
		for _, code := range term {
			plan.Add(code, i+1)
		}
	}
	return plan
}
