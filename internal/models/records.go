package models

// GradeBars is the display form of a grade distribution. It is zero-filled
// when no data exists; ProfessorRecord.HasGradeData tells the two apart.
type GradeBars struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	F int `json:"F"`
}

type Seats struct {
	Available int `json:"available"`
	Total     int `json:"total"`
}

type SectionInfo struct {
	Code            string `json:"code"`
	Type            string `json:"type"`
	Time            string `json:"time"`
	Seats           Seats  `json:"seats"`
	Waitlist        int    `json:"waitlist"`
	EnrolledPercent int    `json:"enrolled_percent"`
	AlmostFull      bool   `json:"almost_full"`
	Status          string `json:"status"`
}

type ProfessorRecord struct {
	Name           string            `json:"name"`
	Department     string            `json:"department"`
	Rating         float64           `json:"rating"`
	Difficulty     float64           `json:"difficulty"`
	WouldRetake    float64           `json:"would_retake_percent"`
	ReviewCount    int               `json:"review_count"`
	Grades         GradeBars         `json:"grades"`
	HasGradeData   bool              `json:"has_grade_data"`
	GradeNote      string            `json:"grade_note,omitempty"`
	Percentages    *GradePercentages `json:"-"`
	Section        SectionInfo       `json:"section"`
	Tags           []string          `json:"tags"`
	TopReview      string            `json:"top_review"`
	Narrative      string            `json:"ai_insight"`
	HasRatingsData bool              `json:"has_ratings_data"`
	Degraded       bool              `json:"degraded,omitempty"`
	AskAILink      string            `json:"ask_ai_link,omitempty"`
}

type ProfessorProfile struct {
	Name    string          `json:"name"`
	Ratings *RatingsProfile `json:"ratings"`
	Summary string          `json:"summary"`
	Tags    []string        `json:"tags"`
	Review  string          `json:"top_review"`
	Found   bool            `json:"found"`
}

// ProfessorOption is one candidate section handed to the recommendation
// narrator for a course.
type ProfessorOption struct {
	Name        string            `json:"name"`
	SectionCode string            `json:"section_code"`
	MeetingTime string            `json:"meeting_time"`
	Seats       string            `json:"seats"`
	Grades      *GradePercentages `json:"grades"`
	Rating      float64           `json:"rating"`
	Difficulty  float64           `json:"difficulty"`
	WouldRetake float64           `json:"would_retake_percent"`
	Tags        []string          `json:"tags"`
}

type CoursePlan struct {
	Course         Course            `json:"course"`
	Professors     []ProfessorRecord `json:"professors"`
	Recommendation string            `json:"recommendation"`
}

type SearchIntent struct {
	Type          string        `json:"type"`
	Department    string        `json:"department,omitempty"`
	CourseNumber  string        `json:"courseNumber,omitempty"`
	Term          string        `json:"term,omitempty"`
	ProfessorName string        `json:"professorName,omitempty"`
	Intent        string        `json:"intent,omitempty"`
	Filters       IntentFilters `json:"filters"`
	Source        string        `json:"source,omitempty"`
}

type IntentFilters struct {
	EasyGrading   bool `json:"easyGrading"`
	HighRating    bool `json:"highRating"`
	LowDifficulty bool `json:"lowDifficulty"`
}
