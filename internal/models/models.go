package models

import (
	"fmt"
	"strconv"
	"strings"
)

type Term struct {
	Quarter string `json:"quarter"`
	Year    string `json:"year"`
}

var quarterOrder = []string{"Winter", "Spring", "Summer", "Fall"}

func (t Term) String() string {
	if t.Quarter == "" && t.Year == "" {
		return ""
	}
	return strings.TrimSpace(t.Quarter + " " + t.Year)
}

func (t Term) IsZero() bool {
	return t.Quarter == "" || t.Year == ""
}

// Next returns the academic quarter that follows t. Fall rolls over into
// Winter of the next calendar year.
func (t Term) Next() Term {
	idx := -1
	for i, q := range quarterOrder {
		if strings.EqualFold(q, t.Quarter) {
			idx = i
			break
		}
	}
	if idx == -1 {
		return t
	}
	if idx == len(quarterOrder)-1 {
		year, err := strconv.Atoi(t.Year)
		if err != nil {
			return t
		}
		return Term{Quarter: quarterOrder[0], Year: fmt.Sprint(year + 1)}
	}
	return Term{Quarter: quarterOrder[idx+1], Year: t.Year}
}

type Meeting struct {
	Days      string   `json:"days"`
	Time      string   `json:"time"`
	Buildings []string `json:"bldg"`
}

type Section struct {
	Code         string    `json:"section_code"`
	Type         string    `json:"section_type"`
	Number       string    `json:"section_num"`
	Units        string    `json:"units"`
	Instructors  []string  `json:"instructors"`
	Meetings     []Meeting `json:"meetings"`
	FinalExam    string    `json:"final_exam"`
	Capacity     int       `json:"max_capacity"`
	Enrolled     int       `json:"enrolled"`
	Waitlist     int       `json:"waitlist"`
	WaitlistCap  int       `json:"waitlist_cap"`
	Requested    int       `json:"requested"`
	Restrictions string    `json:"restrictions"`
	Status       string    `json:"status"`
	Comment      string    `json:"comment"`
}

type Course struct {
	DepartmentCode   string    `json:"department_code"`
	CourseNumber     string    `json:"course_number"`
	Title            string    `json:"title"`
	Comment          string    `json:"comment"`
	PrerequisiteLink string    `json:"prerequisite_link,omitempty"`
	Term             Term      `json:"term"`
	Sections         []Section `json:"sections"`
}

func (c Course) Code() string {
	return strings.TrimSpace(c.DepartmentCode + " " + c.CourseNumber)
}

// GradeRecord holds raw letter-grade counts for one instructor/course pair.
type GradeRecord struct {
	Year         string `json:"year"`
	Quarter      string `json:"quarter"`
	Instructor   string `json:"instructor"`
	Department   string `json:"department"`
	CourseNumber string `json:"course_number"`
	SectionCount int    `json:"section_count"`
	A            int    `json:"a"`
	B            int    `json:"b"`
	C            int    `json:"c"`
	D            int    `json:"d"`
	F            int    `json:"f"`
	P            int    `json:"p"`
	NP           int    `json:"np"`
	W            int    `json:"w"`
}

type GradePercentages struct {
	A           int `json:"a_percent"`
	B           int `json:"b_percent"`
	C           int `json:"c_percent"`
	D           int `json:"d_percent"`
	F           int `json:"f_percent"`
	TotalGrades int `json:"total_grades"`
}

type Review struct {
	Comment    string   `json:"comment"`
	Class      string   `json:"class"`
	Date       string   `json:"date"`
	Helpful    float64  `json:"helpful_rating"`
	Difficulty float64  `json:"difficulty_rating"`
	Tags       []string `json:"tags,omitempty"`
}

type RatingsProfile struct {
	FirstName          string   `json:"first_name"`
	LastName           string   `json:"last_name"`
	Department         string   `json:"department"`
	AvgRating          float64  `json:"avg_rating"`
	AvgDifficulty      float64  `json:"avg_difficulty"`
	WouldRetakePercent float64  `json:"would_retake_percent"`
	NumRatings         int      `json:"num_ratings"`
	TopTags            []string `json:"top_tags"`
	TopReviews         []Review `json:"top_reviews"`
	Source             string   `json:"source"`
}

func (p RatingsProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}
