package query

import (
	"errors"
	"regexp"
	"strings"
)

var ErrUnparseable = errors.New("query does not look like DEPT NUMBER")

type SearchQuery struct {
	Department   string `json:"department"`
	CourseNumber string `json:"courseNumber"`
}

func (q SearchQuery) String() string {
	return q.Department + " " + q.CourseNumber
}

var searchPattern = regexp.MustCompile(`([A-Z&\s]+?)\s*(\d+[A-Z]*)`)

var whitespace = regexp.MustCompile(`\s+`)

// departmentAliases maps what students type to the catalog's department codes.
var departmentAliases = map[string]string{
	"ICS":         "I&C SCI",
	"I&C SCI":     "I&C SCI",
	"COMPSCI":     "COMPSCI",
	"CS":          "COMPSCI",
	"IN4MATX":     "IN4MATX",
	"INFORMATICS": "IN4MATX",
	"INFO":        "IN4MATX",
	"MATH":        "MATH",
	"MATHEMATICS": "MATH",
	"WRITING":     "WRITING",
	"WR":          "WRITING",
	"BIO SCI":     "BIO SCI",
	"BIOSCI":      "BIO SCI",
	"BIO":         "BIO SCI",
	"CHEM":        "CHEM",
	"CHEMISTRY":   "CHEM",
	"PHYSICS":     "PHYSICS",
	"PHYS":        "PHYSICS",
}

// ParseSearchQuery extracts a department and course number from free text
// such as "ics 33" or "MATH 3A". ok is false when the text has no
// DEPT NUMBER shape; callers treat that as "no structured query".
//
// Departments missing from the alias table pass through uppercased, so a
// typo reaches the catalog as-is and simply finds nothing.
func ParseSearchQuery(raw string) (SearchQuery, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	m := searchPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return SearchQuery{}, false
	}
	dept := NormalizeDepartment(m[1])
	if dept == "" {
		return SearchQuery{}, false
	}
	return SearchQuery{Department: dept, CourseNumber: m[2]}, true
}

// NormalizeDepartment collapses whitespace, uppercases and resolves aliases.
func NormalizeDepartment(raw string) string {
	dept := whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(raw)), " ")
	if mapped, ok := departmentAliases[dept]; ok {
		return mapped
	}
	return dept
}

// IsKnownDepartment reports whether dept is in the alias table, either as an
// alias or as a canonical code.
func IsKnownDepartment(dept string) bool {
	_, ok := departmentAliases[whitespace.ReplaceAllString(strings.ToUpper(strings.TrimSpace(dept)), " ")]
	return ok
}
