package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zotprof/backend/internal/models"
)

// Extractor pulls structured values out of a chat message. Every method
// reports failure through its bool so the dialogue can re-prompt.
type Extractor interface {
	ExtractTerm(msg string) (models.Term, bool)
	ExtractCourses(msg string) ([]string, bool)
	ExtractGoals(msg string) (string, bool)
}

type RegexExtractor struct{}

var termPattern = regexp.MustCompile(`(?i)\b(fall|winter|spring|summer)\b[\s,]*(?:quarter[\s,]*)?'?(\d{4}|\d{2})\b`)

var coursePattern = regexp.MustCompile(`\b(I&C SCI|BIO SCI|[A-Z][A-Z&0-9]{1,9})\s*(\d{1,3}[A-Z]{0,2})\b`)

func (RegexExtractor) ExtractTerm(msg string) (models.Term, bool) {
	return ParseTerm(msg)
}

// ExtractCourses returns every DEPT NUMBER token in msg, uppercased as typed,
// deduplicated after alias resolution and kept in input order.
func (RegexExtractor) ExtractCourses(msg string) ([]string, bool) {
	upper := strings.ToUpper(msg)
	seen := map[string]struct{}{}
	var out []string
	for _, m := range coursePattern.FindAllStringSubmatch(upper, -1) {
		dept := strings.TrimSpace(m[1])
		if isSeason(dept) || isFillerWord(dept) {
			continue
		}
		key := NormalizeDepartment(dept) + " " + m[2]
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, dept+" "+m[2])
	}
	return out, len(out) > 0
}

func (RegexExtractor) ExtractGoals(msg string) (string, bool) {
	goals := strings.TrimSpace(msg)
	return goals, goals != ""
}

// ParseTerm reads a season and a 2- or 4-digit year ("Winter 2026", "w/ fall 25").
func ParseTerm(msg string) (models.Term, bool) {
	m := termPattern.FindStringSubmatch(msg)
	if m == nil {
		return models.Term{}, false
	}
	year := m[2]
	if len(year) == 2 {
		year = fmt.Sprintf("20%s", year)
	}
	return models.Term{Quarter: strings.ToUpper(m[1][:1]) + strings.ToLower(m[1][1:]), Year: year}, true
}

func isSeason(s string) bool {
	switch s {
	case "FALL", "WINTER", "SPRING", "SUMMER":
		return true
	}
	return false
}

// fillerWords are words that commonly precede a number in chat ("need 2
// classes") and would otherwise read as a department.
var fillerWords = map[string]struct{}{
	"NEED": {}, "TAKE": {}, "TAKING": {}, "AND": {}, "THE": {}, "FOR": {}, "WITH": {},
	"PLUS": {}, "ABOUT": {}, "TOP": {}, "ONLY": {}, "JUST": {}, "LIKE": {}, "WANT": {},
	"HAVE": {}, "GET": {}, "ALSO": {}, "OR": {}, "TO": {}, "IN": {}, "MAYBE": {}, "YEAR": {},
}

func isFillerWord(s string) bool {
	_, ok := fillerWords[s]
	return ok
}
