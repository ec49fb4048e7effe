package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/zotprof/backend/internal/models"
)

var ErrUpstream = errors.New("catalog upstream error")

// UpstreamError is returned for transport failures and non-2xx replies so
// callers can decide whether to try another term.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog request failed: %v", e.Err)
	}
	return fmt.Sprintf("catalog http error: %d", e.Status)
}

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

const DefaultAlmostFullThreshold = 80

// EnrolledPercent is round(enrolled/capacity*100). A section without a
// capacity reports 0.
func EnrolledPercent(s models.Section) int {
	if s.Capacity <= 0 {
		return 0
	}
	return int(math.Round(float64(s.Enrolled) / float64(s.Capacity) * 100))
}

// AlmostFull is the only almost-full rule in the codebase: enrolled percent
// strictly above threshold.
func AlmostFull(s models.Section, threshold int) bool {
	if threshold <= 0 {
		threshold = DefaultAlmostFullThreshold
	}
	return EnrolledPercent(s) > threshold
}

func SeatsAvailable(s models.Section) int {
	if avail := s.Capacity - s.Enrolled; avail > 0 {
		return avail
	}
	return 0
}

func FormatMeetingTime(s models.Section) string {
	if len(s.Meetings) == 0 {
		return "TBA"
	}
	m := s.Meetings[0]
	out := strings.TrimSpace(m.Days + " " + m.Time)
	if out == "" || strings.EqualFold(out, "TBA") {
		return "TBA"
	}
	return out
}

// IsNamedInstructor is false for the STAFF/TBA placeholders the catalog uses
// when nobody is assigned yet.
func IsNamedInstructor(name string) bool {
	n := strings.ToUpper(strings.TrimSpace(name))
	return n != "" && n != "STAFF" && n != "TBA"
}

// PrimaryInstructor returns the first named instructor of a section, or
// "STAFF" when none is assigned.
func PrimaryInstructor(s models.Section) string {
	for _, name := range s.Instructors {
		if IsNamedInstructor(name) {
			return strings.TrimSpace(name)
		}
	}
	return "STAFF"
}
