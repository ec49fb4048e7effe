package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zotprof/backend/internal/models"
)

func TestParseTerm(t *testing.T) {
	cases := map[string]models.Term{
		"Winter 2026":                   {Quarter: "Winter", Year: "2026"},
		"spring 25":                     {Quarter: "Spring", Year: "2025"},
		"I'm planning for FALL '24":     {Quarter: "Fall", Year: "2024"},
		"summer quarter 2025 please":    {Quarter: "Summer", Year: "2025"},
		"next up: winter, 2027 quarter": {Quarter: "Winter", Year: "2027"},
	}
	for in, want := range cases {
		got, ok := ParseTerm(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"next quarter", "2026", "winter", "winter 202"} {
		_, ok := ParseTerm(in)
		assert.False(t, ok, in)
	}
}

func TestExtractCourses(t *testing.T) {
	var ex RegexExtractor

	got, ok := ex.ExtractCourses("ICS 33, MATH 3A")
	require.True(t, ok)
	assert.Equal(t, []string{"ICS 33", "MATH 3A"}, got)

	got, ok = ex.ExtractCourses("I need ics 33 and also I&C SCI 33 plus writing 39b")
	require.True(t, ok)
	assert.Equal(t, []string{"ICS 33", "WRITING 39B"}, got)

	got, ok = ex.ExtractCourses("I need 2 classes for winter 2026")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestExtractGoals(t *testing.T) {
	var ex RegexExtractor
	g, ok := ex.ExtractGoals("  High GPA ")
	assert.True(t, ok)
	assert.Equal(t, "High GPA", g)

	_, ok = ex.ExtractGoals("   ")
	assert.False(t, ok)
}
