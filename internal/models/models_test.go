package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTermNext(t *testing.T) {
	cases := []struct {
		in   Term
		want Term
	}{
		{Term{"Winter", "2026"}, Term{"Spring", "2026"}},
		{Term{"Spring", "2026"}, Term{"Summer", "2026"}},
		{Term{"Summer", "2026"}, Term{"Fall", "2026"}},
		{Term{"Fall", "2026"}, Term{"Winter", "2027"}},
		{Term{"fall", "2025"}, Term{"Winter", "2026"}},
		{Term{"Autumn", "2026"}, Term{"Autumn", "2026"}},
		{Term{"Fall", "soon"}, Term{"Fall", "soon"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.in.Next(), tc.in.String())
	}
}

func TestTermString(t *testing.T) {
	assert.Equal(t, "Winter 2026", Term{Quarter: "Winter", Year: "2026"}.String())
	assert.Equal(t, "", Term{}.String())
	assert.True(t, Term{Quarter: "Winter"}.IsZero())
}

func TestConversationStateClone(t *testing.T) {
	st := ConversationState{
		Courses:       []string{"ICS 33"},
		History:       []ChatMessage{{Role: RoleUser, Content: "hi"}},
		CollectedData: map[string]CoursePlan{"ICS 33": {Recommendation: "x"}},
	}
	cp := st.Clone()
	cp.Courses[0] = "MATH 3A"
	cp.History[0].Content = "changed"
	cp.CollectedData["MATH 3A"] = CoursePlan{}

	assert.Equal(t, "ICS 33", st.Courses[0])
	assert.Equal(t, "hi", st.History[0].Content)
	assert.Len(t, st.CollectedData, 1)
}

func TestStageValid(t *testing.T) {
	assert.True(t, StageDone.Valid())
	assert.False(t, Stage("lost").Valid())
}
