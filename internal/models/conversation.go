package models

import "time"

type Stage string

const (
	StageGreeting       Stage = "greeting"
	StageCollectQuarter Stage = "collect-quarter"
	StageCollectCourses Stage = "collect-courses"
	StageCollectGoals   Stage = "collect-goals"
	StageAnalyzing      Stage = "analyzing"
	StageDone           Stage = "done"
)

func (s Stage) Valid() bool {
	switch s {
	case StageGreeting, StageCollectQuarter, StageCollectCourses, StageCollectGoals, StageAnalyzing, StageDone:
		return true
	}
	return false
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationState is the whole per-session dialogue state. It is only
// changed by the conversation engine, which returns a new value per turn.
type ConversationState struct {
	SessionID     string                `json:"session_id"`
	Stage         Stage                 `json:"stage"`
	Quarter       string                `json:"quarter"`
	Year          string                `json:"year"`
	Courses       []string              `json:"courses"`
	Goals         string                `json:"goals"`
	CollectedData map[string]CoursePlan `json:"collected_data,omitempty"`
	History       []ChatMessage         `json:"history"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (s ConversationState) Term() Term {
	return Term{Quarter: s.Quarter, Year: s.Year}
}

// Clone returns a copy that shares no slices or maps with s.
func (s ConversationState) Clone() ConversationState {
	out := s
	out.Courses = append([]string(nil), s.Courses...)
	out.History = append([]ChatMessage(nil), s.History...)
	if s.CollectedData != nil {
		out.CollectedData = make(map[string]CoursePlan, len(s.CollectedData))
		for k, v := range s.CollectedData {
			out.CollectedData[k] = v
		}
	}
	return out
}
