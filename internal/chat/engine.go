package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zotprof/backend/internal/ai"
	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/query"
	"github.com/zotprof/backend/internal/service"
)

const maxHistory = 20

const (
	askQuarter      = "What quarter are you planning for?"
	retryQuarter    = "I didn't catch the quarter. Which quarter are you planning for? (e.g., Winter 2026)"
	retryCourses    = "I couldn't find any course codes in that. Which courses do you need? (e.g., ICS 33, MATH 3A)"
	retryGoals      = "What are your goals for this quarter? (e.g., high GPA, learning a lot, a balanced workload)"
	startOverPrompt = "Let's start over. " + askQuarter
)

type Planner interface {
	PlanCourse(ctx context.Context, term models.Term, courseCode, goals string) (models.CoursePlan, error)
}

// Engine drives the planning dialogue. It holds no per-session state: every
// call takes a state and returns the next one.
type Engine struct {
	Extractor query.Extractor
	Planner   Planner
	Narrator  ai.Narrator
	Logger    zerolog.Logger
	Now       func() time.Time
}

// Start opens a conversation. The greeting depends on where the user came from.
func (e *Engine) Start(h query.Handoff) (models.ConversationState, []models.ChatMessage) {
	var greeting string
	switch {
	case h.Context != "":
		greeting = fmt.Sprintf("I see you were searching for %s. Let me help you choose the best professor for this course!\n\n%s", h.Context, askQuarter)
	case h.Professor != "" && h.Course != "":
		greeting = fmt.Sprintf("I see you're interested in %s for %s. Let me help you decide if this is the right fit!\n\n%s", h.Professor, h.Course, askQuarter)
	default:
		greeting = "Hi! I'm your ZotProf AI advisor. Let's build your perfect schedule!\n\n" + askQuarter
	}
	msgs := []models.ChatMessage{assistant(greeting)}
	st := models.ConversationState{
		Stage:     models.StageCollectQuarter,
		Courses:   []string{},
		History:   append([]models.ChatMessage(nil), msgs...),
		UpdatedAt: e.now(),
	}
	return st, msgs
}

// Process applies one user message and returns the new state together with
// the assistant messages produced by this turn.
func (e *Engine) Process(ctx context.Context, state models.ConversationState, msg string) (models.ConversationState, []models.ChatMessage) {
	st := state.Clone()
	msg = strings.TrimSpace(msg)
	metrics.ChatTurns.WithLabelValues(string(st.Stage)).Inc()
	st.History = append(st.History, models.ChatMessage{Role: models.RoleUser, Content: msg})

	var replies []models.ChatMessage
	switch st.Stage {
	case models.StageGreeting, models.StageCollectQuarter:
		replies = e.collectQuarter(&st, msg)
	case models.StageCollectCourses:
		replies = e.collectCourses(&st, msg)
	case models.StageCollectGoals:
		replies = e.collectGoals(ctx, &st, msg)
	case models.StageAnalyzing:
		// A turn interrupted mid-analysis resumes it.
		replies = e.analyze(ctx, &st)
	case models.StageDone:
		replies = e.followUp(ctx, st, msg)
	default:
		e.Logger.Warn().Str("session_id", st.SessionID).Str("stage", string(st.Stage)).Msg("unknown conversation stage, starting over")
		st = models.ConversationState{
			SessionID: st.SessionID,
			Stage:     models.StageCollectQuarter,
			Courses:   []string{},
			History:   st.History,
		}
		replies = []models.ChatMessage{assistant(startOverPrompt)}
	}

	st.History = append(st.History, replies...)
	if len(st.History) > maxHistory {
		st.History = append([]models.ChatMessage(nil), st.History[len(st.History)-maxHistory:]...)
	}
	st.UpdatedAt = e.now()
	return st, replies
}

func (e *Engine) collectQuarter(st *models.ConversationState, msg string) []models.ChatMessage {
	term, ok := e.Extractor.ExtractTerm(msg)
	if !ok {
		st.Stage = models.StageCollectQuarter
		return []models.ChatMessage{assistant(retryQuarter)}
	}
	st.Quarter, st.Year = term.Quarter, term.Year
	st.Stage = models.StageCollectCourses
	return []models.ChatMessage{assistant(fmt.Sprintf("Great, %s it is! Which courses do you need to take? (e.g., ICS 33, MATH 3A)", term))}
}

func (e *Engine) collectCourses(st *models.ConversationState, msg string) []models.ChatMessage {
	courses, ok := e.Extractor.ExtractCourses(msg)
	if !ok {
		return []models.ChatMessage{assistant(retryCourses)}
	}
	st.Courses = courses
	st.Stage = models.StageCollectGoals
	return []models.ChatMessage{assistant(fmt.Sprintf("Got it: %s. %s", strings.Join(courses, ", "), retryGoals))}
}

func (e *Engine) collectGoals(ctx context.Context, st *models.ConversationState, msg string) []models.ChatMessage {
	goals, ok := e.Extractor.ExtractGoals(msg)
	if !ok {
		return []models.ChatMessage{assistant(retryGoals)}
	}
	st.Goals = goals
	st.Stage = models.StageAnalyzing
	intro := assistant(fmt.Sprintf("Perfect! Let me check who's teaching %s in %s...", strings.Join(st.Courses, ", "), st.Term()))
	return append([]models.ChatMessage{intro}, e.analyze(ctx, st)...)
}

// analyze plans every distinct course. A failing course yields an inline
// warning and the rest of the plan continues.
func (e *Engine) analyze(ctx context.Context, st *models.ConversationState) []models.ChatMessage {
	term := st.Term()
	if st.CollectedData == nil {
		st.CollectedData = map[string]models.CoursePlan{}
	}

	var out []models.ChatMessage
	seen := map[string]bool{}
	for _, code := range st.Courses {
		key := courseKey(code)
		if seen[key] {
			continue
		}
		seen[key] = true

		plan, err := e.Planner.PlanCourse(ctx, term, code, st.Goals)
		switch {
		case errors.Is(err, service.ErrCourseNotFound):
			out = append(out, assistant(fmt.Sprintf("I couldn't find %s in %s. It may not be offered that quarter.", code, term)))
		case err != nil:
			e.Logger.Warn().Err(err).Str("session_id", st.SessionID).Str("course", code).Msg("course analysis failed")
			out = append(out, assistant(fmt.Sprintf("I ran into a problem looking up %s, so I'm skipping it for now.", code)))
		default:
			st.CollectedData[code] = plan
			out = append(out, assistant(FormatPlan(plan)))
		}
	}

	st.Stage = models.StageDone
	out = append(out, assistant(fmt.Sprintf("That's my analysis for %s! Ask me to compare professors, or about anything else in your plan.", term)))
	return out
}

func (e *Engine) followUp(ctx context.Context, st models.ConversationState, msg string) []models.ChatMessage {
	if e.Narrator == nil {
		return []models.ChatMessage{assistant(ai.FallbackChat)}
	}
	// History already ends with msg.
	history := st.History[:len(st.History)-1]
	reply, err := e.Narrator.ChatReply(ctx, ai.ChatInput{History: history, Message: withPlanContext(st, msg)})
	if err != nil || strings.TrimSpace(reply) == "" {
		if err != nil {
			e.Logger.Warn().Err(err).Str("session_id", st.SessionID).Msg("chat reply failed")
		}
		reply = ai.FallbackChat
	}
	return []models.ChatMessage{assistant(reply)}
}

func withPlanContext(st models.ConversationState, msg string) string {
	if len(st.Courses) == 0 {
		return msg
	}
	return fmt.Sprintf("%s\n\n(Planning %s for %s. Goals: %s.)", msg, strings.Join(st.Courses, ", "), st.Term(), st.Goals)
}

// FormatPlan renders one course plan as a chat message.
func FormatPlan(plan models.CoursePlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", plan.Course.Code())
	if plan.Course.Title != "" {
		fmt.Fprintf(&b, " - %s", plan.Course.Title)
	}
	b.WriteString("\n")
	for _, p := range plan.Professors {
		fmt.Fprintf(&b, "- %s | %s | %d/%d seats", p.Name, p.Section.Time, p.Section.Seats.Available, p.Section.Seats.Total)
		if p.Section.AlmostFull {
			b.WriteString(" (almost full)")
		}
		if p.HasGradeData {
			fmt.Fprintf(&b, " | %d%% A's, %d%% B's", p.Grades.A, p.Grades.B)
		}
		if p.HasRatingsData {
			fmt.Fprintf(&b, " | %.1f/5", p.Rating)
		}
		b.WriteString("\n")
	}
	if plan.Recommendation != "" {
		b.WriteString("\n")
		b.WriteString(plan.Recommendation)
	}
	return strings.TrimRight(b.String(), "\n")
}

func courseKey(code string) string {
	if q, ok := query.ParseSearchQuery(code); ok {
		return q.String()
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

func assistant(content string) models.ChatMessage {
	return models.ChatMessage{Role: models.RoleAssistant, Content: content}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}
