package ai

import (
	"fmt"
	"strings"

	"github.com/zotprof/backend/internal/models"
)

const advisorSystemPrompt = "You are an expert academic advisor at UCI with deep knowledge of teaching styles and student needs. Provide honest, balanced, and actionable advice."

const intentSystemPrompt = `You are a UCI course search query parser. Analyze the user's query and extract structured information.

Return ONLY a valid JSON object with this exact structure:
{
  "type": "class" | "professor" | "recommendation",
  "department": string or null (e.g., "I&C SCI", "COMPSCI", "MATH"),
  "courseNumber": string or null (e.g., "33", "2A"),
  "term": string or null (e.g., "Winter 2025", "Spring 2025"),
  "professorName": string or null (e.g., "Pattis", "Thornton"),
  "intent": "search" | "comparison" | "recommendation",
  "filters": {"easyGrading": boolean, "highRating": boolean, "lowDifficulty": boolean}
}

Common abbreviations: "ics" is "I&C SCI", "cs" is "COMPSCI", "w25" or "winter 25" is "Winter 2025", "f24" is "Fall 2024".

Return ONLY the JSON object, no other text.`

func orNA(v float64) string {
	if v == 0 {
		return "N/A"
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", v), "0"), ".")
}

func reviewLines(p *models.RatingsProfile, limit int, withMeta bool) string {
	if p == nil || len(p.TopReviews) == 0 {
		return "No reviews available"
	}
	var b strings.Builder
	for i, r := range p.TopReviews {
		if i >= limit {
			break
		}
		if withMeta {
			class := r.Class
			if class == "" {
				class = "Unknown Course"
			}
			fmt.Fprintf(&b, "- %q (%s/5, %s)\n", r.Comment, orNA(r.Helpful), class)
			continue
		}
		fmt.Fprintf(&b, "- %q\n", r.Comment)
	}
	return strings.TrimRight(b.String(), "\n")
}

func gradeLine(g *models.GradePercentages) string {
	if g == nil {
		return "No grade data available"
	}
	return fmt.Sprintf("A %d%%, B %d%%, C %d%%, D %d%%, F %d%% (%d grades)", g.A, g.B, g.C, g.D, g.F, g.TotalGrades)
}

func ratingOf(p *models.RatingsProfile) (rating, difficulty, retake float64, count int) {
	if p == nil {
		return 0, 0, 0, 0
	}
	return p.AvgRating, p.AvgDifficulty, p.WouldRetakePercent, p.NumRatings
}

func insightPrompt(in InsightInput) string {
	rating, difficulty, _, _ := ratingOf(in.Ratings)
	return fmt.Sprintf(`Generate a 1-2 sentence insight about Professor %s for UCI students taking %s.

RATING: %s/5
DIFFICULTY: %s/5
GRADES: %s

TOP REVIEWS:
%s

Create an honest, specific insight that captures their teaching style. Be concise and actionable (max 40 words).`,
		in.Name, in.Course, orNA(rating), orNA(difficulty), gradeLine(in.Grades), reviewLines(in.Ratings, 5, false))
}

func recommendPrompt(in RecommendInput) string {
	var opts strings.Builder
	for _, o := range in.Options {
		tags := "Not enough data"
		if len(o.Tags) > 0 {
			tags = strings.Join(o.Tags, ", ")
		}
		fmt.Fprintf(&opts, "\n%s:\n- Rating: %s/5\n- Difficulty: %s/5\n- Would Take Again: %s%%\n- Grades: %s\n- Key review themes: %s\n- Section: %s (%s), seats %s\n",
			o.Name, orNA(o.Rating), orNA(o.Difficulty), orNA(o.WouldRetake), gradeLine(o.Grades), tags, o.SectionCode, o.MeetingTime, o.Seats)
	}
	goals := in.Goals
	if strings.TrimSpace(goals) == "" {
		goals = "Not specified"
	}
	return fmt.Sprintf(`You are advising a UCI student on professor selection.

COURSE: %s

STUDENT GOALS: %s

PROFESSOR OPTIONS:
%s
Recommend the best professor for this specific student. In 2-3 sentences, explain:
1. Which professor you recommend
2. Why they're the best fit based on the data
3. One specific piece of advice

Be direct, actionable, and honest. Don't oversell - mention trade-offs if relevant.`, in.Course, goals, opts.String())
}

func chatPrompt(in ChatInput) string {
	return fmt.Sprintf(`You are ZotProf AI, a friendly UCI academic advisor chatbot.

Help students plan their course schedules by:
- Asking what quarter they're planning for
- Finding out which courses they need
- Understanding their goals (GPA, learning, balance)
- Providing personalized recommendations

Be conversational and friendly. Keep responses concise (3-5 sentences per message).

User's message: %s

Respond naturally to continue the conversation.`, in.Message)
}

func summaryPrompt(in SummaryInput) string {
	rating, difficulty, retake, count := ratingOf(in.Ratings)
	dept := in.Department
	if dept == "" && in.Ratings != nil {
		dept = in.Ratings.Department
	}
	if dept == "" {
		dept = "Unknown"
	}
	return fmt.Sprintf(`You are an academic advisor helping UCI students choose professors. Generate a comprehensive, honest, and balanced summary.

PROFESSOR: %s
DEPARTMENT: %s

RATINGS DATA:
- Rating: %s/5 (%d ratings)
- Difficulty: %s/5
- Would Take Again: %s%%

RECENT REVIEWS (Top 10):
%s

GRADE DISTRIBUTION:
%s

Generate a 2-3 paragraph summary (200-300 words) that:
1. First paragraph: Overall teaching style and what students should expect
2. Second paragraph: Specific strengths and potential challenges based on actual student feedback
3. Third paragraph: Who this professor is best suited for

Be balanced, honest, and quote actual patterns from reviews. Use a conversational but professional tone.`,
		in.Name, dept, orNA(rating), count, orNA(difficulty), orNA(retake), reviewLines(in.Ratings, 10, true), gradeLine(in.Grades))
}

// chatHistory keeps the last six turns the chat prompt is allowed to see.
func chatHistory(h []models.ChatMessage) []models.ChatMessage {
	if len(h) > 6 {
		h = h[len(h)-6:]
	}
	return h
}
