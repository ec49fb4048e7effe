package grades

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zotprof/backend/internal/metrics"
	"github.com/zotprof/backend/internal/models"
	"github.com/zotprof/backend/internal/utils"
)

type Fetcher interface {
	Fetch(ctx context.Context, instructor, courseNumber string) ([]models.GradeRecord, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

type aggregateResponse struct {
	OK   bool `json:"ok"`
	Data struct {
		SectionList []struct {
			Year         string   `json:"year"`
			Quarter      string   `json:"quarter"`
			Department   string   `json:"department"`
			CourseNumber string   `json:"courseNumber"`
			Instructors  []string `json:"instructors"`
		} `json:"sectionList"`
		GradeDistribution struct {
			A  float64 `json:"gradeACount"`
			B  float64 `json:"gradeBCount"`
			C  float64 `json:"gradeCCount"`
			D  float64 `json:"gradeDCount"`
			F  float64 `json:"gradeFCount"`
			P  float64 `json:"gradePCount"`
			NP float64 `json:"gradeNPCount"`
			W  float64 `json:"gradeWCount"`
		} `json:"gradeDistribution"`
	} `json:"data"`
}

// Fetch returns one aggregate record for the instructor/course pair, or no
// records when the source has none.
func (c *Client) Fetch(ctx context.Context, instructor, courseNumber string) ([]models.GradeRecord, error) {
	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = "https://anteaterapi.com/v2/rest"
	}

	params := url.Values{}
	params.Set("instructor", utils.LastName(instructor))
	params.Set("courseNumber", strings.TrimSpace(courseNumber))
	endpoint := fmt.Sprintf("%s/grades/aggregate?%s", strings.TrimRight(baseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		metrics.Observe(metrics.SourceGrades, err, false)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := fmt.Errorf("grades http error: %s", resp.Status)
		metrics.Observe(metrics.SourceGrades, err, false)
		return nil, err
	}

	var payload aggregateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.Observe(metrics.SourceGrades, err, false)
		return nil, fmt.Errorf("decode grades: %w", err)
	}
	if !payload.OK || len(payload.Data.SectionList) == 0 {
		metrics.Observe(metrics.SourceGrades, nil, false)
		return nil, nil
	}
	metrics.Observe(metrics.SourceGrades, nil, true)

	first := payload.Data.SectionList[0]
	dist := payload.Data.GradeDistribution
	rec := models.GradeRecord{
		Year:         first.Year,
		Quarter:      first.Quarter,
		Instructor:   instructor,
		Department:   first.Department,
		CourseNumber: first.CourseNumber,
		SectionCount: len(payload.Data.SectionList),
		A:            int(dist.A),
		B:            int(dist.B),
		C:            int(dist.C),
		D:            int(dist.D),
		F:            int(dist.F),
		P:            int(dist.P),
		NP:           int(dist.NP),
		W:            int(dist.W),
	}
	if len(first.Instructors) > 0 {
		rec.Instructor = first.Instructors[0]
	}
	return []models.GradeRecord{rec}, nil
}

// CalculatePercentages sums the letter grades A through F across records.
// P/NP/W are excluded from the total. Nil means there is nothing to show.
func CalculatePercentages(records []models.GradeRecord) *models.GradePercentages {
	var a, b, c, d, f int
	for _, r := range records {
		a += r.A
		b += r.B
		c += r.C
		d += r.D
		f += r.F
	}
	total := a + b + c + d + f
	if total == 0 {
		return nil
	}
	p := roundPercentages([]int{a, b, c, d, f}, total)
	return &models.GradePercentages{
		A:           p[0],
		B:           p[1],
		C:           p[2],
		D:           p[3],
		F:           p[4],
		TotalGrades: total,
	}
}

// roundPercentages rounds each share to the nearest percent, then nudges the
// values with the largest rounding error until the sum is within 100 ± 1.
func roundPercentages(counts []int, total int) []int {
	out := make([]int, len(counts))
	errs := make([]float64, len(counts))
	sum := 0
	for i, n := range counts {
		exact := float64(n) / float64(total) * 100
		out[i] = int(math.Round(exact))
		errs[i] = float64(out[i]) - exact
		sum += out[i]
	}
	for sum > 101 || sum < 99 {
		step := -1
		if sum < 99 {
			step = 1
		}
		pick := -1
		for i := range out {
			if step < 0 && out[i] == 0 {
				continue
			}
			if pick == -1 || errs[i]*float64(-step) > errs[pick]*float64(-step) {
				pick = i
			}
		}
		out[pick] += step
		errs[pick] += float64(step)
		sum += step
	}
	return out
}

// Bars converts percentages to the zero-filled display form.
func Bars(p *models.GradePercentages) models.GradeBars {
	if p == nil {
		return models.GradeBars{}
	}
	return models.GradeBars{A: p.A, B: p.B, C: p.C, D: p.D, F: p.F}
}
