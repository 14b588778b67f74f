package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/collegiate-app/collegiate/internal/scorecard"
	"github.com/collegiate-app/collegiate/internal/search"
)

// CollegeHandler proxies college searches to the Scorecard API and
// reshapes the flat dotted-key results into the nested form clients
// consume.
type CollegeHandler struct {
	scorecard *scorecard.Client
	logger    *slog.Logger
}

func NewCollegeHandler(sc *scorecard.Client, logger *slog.Logger) *CollegeHandler {
	return &CollegeHandler{scorecard: sc, logger: logger}
}

func (h *CollegeHandler) Search(w http.ResponseWriter, r *http.Request) {
	if !h.scorecard.Configured() {
		writeError(w, http.StatusInternalServerError, "Missing COLLEGE_SCORECARD_API_KEY in backend env.")
		return
	}

	q := scorecard.Query{
		Name:       r.URL.Query().Get("name"),
		State:      r.URL.Query().Get("state"),
		OnlineOnly: strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("online_only")), "true"),
		SortBy:     strings.TrimSpace(r.URL.Query().Get("sort_by")),
		SortOrder:  strings.ToLower(strings.TrimSpace(r.URL.Query().Get("sort_order"))),
	}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil {
		q.Page = page
	}
	if perPage, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("per_page"))); err == nil {
		q.PerPage = perPage
	}

	page, err := h.scorecard.Search(r.Context(), q)
	if err != nil {
		h.logger.Error("scorecard search failed", "error", err)
		writeError(w, http.StatusBadGateway, fmt.Sprintf("Failed to fetch College Scorecard data: %v", err))
		return
	}

	results := make([]search.APICollege, 0, len(page.Results))
	for _, raw := range page.Results {
		if rec, ok := reshapeCollege(raw); ok {
			results = append(results, rec)
		}
	}

	metadata := page.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	writeJSON(w, http.StatusOK, search.APIResponse{
		Metadata: metadata,
		Results:  results,
	})
}

// reshapeCollege converts one flat upstream record into the nested wire
// shape. Records without a school name are unusable.
func reshapeCollege(raw map[string]any) (search.APICollege, bool) {
	var rec search.APICollege

	name, _ := raw["school.name"].(string)
	if name == "" {
		return rec, false
	}

	rec.ID = toInt64(raw["id"])
	rec.Latest.School.Name = name
	rec.Latest.School.City = toString(raw["school.city"])
	rec.Latest.School.State = toString(raw["school.state"])
	rec.Latest.School.SchoolURL = toString(raw["school.school_url"])
	rec.Latest.School.OnlineOnly = toInt(raw["school.online_only"])
	rec.Latest.Student.Size = toInt(raw["latest.student.size"])
	rec.Latest.Admissions.AdmissionRate.Overall = toFloat(raw["latest.admissions.admission_rate.overall"])
	rec.Latest.Admissions.SATScores.Percentile75.CriticalReading = toInt(raw["latest.admissions.sat_scores.75th_percentile.critical_reading"])
	rec.Latest.Admissions.SATScores.Percentile75.Math = toInt(raw["latest.admissions.sat_scores.75th_percentile.math"])
	rec.Latest.Admissions.ACTScores.Percentile75.Cumulative = toInt(raw["latest.admissions.act_scores.75th_percentile.cumulative"])
	rec.Latest.Cost.Tuition.InState = toInt(raw["latest.cost.tuition.in_state"])
	rec.Latest.Cost.Tuition.OutOfState = toInt(raw["latest.cost.tuition.out_of_state"])

	return rec, true
}

// toFloat tolerates the upstream's mix of numbers and numeric strings.
func toFloat(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case int:
		f := float64(n)
		return &f
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			return &f
		}
	}
	return nil
}

func toInt(v any) *int {
	f := toFloat(v)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func toInt64(v any) *int64 {
	f := toFloat(v)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

func toString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}
