package search

import (
	"net/url"
	"strings"

	"github.com/collegiate-app/collegiate/internal/model"
)

// Normalize flattens one catalog record into the model shape. Records
// missing an id or a school name are unusable and come back nil.
func Normalize(rec APICollege) *model.College {
	if rec.ID == nil {
		return nil
	}
	name := strings.TrimSpace(rec.Latest.School.Name)
	if name == "" {
		return nil
	}

	c := &model.College{
		ID:                *rec.ID,
		Name:              name,
		City:              strValue(rec.Latest.School.City),
		State:             strValue(rec.Latest.School.State),
		Website:           strValue(rec.Latest.School.SchoolURL),
		AcceptanceRate:    rec.Latest.Admissions.AdmissionRate.Overall,
		StudentSize:       rec.Latest.Student.Size,
		TuitionInState:    rec.Latest.Cost.Tuition.InState,
		TuitionOutOfState: rec.Latest.Cost.Tuition.OutOfState,
		ACT75th:           rec.Latest.Admissions.ACTScores.Percentile75.Cumulative,
		OnlineOnly:        intValue(rec.Latest.School.OnlineOnly) == 1,
	}

	// The 75th percentile SAT is the sum of reading and math, reported
	// only when at least one of the two sections is present.
	reading := intValue(rec.Latest.Admissions.SATScores.Percentile75.CriticalReading)
	math := intValue(rec.Latest.Admissions.SATScores.Percentile75.Math)
	if reading > 0 || math > 0 {
		sum := reading + math
		c.SAT75th = &sum
	}

	c.LogoURL = LogoURL(c.Website)
	return c
}

// NormalizeAll maps a result page, dropping records that cannot be used.
func NormalizeAll(recs []APICollege) []model.College {
	out := make([]model.College, 0, len(recs))
	for _, rec := range recs {
		if c := Normalize(rec); c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// LogoURL derives a logo image URL from a school website via Google's
// favicon service. Returns "" when there is no website to derive from.
func LogoURL(website string) string {
	domain := strings.TrimSpace(website)
	if domain == "" {
		return ""
	}
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "www.")
	if i := strings.IndexByte(domain, '/'); i >= 0 {
		domain = domain[:i]
	}
	if domain == "" {
		return ""
	}
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(domain) + "&sz=64"
}

// HasSufficientData reports whether a record carries enough headline
// metrics to be worth showing. State-scoped searches accept sparser
// records (2 of 5 metrics) than nationwide ones (3 of 5).
func HasSufficientData(c model.College, stateScoped bool) bool {
	count := 0
	if c.AcceptanceRate != nil {
		count++
	}
	if c.StudentSize != nil {
		count++
	}
	if c.TuitionInState != nil {
		count++
	}
	if c.SAT75th != nil {
		count++
	}
	if c.ACT75th != nil {
		count++
	}
	min := 3
	if stateScoped {
		min = 2
	}
	return count >= min
}

// FilterQuality drops records below the data-quality floor.
func FilterQuality(colleges []model.College, stateScoped bool) []model.College {
	out := make([]model.College, 0, len(colleges))
	for _, c := range colleges {
		if HasSufficientData(c, stateScoped) {
			out = append(out, c)
		}
	}
	return out
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func intValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
