package search

// The catalog endpoint returns records in the College Scorecard's nested
// shape. These types are shared by the client (which consumes them) and
// the backend handler (which produces them).

type APISchool struct {
	Name       string  `json:"name"`
	City       *string `json:"city"`
	State      *string `json:"state"`
	SchoolURL  *string `json:"school_url"`
	OnlineOnly *int    `json:"online_only"`
}

type APIStudent struct {
	Size *int `json:"size"`
}

type APIAdmissionRate struct {
	Overall *float64 `json:"overall"`
}

type APISATPercentile75 struct {
	CriticalReading *int `json:"critical_reading"`
	Math            *int `json:"math"`
}

type APISATScores struct {
	Percentile75 APISATPercentile75 `json:"percentile_75"`
}

type APIACTPercentile75 struct {
	Cumulative *int `json:"cumulative"`
}

type APIACTScores struct {
	Percentile75 APIACTPercentile75 `json:"percentile_75"`
}

type APIAdmissions struct {
	AdmissionRate APIAdmissionRate `json:"admission_rate"`
	SATScores     APISATScores     `json:"sat_scores"`
	ACTScores     APIACTScores     `json:"act_scores"`
}

type APITuition struct {
	InState    *int `json:"in_state"`
	OutOfState *int `json:"out_of_state"`
}

type APICost struct {
	Tuition APITuition `json:"tuition"`
}

type APILatest struct {
	School     APISchool     `json:"school"`
	Student    APIStudent    `json:"student"`
	Admissions APIAdmissions `json:"admissions"`
	Cost       APICost       `json:"cost"`
}

type APICollege struct {
	ID     *int64    `json:"id"`
	Latest APILatest `json:"latest"`
}

type APIResponse struct {
	Metadata map[string]any `json:"metadata,omitempty"`
	Results  []APICollege   `json:"results"`
}
