package model

import "time"

// College is the normalized catalog record surfaced to callers. Numeric
// fields are pointers because the upstream data is sparse; nil means the
// source reported nothing.
type College struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	City              string   `json:"city"`
	State             string   `json:"state"`
	Website           string   `json:"website,omitempty"`
	LogoURL           string   `json:"logoUrl,omitempty"`
	AcceptanceRate    *float64 `json:"acceptanceRate"`
	StudentSize       *int     `json:"studentSize"`
	TuitionInState    *int     `json:"tuitionInState"`
	TuitionOutOfState *int     `json:"tuitionOutOfState"`
	SAT75th           *int     `json:"sat75th"`
	ACT75th           *int     `json:"act75th"`
	OnlineOnly        bool     `json:"onlineOnly"`
}

// SavedCollege is a college the signed-in user has pinned to their
// dashboard. Duplicate detection keys on (college_name, state).
type SavedCollege struct {
	ID                string    `json:"id"`
	UserID            string    `json:"-"`
	CollegeName       string    `json:"college_name"`
	City              string    `json:"city,omitempty"`
	State             string    `json:"state,omitempty"`
	SchoolURL         string    `json:"school_url,omitempty"`
	CollegeExternalID *int64    `json:"college_external_id,omitempty"`
	StudentSize       *int      `json:"student_size,omitempty"`
	TuitionInState    *int      `json:"tuition_in_state,omitempty"`
	TuitionOutOfState *int      `json:"tuition_out_of_state,omitempty"`
	AdmissionRate     *float64  `json:"admission_rate,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
