package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/collegiate-app/collegiate/internal/model"
)

type SavedCollegeStore struct {
	db *sql.DB
}

func NewSavedCollegeStore(db *sql.DB) *SavedCollegeStore {
	return &SavedCollegeStore{db: db}
}

const savedCollegeCols = `id, user_id, college_name, city, state, school_url, college_external_id, student_size, tuition_in_state, tuition_out_of_state, admission_rate, created_at`

func scanSavedCollege(scanner interface{ Scan(...any) error }) (*model.SavedCollege, error) {
	var sc model.SavedCollege
	var externalID sql.NullInt64
	var studentSize, tuitionIn, tuitionOut sql.NullInt64
	var admissionRate sql.NullFloat64

	err := scanner.Scan(
		&sc.ID, &sc.UserID, &sc.CollegeName, &sc.City, &sc.State, &sc.SchoolURL,
		&externalID, &studentSize, &tuitionIn, &tuitionOut, &admissionRate,
		&sc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if externalID.Valid {
		sc.CollegeExternalID = &externalID.Int64
	}
	if studentSize.Valid {
		v := int(studentSize.Int64)
		sc.StudentSize = &v
	}
	if tuitionIn.Valid {
		v := int(tuitionIn.Int64)
		sc.TuitionInState = &v
	}
	if tuitionOut.Valid {
		v := int(tuitionOut.Int64)
		sc.TuitionOutOfState = &v
	}
	if admissionRate.Valid {
		sc.AdmissionRate = &admissionRate.Float64
	}
	return &sc, nil
}

// ListByUser returns the user's saved colleges, newest first.
func (s *SavedCollegeStore) ListByUser(userID string) ([]model.SavedCollege, error) {
	rows, err := s.db.Query(
		`SELECT `+savedCollegeCols+` FROM saved_colleges WHERE user_id = ? ORDER BY created_at DESC, college_name ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list saved colleges: %w", err)
	}
	defer rows.Close()

	var colleges []model.SavedCollege
	for rows.Next() {
		sc, err := scanSavedCollege(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved college: %w", err)
		}
		colleges = append(colleges, *sc)
	}
	return colleges, rows.Err()
}

// GetByNameState looks up a saved college by its dedupe key.
func (s *SavedCollegeStore) GetByNameState(userID, collegeName, state string) (*model.SavedCollege, error) {
	row := s.db.QueryRow(
		`SELECT `+savedCollegeCols+` FROM saved_colleges WHERE user_id = ? AND college_name = ? AND state = ?`,
		userID, collegeName, state,
	)
	sc, err := scanSavedCollege(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get saved college: %w", err)
	}
	return sc, nil
}

// Create inserts a saved college, assigning it a fresh id.
func (s *SavedCollegeStore) Create(sc model.SavedCollege) (*model.SavedCollege, error) {
	sc.ID = uuid.NewString()
	sc.CreatedAt = time.Now().UTC()

	_, err := s.db.Exec(
		`INSERT INTO saved_colleges (`+savedCollegeCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.UserID, sc.CollegeName, sc.City, sc.State, sc.SchoolURL,
		nullInt64(sc.CollegeExternalID), nullInt(sc.StudentSize), nullInt(sc.TuitionInState),
		nullInt(sc.TuitionOutOfState), nullFloat(sc.AdmissionRate), sc.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create saved college: %w", err)
	}
	return &sc, nil
}

// Delete removes the user's saved college. Returns false when no row
// matched.
func (s *SavedCollegeStore) Delete(userID, id string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM saved_colleges WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return false, fmt.Errorf("delete saved college: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete saved college: %w", err)
	}
	return n > 0, nil
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
