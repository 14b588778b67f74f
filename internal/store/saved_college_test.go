package store

import (
	"testing"

	"github.com/collegiate-app/collegiate/internal/database"
	"github.com/collegiate-app/collegiate/internal/model"
)

func setupSavedCollegeTestDB(t *testing.T) *SavedCollegeStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSavedCollegeStore(db)
}

func sampleSavedCollege(userID string) model.SavedCollege {
	externalID := int64(100654)
	size := 7645
	rate := 0.0368
	return model.SavedCollege{
		UserID:            userID,
		CollegeName:       "Stanford University",
		City:              "Stanford",
		State:             "CA",
		SchoolURL:         "https://www.stanford.edu",
		CollegeExternalID: &externalID,
		StudentSize:       &size,
		AdmissionRate:     &rate,
	}
}

func TestSavedCollegeCreateAndList(t *testing.T) {
	s := setupSavedCollegeTestDB(t)

	created, err := s.Create(sampleSavedCollege("user-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Error("expected generated id")
	}

	colleges, err := s.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(colleges) != 1 {
		t.Fatalf("len = %d, want 1", len(colleges))
	}
	got := colleges[0]
	if got.CollegeName != "Stanford University" || got.State != "CA" {
		t.Errorf("college = %+v", got)
	}
	if got.StudentSize == nil || *got.StudentSize != 7645 {
		t.Errorf("student size = %v", got.StudentSize)
	}
	if got.TuitionInState != nil {
		t.Errorf("tuition = %v, want nil", got.TuitionInState)
	}
}

func TestSavedCollegeListScopedToUser(t *testing.T) {
	s := setupSavedCollegeTestDB(t)

	if _, err := s.Create(sampleSavedCollege("user-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	other := sampleSavedCollege("user-2")
	other.CollegeName = "Harvard University"
	other.State = "MA"
	if _, err := s.Create(other); err != nil {
		t.Fatalf("create: %v", err)
	}

	colleges, err := s.ListByUser("user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(colleges) != 1 || colleges[0].CollegeName != "Stanford University" {
		t.Errorf("colleges = %+v", colleges)
	}
}

func TestSavedCollegeGetByNameState(t *testing.T) {
	s := setupSavedCollegeTestDB(t)

	if _, err := s.Create(sampleSavedCollege("user-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetByNameState("user-1", "Stanford University", "CA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected saved college")
	}

	missing, err := s.GetByNameState("user-1", "Stanford University", "MA")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for different state, got %+v", missing)
	}
}

func TestSavedCollegeDuplicateRejected(t *testing.T) {
	s := setupSavedCollegeTestDB(t)

	if _, err := s.Create(sampleSavedCollege("user-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.Create(sampleSavedCollege("user-1")); err == nil {
		t.Fatal("expected unique constraint error for duplicate name+state")
	}

	// Same college is fine for a different user.
	if _, err := s.Create(sampleSavedCollege("user-2")); err != nil {
		t.Errorf("create for second user: %v", err)
	}
}

func TestSavedCollegeDelete(t *testing.T) {
	s := setupSavedCollegeTestDB(t)

	created, err := s.Create(sampleSavedCollege("user-1"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Wrong user cannot delete.
	ok, err := s.Delete("user-2", created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok {
		t.Error("delete by wrong user should not match")
	}

	ok, err = s.Delete("user-1", created.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !ok {
		t.Error("expected delete to match")
	}

	ok, _ = s.Delete("user-1", created.ID)
	if ok {
		t.Error("second delete should not match")
	}
}
