package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/collegiate-app/collegiate/internal/auth"
	"github.com/collegiate-app/collegiate/internal/database"
	"github.com/collegiate-app/collegiate/internal/model"
	"github.com/collegiate-app/collegiate/internal/store"
	ws "github.com/collegiate-app/collegiate/internal/websocket"
)

func newSavedCollegeHandler(t *testing.T) *SavedCollegeHandler {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	hub := ws.NewHub(slog.Default())
	return NewSavedCollegeHandler(store.NewSavedCollegeStore(db), hub, discardLogger())
}

func authedRequest(method, target, body, userID string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := auth.WithAuth(context.Background(), auth.AuthContext{UserID: userID, Role: model.RoleStudent})
	return req.WithContext(ctx)
}

func TestSavedCollegeInsertAndList(t *testing.T) {
	h := newSavedCollegeHandler(t)

	body := `{"id": 100654, "name": "Stanford University", "city": "Stanford", "state": "CA", "website": "https://www.stanford.edu", "studentSize": 7645, "acceptanceRate": 0.0368}`
	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", body, "user-1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("insert status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Message string             `json:"message"`
		Data    model.SavedCollege `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&created)
	if created.Message != "College saved successfully" {
		t.Errorf("message = %q", created.Message)
	}
	if created.Data.ID == "" || created.Data.CollegeName != "Stanford University" {
		t.Errorf("data = %+v", created.Data)
	}

	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/database/list", "", "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed struct {
		Colleges []model.SavedCollege `json:"colleges"`
	}
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed.Colleges) != 1 {
		t.Errorf("colleges = %+v", listed.Colleges)
	}
}

func TestSavedCollegeInsertNestedShape(t *testing.T) {
	h := newSavedCollegeHandler(t)

	body := `{"id": 216339, "latest": {"school": {"name": "Temple University", "city": "Philadelphia", "state": "PA", "school_url": "https://www.temple.edu"}, "student": {"size": 25279}, "cost": {"tuition": {"in_state": 18864}}}}`
	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", body, "user-1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data model.SavedCollege `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&created)
	if created.Data.CollegeName != "Temple University" || created.Data.State != "PA" {
		t.Errorf("data = %+v", created.Data)
	}
	if created.Data.TuitionInState == nil || *created.Data.TuitionInState != 18864 {
		t.Errorf("tuition = %v", created.Data.TuitionInState)
	}
}

func TestSavedCollegeInsertDuplicate(t *testing.T) {
	h := newSavedCollegeHandler(t)
	body := `{"name": "Stanford University", "state": "CA"}`

	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", body, "user-1"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first insert status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", body, "user-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate insert status = %d, want 200", rec.Code)
	}
	var payload struct {
		Message string `json:"message"`
	}
	json.NewDecoder(rec.Body).Decode(&payload)
	if payload.Message != "College already saved" {
		t.Errorf("message = %q", payload.Message)
	}
}

func TestSavedCollegeInsertRequiresName(t *testing.T) {
	h := newSavedCollegeHandler(t)

	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", `{"state": "CA"}`, "user-1"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	var payload map[string]string
	json.NewDecoder(rec.Body).Decode(&payload)
	if payload["error"] != "College name is required" {
		t.Errorf("error = %q", payload["error"])
	}
}

func TestSavedCollegeDelete(t *testing.T) {
	h := newSavedCollegeHandler(t)

	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", `{"name": "Temple University", "state": "PA"}`, "user-1"))
	var created struct {
		Data model.SavedCollege `json:"data"`
	}
	json.NewDecoder(rec.Body).Decode(&created)

	req := authedRequest("DELETE", "/api/database/delete/"+created.Data.ID, "", "user-1")
	req.SetPathValue("id", created.Data.ID)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	// Gone now.
	req = authedRequest("DELETE", "/api/database/delete/"+created.Data.ID, "", "user-1")
	req.SetPathValue("id", created.Data.ID)
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestSavedCollegeListIsolatedByUser(t *testing.T) {
	h := newSavedCollegeHandler(t)

	rec := httptest.NewRecorder()
	h.Insert(rec, authedRequest("POST", "/api/database/insert", `{"name": "Stanford University", "state": "CA"}`, "user-1"))

	rec = httptest.NewRecorder()
	h.List(rec, authedRequest("GET", "/api/database/list", "", "user-2"))
	body := rec.Body.String()
	// The payload carries an empty array, not null.
	if !strings.Contains(body, `"colleges":[]`) {
		t.Errorf("body = %s, want empty colleges array", body)
	}
}
