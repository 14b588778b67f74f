package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/collegiate-app/collegiate/internal/auth"
	"github.com/collegiate-app/collegiate/internal/model"
	"github.com/collegiate-app/collegiate/internal/search"
	"github.com/collegiate-app/collegiate/internal/store"
	ws "github.com/collegiate-app/collegiate/internal/websocket"
)

type SavedCollegeHandler struct {
	store  *store.SavedCollegeStore
	hub    *ws.Hub
	logger *slog.Logger
}

func NewSavedCollegeHandler(s *store.SavedCollegeStore, hub *ws.Hub, logger *slog.Logger) *SavedCollegeHandler {
	return &SavedCollegeHandler{store: s, hub: hub, logger: logger}
}

// collegeInput accepts both the flattened client shape and the nested
// catalog shape.
type collegeInput struct {
	ID                *int64            `json:"id"`
	Name              string            `json:"name"`
	City              string            `json:"city"`
	State             string            `json:"state"`
	Website           string            `json:"website"`
	StudentSize       *int              `json:"studentSize"`
	TuitionInState    *int              `json:"tuitionInState"`
	TuitionOutOfState *int              `json:"tuitionOutOfState"`
	AcceptanceRate    *float64          `json:"acceptanceRate"`
	Latest            *search.APILatest `json:"latest"`
}

func (in collegeInput) toSavedCollege(userID string) model.SavedCollege {
	sc := model.SavedCollege{
		UserID:            userID,
		CollegeName:       strings.TrimSpace(in.Name),
		City:              in.City,
		State:             in.State,
		SchoolURL:         in.Website,
		CollegeExternalID: in.ID,
		StudentSize:       in.StudentSize,
		TuitionInState:    in.TuitionInState,
		TuitionOutOfState: in.TuitionOutOfState,
		AdmissionRate:     in.AcceptanceRate,
	}

	// Nested values win when present.
	if in.Latest != nil {
		if name := strings.TrimSpace(in.Latest.School.Name); name != "" {
			sc.CollegeName = name
		}
		if in.Latest.School.City != nil {
			sc.City = *in.Latest.School.City
		}
		if in.Latest.School.State != nil {
			sc.State = *in.Latest.School.State
		}
		if in.Latest.School.SchoolURL != nil {
			sc.SchoolURL = *in.Latest.School.SchoolURL
		}
		if in.Latest.Student.Size != nil {
			sc.StudentSize = in.Latest.Student.Size
		}
		if in.Latest.Cost.Tuition.InState != nil {
			sc.TuitionInState = in.Latest.Cost.Tuition.InState
		}
		if in.Latest.Cost.Tuition.OutOfState != nil {
			sc.TuitionOutOfState = in.Latest.Cost.Tuition.OutOfState
		}
		if in.Latest.Admissions.AdmissionRate.Overall != nil {
			sc.AdmissionRate = in.Latest.Admissions.AdmissionRate.Overall
		}
	}
	return sc
}

func (h *SavedCollegeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	colleges, err := h.store.ListByUser(userID)
	if err != nil {
		h.logger.Error("list saved colleges failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to load saved colleges")
		return
	}
	if colleges == nil {
		colleges = []model.SavedCollege{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"colleges": colleges})
}

func (h *SavedCollegeHandler) Insert(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var in collegeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	sc := in.toSavedCollege(userID)
	if sc.CollegeName == "" {
		writeError(w, http.StatusBadRequest, "College name is required")
		return
	}

	existing, err := h.store.GetByNameState(userID, sc.CollegeName, sc.State)
	if err != nil {
		h.logger.Error("saved college lookup failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to save college")
		return
	}
	if existing != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "College already saved",
			"data":    existing,
		})
		return
	}

	created, err := h.store.Create(sc)
	if err != nil {
		h.logger.Error("saved college insert failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to save college")
		return
	}

	h.hub.Broadcast(ws.NewMessage("saved_college", "created", created.ID, userID, map[string]any{
		"college_name": created.CollegeName,
	}))
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "College saved successfully",
		"data":    created,
	})
}

func (h *SavedCollegeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	id := r.PathValue("id")

	ok, err := h.store.Delete(userID, id)
	if err != nil {
		h.logger.Error("saved college delete failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Failed to remove college")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "College not found")
		return
	}

	h.hub.Broadcast(ws.NewMessage("saved_college", "deleted", id, userID, nil))
	writeJSON(w, http.StatusOK, map[string]string{"message": "College removed successfully"})
}
