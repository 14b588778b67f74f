package guidance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/collegiate-app/collegiate/internal/model"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL)
}

func TestGenerateOutline(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/openai/generate-outline" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var responses model.OutlineResponses
		json.NewDecoder(r.Body).Decode(&responses)
		if responses.AboutYourself != "I grew up on a farm." {
			t.Errorf("aboutYourself = %q", responses.AboutYourself)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"outline": map[string]string{
				"introduction": responses.AboutYourself,
				"aiOutline":    "## Hook\nStart with the farm.",
			},
		})
	}))

	outline, err := c.GenerateOutline(context.Background(), model.OutlineResponses{
		AboutYourself: "I grew up on a farm.",
	})
	if err != nil {
		t.Fatalf("generate outline: %v", err)
	}
	if !strings.Contains(outline.AIOutline, "Hook") {
		t.Errorf("aiOutline = %q", outline.AIOutline)
	}
}

func TestGenerateOutlineRequiresResponses(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty responses must not reach the server")
	}))

	if _, err := c.GenerateOutline(context.Background(), model.OutlineResponses{}); err == nil {
		t.Error("expected error for empty responses")
	}
}

func TestGradeEssay(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["essay"] == "" || body["context"] != "Common App prompt 5" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"score":   7.5,
			"summary": "Strong voice, uneven structure.",
			"rubric_scores": map[string]any{
				"clarity_and_thesis": map[string]any{"score": 8, "reason": "Clear thesis."},
			},
			"strengths":      []string{"Authentic voice"},
			"weaknesses":     []string{"Abrupt ending"},
			"priority_fixes": []map[string]string{{"issue": "Ending", "how_to_fix": "Close the loop."}},
			"meta":           map[string]int{"word_count": 412, "char_count": 2380},
		})
	}))

	grade, err := c.GradeEssay(context.Background(), "My essay draft...", "Common App prompt 5")
	if err != nil {
		t.Fatalf("grade essay: %v", err)
	}
	if grade.Score != 7.5 || grade.Meta.WordCount != 412 {
		t.Errorf("grade = %+v", grade)
	}
	if grade.RubricScores["clarity_and_thesis"].Score != 8 {
		t.Errorf("rubric = %+v", grade.RubricScores)
	}
}

func TestGradeEssayRequiresText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("blank essay must not reach the server")
	}))

	if _, err := c.GradeEssay(context.Background(), "   ", ""); err == nil {
		t.Error("expected error for blank essay")
	}
}

func TestAnalyzeResume(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["resume_text"] != "Experience: lifeguard" {
			t.Errorf("resume_text = %q", body["resume_text"])
		}
		json.NewEncoder(w).Encode(map[string]string{"feedback": "## Summary\nSolid start."})
	}))

	feedback, err := c.AnalyzeResume(context.Background(), "Experience: lifeguard")
	if err != nil {
		t.Fatalf("analyze resume: %v", err)
	}
	if !strings.Contains(feedback, "Summary") {
		t.Errorf("feedback = %q", feedback)
	}
}

func TestUploadResume(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("resume")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "resume.txt" {
			t.Errorf("filename = %q", header.Filename)
		}
		json.NewEncoder(w).Encode(map[string]string{"feedback": "Looks good."})
	}))

	feedback, err := c.UploadResume(context.Background(), "resume.txt", strings.NewReader("Experience: lifeguard"))
	if err != nil {
		t.Fatalf("upload resume: %v", err)
	}
	if feedback != "Looks good." {
		t.Errorf("feedback = %q", feedback)
	}
}

func TestServerErrorMessagePassthrough(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Missing 'essay' in request body"})
	}))

	_, err := c.GradeEssay(context.Background(), "draft", "")
	if err == nil || err.Error() != "Missing 'essay' in request body" {
		t.Errorf("err = %v", err)
	}

	c2 := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	_, err = c2.AnalyzeResume(context.Background(), "text")
	if err == nil || err.Error() != "Failed to analyze resume." {
		t.Errorf("err = %v, want fallback", err)
	}
}
