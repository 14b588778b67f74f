package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/collegiate-app/collegiate/internal/model"
	"github.com/collegiate-app/collegiate/internal/openai"
)

// maxResumeUpload caps uploaded resume files at 5 MB.
const maxResumeUpload = 5 << 20

var rubricWeights = map[string]float64{
	"clarity_and_thesis":       0.18,
	"voice_and_authenticity":   0.18,
	"structure_and_flow":       0.18,
	"evidence_and_specificity": 0.16,
	"style_and_readability":    0.14,
	"mechanics_and_grammar":    0.10,
	"impact_and_memorability":  0.06,
}

// OpenAIHandler serves the essay and resume guidance endpoints.
type OpenAIHandler struct {
	ai     *openai.Client
	logger *slog.Logger
}

func NewOpenAIHandler(ai *openai.Client, logger *slog.Logger) *OpenAIHandler {
	return &OpenAIHandler{ai: ai, logger: logger}
}

func (h *OpenAIHandler) GenerateOutline(w http.ResponseWriter, r *http.Request) {
	var responses model.OutlineResponses
	if err := json.NewDecoder(r.Body).Decode(&responses); err != nil || responses.Empty() {
		writeError(w, http.StatusBadRequest, "Missing responses")
		return
	}

	prompt := "Generate a strong college personal statement outline from these responses. " +
		"Return concise markdown with: Hook, Core Story, Reflection, Why College, and Closing.\n\n" +
		fmt.Sprintf("About me: %s\n", responses.AboutYourself) +
		fmt.Sprintf("Unique quality: %s\n", responses.UniqueQuality) +
		fmt.Sprintf("Story about loved one: %s\n", responses.StoryAboutLovedOne) +
		fmt.Sprintf("What colleges should know: %s", responses.CollegeInfo)

	outlineText, err := h.ai.Complete(r.Context(), openai.Params{
		Messages: []openai.Message{
			{Role: "system", Content: "You are an expert college admissions essay coach. Keep output practical and specific."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.6,
		MaxTokens:   700,
	})
	if err != nil {
		h.logger.Error("outline generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"outline": model.OutlineResult{
			Introduction: responses.AboutYourself,
			UniqueTrait:  responses.UniqueQuality,
			Story:        responses.StoryAboutLovedOne,
			CollegeGoal:  responses.CollegeInfo,
			AIOutline:    outlineText,
		},
	})
}

func (h *OpenAIHandler) GradeEssay(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Essay   string `json:"essay"`
		Context string `json:"context"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	essay := strings.TrimSpace(req.Essay)
	if essay == "" {
		writeError(w, http.StatusBadRequest, "Missing 'essay' in request body")
		return
	}

	meta := model.EssayMeta{
		WordCount: len(strings.Fields(essay)),
		CharCount: len(essay),
	}

	userPayload, err := json.Marshal(map[string]any{
		"essay":          essay,
		"context":        strings.TrimSpace(req.Context),
		"meta":           meta,
		"rubric_weights": rubricWeights,
		"return_schema": map[string]any{
			"score":   "number 0-10",
			"summary": "string",
			"rubric_scores": map[string]any{
				"clarity_and_thesis":       map[string]string{"score": "number", "reason": "string"},
				"voice_and_authenticity":   map[string]string{"score": "number", "reason": "string"},
				"structure_and_flow":       map[string]string{"score": "number", "reason": "string"},
				"evidence_and_specificity": map[string]string{"score": "number", "reason": "string"},
				"style_and_readability":    map[string]string{"score": "number", "reason": "string"},
				"mechanics_and_grammar":    map[string]string{"score": "number", "reason": "string"},
				"impact_and_memorability":  map[string]string{"score": "number", "reason": "string"},
			},
			"strengths":  []string{"string"},
			"weaknesses": []string{"string"},
			"priority_fixes": []map[string]string{{
				"issue":          "string",
				"why_it_matters": "string",
				"how_to_fix":     "string",
				"before_example": "string",
				"after_example":  "string",
			}},
		},
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to grade essay")
		return
	}

	raw, err := h.ai.Complete(r.Context(), openai.Params{
		Messages: []openai.Message{
			{Role: "system", Content: "You are an expert college admissions essay grader. Return only valid JSON and follow the requested schema exactly."},
			{Role: "user", Content: string(userPayload)},
		},
		Temperature: 0.2,
		MaxTokens:   1200,
		JSONMode:    true,
	})
	if err != nil {
		h.logger.Error("essay grading failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var grade model.EssayGrade
	if err := json.Unmarshal([]byte(raw), &grade); err != nil {
		h.logger.Error("essay grade was not valid JSON", "error", err)
		writeError(w, http.StatusInternalServerError, "Grader returned an unreadable response")
		return
	}
	// Counts are computed here, not trusted from the model.
	grade.Meta = meta

	writeJSON(w, http.StatusOK, grade)
}

func (h *OpenAIHandler) AnalyzeResume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResumeText string `json:"resume_text"`
	}
	json.NewDecoder(r.Body).Decode(&req)

	resumeText := strings.TrimSpace(req.ResumeText)
	if resumeText == "" {
		writeError(w, http.StatusBadRequest, "Missing 'resume_text' in request body")
		return
	}

	feedback, err := h.analyze(r, resumeText)
	if err != nil {
		h.logger.Error("resume analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func (h *OpenAIHandler) UploadResume(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxResumeUpload); err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'resume' file in form data")
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing 'resume' file in form data")
		return
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "Missing uploaded filename")
		return
	}

	resumeText, err := extractResumeText(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if resumeText == "" {
		writeError(w, http.StatusBadRequest, "Could not extract readable text from this file.")
		return
	}

	feedback, err := h.analyze(r, resumeText)
	if err != nil {
		h.logger.Error("resume analysis failed", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"feedback": feedback})
}

func (h *OpenAIHandler) analyze(r *http.Request, resumeText string) (string, error) {
	prompt := "Review this student resume and provide practical, actionable feedback for college applications. " +
		"Focus on content impact, clarity, formatting, and what to improve immediately. " +
		"Use concise markdown with sections: Summary, Strengths, Improvements, and Priority Edits.\n\n" +
		"Resume:\n" + resumeText

	return h.ai.Complete(r.Context(), openai.Params{
		Messages: []openai.Message{
			{Role: "system", Content: "You are an expert college admissions and resume coach. Give specific, actionable advice."},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.4,
		MaxTokens:   900,
	})
}

// extractResumeText reads plain-text uploads. Binary formats need a
// converter we don't ship; reject them with a clear message.
func extractResumeText(file io.Reader, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc":
		return "", fmt.Errorf("Unsupported file type %q. Upload a plain-text resume (.txt or .md).", filepath.Ext(filename))
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxResumeUpload))
	if err != nil {
		return "", errors.New("Could not read uploaded file.")
	}
	return strings.TrimSpace(string(raw)), nil
}
