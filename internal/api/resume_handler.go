package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"resume-rank/internal/llm"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".txt":  true,
	".docx": true,
	".doc":  true,
	".rtf":  true,
	".odt":  true,
}

// UploadResumeHandler accepts a resume file, stores it and runs the extraction
// pipeline. A failed extraction is recorded on the resume row and reported in
// the envelope — it is not a server error, the upload itself succeeded.
// @Summary Upload and parse a resume
// @Description Upload a resume file (PDF/DOCX/TXT), extract structured candidate metadata via the LLM and persist it
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Resume file (PDF, DOCX or TXT)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeFailure(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeFailure(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT)")
		return
	}

	path, size, err := a.uploads.SaveUpload(header.Filename, file)
	if err != nil {
		a.logger.Error("failed to save upload", zap.String("filename", header.Filename), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}

	id, err := a.store.InsertResume(r.Context(), header.Filename, path)
	if err != nil {
		a.logger.Error("failed to insert resume record", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to save resume")
		return
	}

	rec, err := a.store.GetResume(r.Context(), id)
	if err != nil {
		a.logger.Error("failed to load resume record", zap.Int("resume_id", id), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to load resume")
		return
	}

	response := map[string]any{
		"success":   true,
		"resume_id": id,
		"filename":  header.Filename,
		"file_size": size,
	}

	profile, err := a.pipeline.ExtractProfile(r.Context(), *rec)
	if err != nil {
		reason := err.Error()
		if f, ok := llm.AsFailure(err); ok {
			reason = string(f.Kind) + ": " + f.Detail
		}
		a.logger.Warn("resume extraction failed",
			zap.Int("resume_id", id), zap.String("reason", reason))
		if dbErr := a.store.MarkParseFailed(r.Context(), id, reason); dbErr != nil {
			a.logger.Error("failed to record parse failure", zap.Int("resume_id", id), zap.Error(dbErr))
		}
		response["is_parsed"] = false
		response["parse_error"] = reason
		writeJSON(w, http.StatusOK, response)
		return
	}

	if err := a.store.UpdateProfile(r.Context(), id, profile); err != nil {
		a.logger.Error("failed to persist extracted profile", zap.Int("resume_id", id), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to save extracted profile")
		return
	}

	response["is_parsed"] = true
	response["profile"] = profile
	writeJSON(w, http.StatusOK, response)
}

// ListResumesHandler returns every stored resume record.
// @Summary List resumes
// @Description List all stored resumes with their extracted metadata and parse status
// @Tags resumes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	resumes, err := a.store.ListResumes(r.Context())
	if err != nil {
		a.logger.Error("failed to list resumes", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to list resumes")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "resumes": resumes})
}
