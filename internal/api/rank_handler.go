package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"resume-rank/internal/llm"
	"resume-rank/internal/storage"
)

type rankRequest struct {
	JobRole   string `json:"job_role"`
	ResumeIDs []int  `json:"resume_ids"`
}

// RankResumesHandler ranks stored resumes against a job role with one combined
// LLM request. An empty resume_ids list means "rank everything".
// @Summary Rank resumes against a job role
// @Description Extract key information from the selected resumes and rank them by match score for the given job role
// @Tags resumes
// @Accept json
// @Produce json
// @Param request body rankRequest true "Job role and optional resume id filter"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /resumes/rank [post]
func (a *API) RankResumesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeFailure(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.JobRole) == "" {
		writeFailure(w, http.StatusBadRequest, "job role is required")
		return
	}

	var recs []*storage.Resume
	var err error
	if len(req.ResumeIDs) > 0 {
		recs, err = a.store.ListResumesByIDs(r.Context(), req.ResumeIDs)
	} else {
		recs, err = a.store.ListResumes(r.Context())
	}
	if err != nil {
		a.logger.Error("failed to load resumes for ranking", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "failed to load resumes")
		return
	}
	if len(recs) == 0 {
		writeFailure(w, http.StatusNotFound, "no resumes available in the system")
		return
	}

	ranking, err := a.pipeline.Rank(r.Context(), req.JobRole, recs)
	if err != nil {
		a.writeRankingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"job_role":       ranking.JobRole,
		"ranked_resumes": ranking.Entries,
	})
}

// writeRankingError turns a pipeline failure into the user-facing envelope.
// The kind decides both the status code and whether the caller is told to
// simply wait and try again.
func (a *API) writeRankingError(w http.ResponseWriter, err error) {
	f, ok := llm.AsFailure(err)
	if !ok {
		a.logger.Error("ranking failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, "an unexpected server error occurred")
		return
	}

	kind := f.Kind
	if kind == llm.KindRetryBudgetExhausted {
		// Report the condition that exhausted the budget.
		if inner, ok := llm.AsFailure(f.Err); ok {
			kind = inner.Kind
		}
	}

	a.logger.Warn("ranking failed",
		zap.String("kind", string(f.Kind)), zap.Error(err))

	switch kind {
	case llm.KindNoRankableDocuments:
		writeFailure(w, http.StatusUnprocessableEntity,
			"could not extract text from any uploaded resume files")
	case llm.KindRateLimited:
		writeFailure(w, http.StatusServiceUnavailable,
			"API rate limit exceeded. Please wait a minute and try again, or check your API quota")
	case llm.KindMalformedResponse:
		writeFailure(w, http.StatusBadGateway,
			"error parsing AI response: the AI returned malformed data")
	default:
		writeFailure(w, http.StatusBadGateway,
			"failed to communicate with the Gemini API: "+f.Detail)
	}
}
