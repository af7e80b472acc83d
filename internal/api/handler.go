package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"resume-rank/internal/llm"
	"resume-rank/internal/storage"
)

// ResumeStore is the slice of the record store the handlers need. The store is
// a collaborator: handlers read records and write back extraction outcomes,
// nothing more.
type ResumeStore interface {
	InsertResume(ctx context.Context, filename, filePath string) (int, error)
	UpdateProfile(ctx context.Context, id int, p *llm.Profile) error
	MarkParseFailed(ctx context.Context, id int, reason string) error
	GetResume(ctx context.Context, id int) (*storage.Resume, error)
	ListResumes(ctx context.Context) ([]*storage.Resume, error)
	ListResumesByIDs(ctx context.Context, ids []int) ([]*storage.Resume, error)
}

// Uploader stores raw uploaded files.
type Uploader interface {
	SaveUpload(filename string, r io.Reader) (string, int64, error)
}

// ResumePipeline runs the extraction and ranking pipelines.
type ResumePipeline interface {
	ExtractProfile(ctx context.Context, rec storage.Resume) (*llm.Profile, error)
	Rank(ctx context.Context, role string, recs []*storage.Resume) (*llm.Ranking, error)
}

type API struct {
	store    ResumeStore
	uploads  Uploader
	pipeline ResumePipeline
	logger   *zap.Logger
}

func NewAPI(store ResumeStore, uploads Uploader, pipeline ResumePipeline, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{store: store, uploads: uploads, pipeline: pipeline, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}
